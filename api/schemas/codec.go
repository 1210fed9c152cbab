package schemas

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeJSON renders v as indented JSON, the on-disk form of every artifact.
func EncodeJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return data, nil
}

// DecodeExtraction parses an extraction document.
func DecodeExtraction(data []byte) (*Extraction, error) {
	var ex Extraction
	if err := json.Unmarshal(data, &ex); err != nil {
		return nil, fmt.Errorf("failed to decode extraction: %w", err)
	}
	return &ex, nil
}

// DecodePlan parses an execution plan.
func DecodePlan(data []byte) (*ExecutionPlan, error) {
	var plan ExecutionPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode execution plan: %w", err)
	}
	return &plan, nil
}
