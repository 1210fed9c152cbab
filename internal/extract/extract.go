package extract

import (
	"github.com/xkilldash9x/seleniumshift/api/schemas"
	"github.com/xkilldash9x/seleniumshift/internal/javasrc"
)

// File segments src into test methods and recognizes the actions of each one.
// Method order follows the source; the result is never nil.
func File(src string, order Order) *schemas.Extraction {
	methods := javasrc.Segment(src)
	ex := &schemas.Extraction{TestMethods: make([]schemas.TestMethod, 0, len(methods))}
	for _, m := range methods {
		ex.TestMethods = append(ex.TestMethods, schemas.TestMethod{
			Name:    m.Name,
			Actions: Recognize(m.Body, order),
		})
	}
	return ex
}

// CountActions returns the total number of actions across all methods.
func CountActions(ex *schemas.Extraction) int {
	n := 0
	for _, m := range ex.TestMethods {
		n += len(m.Actions)
	}
	return n
}
