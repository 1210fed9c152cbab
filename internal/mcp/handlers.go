// File: internal/mcp/handlers.go
package mcp

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handlers serves the tool registry over HTTP.
type Handlers struct {
	log      *zap.Logger
	registry *Registry
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(logger *zap.Logger, registry *Registry) *Handlers {
	return &Handlers{
		log:      logger.Named("mcp_handlers"),
		registry: registry,
	}
}

// RegisterRoutes sets up the routing for the host.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	// Health check endpoint (unversioned)
	r.Get("/healthz", h.HandleHealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tools", h.HandleListTools)
		r.Post("/command", h.HandleCommand)
	})
}

// HandleHealthCheck is a simple handler to confirm the server is responsive.
func (h *Handlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleListTools describes every registered tool.
func (h *Handlers) HandleListTools(w http.ResponseWriter, r *http.Request) {
	h.respondWithSuccess(w, http.StatusOK, describeTools(h.registry))
}

// HandleCommand runs one tool. The command name is the tool name.
func (h *Handlers) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	command := strings.ToLower(strings.TrimSpace(req.Command))
	h.log.Info("Received command", zap.String("command", command))
	if command == "ping" {
		h.respondWithSuccess(w, http.StatusOK, map[string]string{"message": "pong"})
		return
	}

	result, err := h.registry.Call(r.Context(), command, req.Params)
	if err != nil {
		h.respondWithError(w, statusFor(err), err.Error())
		return
	}
	h.respondWithSuccess(w, http.StatusOK, result)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownTool), errors.Is(err, ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileNotFound):
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

func describeTools(r *Registry) []MCPTool {
	tools := r.Tools()
	out := make([]MCPTool, len(tools))
	for i, t := range tools {
		out[i] = MCPTool{Name: t.Name, Description: t.Description, InputSchema: t.Parameters}
	}
	return out
}

// respondWithError sends a standardized JSON error response.
func (h *Handlers) respondWithError(w http.ResponseWriter, statusCode int, message string) {
	h.respond(w, statusCode, CommandResponse{Status: "error", Error: message})
}

// respondWithSuccess sends a standardized JSON success response.
func (h *Handlers) respondWithSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	h.respond(w, statusCode, CommandResponse{Status: "success", Data: data})
}

func (h *Handlers) respond(w http.ResponseWriter, statusCode int, resp CommandResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}
