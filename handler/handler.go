package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"code-agent/internal/command"
)

// Request names a registered command and carries its JSON arguments.
type Request struct {
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args"`
}

// Response carries the rendered text result of one command invocation.
type Response struct {
	Command string `json:"command"`
	Result  string `json:"result"`
}

// Handler dispatches requests to the command registry. It is transport
// neutral; cmd/main feeds it from the CLI.
type Handler struct {
	registry *command.Registry
}

// NewHandler creates a Handler over the given registry.
func NewHandler(registry *command.Registry) (*Handler, error) {
	if registry == nil {
		return nil, errors.New("handler: registry must not be nil")
	}
	return &Handler{registry: registry}, nil
}

// Handle looks up and runs the named command. Faults a command chooses to
// propagate (the gateway-backed ones do) surface as errors here; the clone
// command renders its own failures into the result text instead.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	cmd, err := h.registry.Lookup(req.Command)
	if err != nil {
		return Response{}, err
	}

	args := req.Args
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	result, err := cmd.Run(ctx, args)
	if err != nil {
		return Response{}, fmt.Errorf("handler: %s: %w", req.Command, err)
	}
	return Response{Command: req.Command, Result: result}, nil
}
