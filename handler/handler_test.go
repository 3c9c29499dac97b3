package handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"code-agent/internal/command"
)

func newTestHandler(t *testing.T, cmds ...command.Command) *Handler {
	t.Helper()
	registry := command.NewRegistry()
	for _, cmd := range cmds {
		require.NoError(t, registry.Register(cmd))
	}
	h, err := NewHandler(registry)
	require.NoError(t, err)
	return h
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil)
	require.Error(t, err)
}

func TestHandle_HappyPath(t *testing.T) {
	var gotArgs json.RawMessage
	h := newTestHandler(t, command.Command{
		Name: "echo",
		Run: func(_ context.Context, args json.RawMessage) (string, error) {
			gotArgs = args
			return "done", nil
		},
	})

	resp, err := h.Handle(context.Background(), Request{
		Command: "echo",
		Args:    json.RawMessage(`{"k":"v"}`),
	})
	require.NoError(t, err)
	require.Equal(t, "echo", resp.Command)
	require.Equal(t, "done", resp.Result)
	require.JSONEq(t, `{"k":"v"}`, string(gotArgs))
}

func TestHandle_MissingArgsDefaultToEmptyObject(t *testing.T) {
	var gotArgs json.RawMessage
	h := newTestHandler(t, command.Command{
		Name: "echo",
		Run: func(_ context.Context, args json.RawMessage) (string, error) {
			gotArgs = args
			return "", nil
		},
	})

	_, err := h.Handle(context.Background(), Request{Command: "echo"})
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(gotArgs))
}

func TestHandle_UnknownCommand(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Handle(context.Background(), Request{Command: "nope"})
	require.ErrorIs(t, err, command.ErrUnknownCommand)
}

func TestHandle_CommandFaultPropagates(t *testing.T) {
	want := errors.New("gateway unavailable")
	h := newTestHandler(t, command.Command{
		Name: "boom",
		Run: func(_ context.Context, _ json.RawMessage) (string, error) {
			return "", want
		},
	})

	_, err := h.Handle(context.Background(), Request{Command: "boom"})
	require.ErrorIs(t, err, want)
}
