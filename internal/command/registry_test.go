package command

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func noopRun(_ context.Context, _ json.RawMessage) (string, error) {
	return "", nil
}

func TestRegister_Validation(t *testing.T) {
	r := NewRegistry()

	require.Error(t, r.Register(Command{Name: "", Run: noopRun}))
	require.Error(t, r.Register(Command{Name: "broken"}))
}

func TestRegister_Duplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Command{Name: "x", Run: noopRun}))

	err := r.Register(Command{Name: "x", Run: noopRun})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already registered")
}

func TestLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Command{Name: "x", Description: "desc", Run: noopRun}))

	cmd, err := r.Lookup("x")
	require.NoError(t, err)
	require.Equal(t, "desc", cmd.Description)

	_, err = r.Lookup("missing")
	require.ErrorIs(t, err, ErrUnknownCommand)
}

func TestList_SortedByName(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Register(Command{Name: name, Run: noopRun}))
	}

	got := r.List()
	require.Len(t, got, 3)
	require.Equal(t, "alpha", got[0].Name)
	require.Equal(t, "mid", got[1].Name)
	require.Equal(t, "zeta", got[2].Name)
}
