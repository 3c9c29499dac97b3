package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Command is one named operation the agent can perform. Signature is a
// human-readable argument hint shown when listing commands.
type Command struct {
	Name        string
	Description string
	Signature   string
	Run         func(ctx context.Context, args json.RawMessage) (string, error)
}

// ErrUnknownCommand indicates the requested command is not registered.
var ErrUnknownCommand = errors.New("unknown command")

// Registry maintains the set of commands offered to callers. A command whose
// preconditions are not met (e.g. missing credentials) is simply never
// registered, so it cannot fail at call time.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry constructs an empty command registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command. Duplicate names are an error.
func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" {
		return errors.New("command: name must not be empty")
	}
	if cmd.Run == nil {
		return fmt.Errorf("command: %q has no run function", cmd.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("command: %q already registered", cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	return nil
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd, nil
}

// List returns all registered commands sorted by name.
func (r *Registry) List() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
