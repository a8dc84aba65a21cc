package commands

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]Command
	order []Command // registration order, primary entries only
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]Command)}
}

// Register adds c under its name and aliases. Every key must be unused.
func (r *Registry) Register(c Command) error {
	name := c.Name()
	if strings.TrimSpace(name) == "" {
		return errors.New("command has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{name}, c.Aliases()...)
	for i, k := range keys {
		if _, taken := r.byKey[k]; taken || slices.Contains(keys[:i], k) {
			return fmt.Errorf("command %s: name already registered: %s", name, k)
		}
	}
	for _, k := range keys {
		r.byKey[k] = c
	}
	r.order = append(r.order, c)
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byKey[name]
	return c, ok
}

// All returns each command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	out := slices.Clone(r.order)
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Command) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// DefaultRegistry holds the commands registered from init.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a name clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
