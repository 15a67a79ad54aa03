// game/registry.go
package game

import (
	"fmt"
	"sync"
)

// Registry holds all registered game types, keyed by name.
type Registry struct {
	games map[string]Game
	mutex sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{games: make(map[string]Game)}
}

// Register adds a game type. Registration happens at startup; a duplicate
// name is a programming error and panics.
func (r *Registry) Register(name string, g Game) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.games[name]; exists {
		panic(fmt.Sprintf("game type %q already registered", name))
	}
	r.games[name] = g
}

func (r *Registry) Get(name string) (Game, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	g, exists := r.games[name]
	return g, exists
}

// Names returns the registered game type names.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.games))
	for name := range r.games {
		names = append(names, name)
	}
	return names
}
