package game

import (
	"testing"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	counter := NewCounter()
	r.Register("counter", counter)

	g, exists := r.Get("counter")
	if !exists {
		t.Fatal("Get should find the registered game")
	}
	if g != counter {
		t.Error("Get should return the registered instance")
	}

	if _, exists := r.Get("chess"); exists {
		t.Error("Get should not find an unregistered game")
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register("counter", NewCounter())

	defer func() {
		if recover() == nil {
			t.Error("Duplicate registration should panic")
		}
	}()
	r.Register("counter", NewCounter())
}
