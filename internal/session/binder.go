// Package session decides which backend session id an outgoing question
// carries, keeping it stable across repeated sends while following the
// active conversation as the user switches.
package session

import (
	"sync"

	"github.com/RichardoC/Chat-i/internal/ident"
)

// Binder holds the current session id. It starts unbound; the first Bind
// with no external id generates one, and any later Bind with a different
// non-empty external id adopts that id instead. Binding is idempotent for a
// given external id, so re-evaluation never churns the session.
type Binder struct {
	mu      sync.Mutex
	current string

	idgen *ident.Generator
}

func NewBinder(idgen *ident.Generator) *Binder {
	return &Binder{idgen: idgen}
}

// Bind returns the session id outgoing requests must use given the id of the
// active conversation ("" when none is selected). The returned value stays
// valid for the send that captured it even if a later Bind rebinds.
func (b *Binder) Bind(externalID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case externalID != "" && externalID != b.current:
		// A selected conversation's id takes precedence over anything
		// generated locally.
		b.current = externalID
	case b.current == "":
		b.current = b.idgen.Session()
	}
	return b.current
}

// Current returns the bound session id without changing state; "" while
// unbound.
func (b *Binder) Current() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}
