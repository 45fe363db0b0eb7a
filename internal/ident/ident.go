// Package ident produces collision-resistant identifiers for conversations,
// messages and sessions. They are a UX concern, not a security boundary, so a
// timestamp plus pseudorandom suffix is enough.
package ident

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Generator creates unique string identifiers. The zero value is not usable;
// call New.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func New() *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// Generate returns an identifier of the form "<prefix>_<ts36>_<rand36>", or
// "<ts36>_<rand36>" when prefix is empty. It never fails.
func (g *Generator) Generate(prefix string) string {
	g.mu.Lock()
	ts := g.now().UnixMilli()
	r := g.rng.Int63n(1 << 46)
	g.mu.Unlock()

	id := strconv.FormatInt(ts, 36) + "_" + strconv.FormatInt(r, 36)
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

// Session returns a fresh session identifier. Sessions use UUIDs so the
// backend can treat them as opaque globally-unique tokens.
func (g *Generator) Session() string {
	return uuid.NewString()
}
