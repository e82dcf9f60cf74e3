package reconcile

import (
	"context"
	"time"
)

// Stats counts the surface operations of one pass.
type Stats struct {
	ElementsCreated int
	TextsCreated    int
	Appended        int
	Removed         int
	Replaced        int
	PropsSet        int
	PropsRemoved    int
	Listeners       int
	Expansions      int
}

// Mutations returns the number of operations that changed the attached
// surface (creation of detached nodes is not counted).
func (s Stats) Mutations() int {
	return s.Appended + s.Removed + s.Replaced + s.PropsSet + s.PropsRemoved + s.Listeners
}

// Add returns the sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		ElementsCreated: s.ElementsCreated + o.ElementsCreated,
		TextsCreated:    s.TextsCreated + o.TextsCreated,
		Appended:        s.Appended + o.Appended,
		Removed:         s.Removed + o.Removed,
		Replaced:        s.Replaced + o.Replaced,
		PropsSet:        s.PropsSet + o.PropsSet,
		PropsRemoved:    s.PropsRemoved + o.PropsRemoved,
		Listeners:       s.Listeners + o.Listeners,
		Expansions:      s.Expansions + o.Expansions,
	}
}

// PassKind distinguishes materialize-only passes from reconcile passes.
type PassKind string

const (
	PassCreate    PassKind = "create"
	PassReconcile PassKind = "reconcile"
)

// Pass describes a finished pass.
type Pass struct {
	Kind     PassKind
	Stats    Stats
	Duration time.Duration
	Err      error
}

// Observer is notified around every top-level pass.
type Observer interface {
	// BeginPass is called before the pass. The returned context is passed
	// to EndPass.
	BeginPass(ctx context.Context, kind PassKind) context.Context

	// EndPass is called once the pass finished or failed.
	EndPass(ctx context.Context, p Pass)
}
