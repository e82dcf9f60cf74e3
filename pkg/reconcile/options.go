package reconcile

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// PropPolicy selects when a changed prop is written again.
type PropPolicy int

const (
	// PolicyLegacy never rewrites a prop whose previous value was a
	// function, even if the new value is not a function.
	PolicyLegacy PropPolicy = iota

	// PolicyStrict rewrites every changed prop except when both the old
	// and the new value are functions.
	PolicyStrict
)

// String returns the policy name used in configuration.
func (p PropPolicy) String() string {
	switch p {
	case PolicyLegacy:
		return "legacy"
	case PolicyStrict:
		return "strict"
	default:
		return fmt.Sprintf("PropPolicy(%d)", int(p))
	}
}

// ParsePolicy parses "legacy" or "strict". The empty string is legacy.
func ParsePolicy(s string) (PropPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return PolicyLegacy, nil
	case "strict":
		return PolicyStrict, nil
	}
	return PolicyLegacy, fmt.Errorf("unknown prop policy %q (want legacy or strict)", s)
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithRegistry sets the registry used to recognize custom types.
func WithRegistry(reg *vdom.Registry) Option {
	return func(r *Reconciler) {
		r.registry = reg
	}
}

// WithLogger sets the logger. Pass summaries are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver sets the pass observer.
func WithObserver(o Observer) Option {
	return func(r *Reconciler) {
		r.observer = o
	}
}

// WithPropPolicy sets the prop rewrite policy.
func WithPropPolicy(p PropPolicy) Option {
	return func(r *Reconciler) {
		r.policy = p
	}
}

// WithClassProp sets the prop name written through the class attribute
// channel and the attribute it maps to. Defaults: "className" → "class".
func WithClassProp(prop, attr string) Option {
	return func(r *Reconciler) {
		if prop != "" {
			r.classProp = prop
		}
		if attr != "" {
			r.classAttr = attr
		}
	}
}

// WithEventPrefix sets the prop name prefix that marks event handlers.
// Default: "on".
func WithEventPrefix(prefix string) Option {
	return func(r *Reconciler) {
		if prefix != "" {
			r.eventPrefix = prefix
		}
	}
}
