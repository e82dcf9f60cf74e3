package memdom

import (
	"fmt"

	vterrors "github.com/vango-dev/vtree/internal/errors"
)

// Event is passed to listeners by Dispatch.
type Event struct {
	Type   string
	Target *Element
	// Value carries input data, as an input element's value would.
	Value string
}

// isListener reports whether handler has a signature Dispatch can call.
func isListener(handler any) bool {
	switch handler.(type) {
	case func(), func() error, func(*Event), func(*Event) error:
		return true
	}
	return false
}

// Dispatch calls the listeners registered for ev.Type on e, in
// registration order. The first listener error stops dispatch.
func (e *Element) Dispatch(ev *Event) error {
	if ev == nil {
		return vterrors.New(vterrors.CodeNilNode).WithSubject("event")
	}
	if ev.Target == nil {
		ev.Target = e
	}
	handlers := append([]any(nil), e.listeners[ev.Type]...)
	for i, h := range handlers {
		var err error
		switch fn := h.(type) {
		case func():
			fn()
		case func() error:
			err = fn()
		case func(*Event):
			fn(ev)
		case func(*Event) error:
			err = fn(ev)
		}
		if err != nil {
			return fmt.Errorf("%s listener %d on <%s>: %w", ev.Type, i, e.tag, err)
		}
	}
	return nil
}

// Click dispatches a click event on e.
func (e *Element) Click() error {
	return e.Dispatch(&Event{Type: "click"})
}
