package reconcile

import (
	"strings"

	"github.com/vango-dev/vtree/pkg/surface"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// updateProps applies the union of newProps and oldProps keys to el.
// Every key is decided independently:
//
//   - falsy new values other than the number 0 are removed
//   - otherwise the value is set when the old value was falsy or the
//     value changed, subject to the rewrite policy
func (p *pass) updateProps(el surface.Element, newProps, oldProps vdom.Props) error {
	for _, key := range vdom.UnionKeys(newProps, oldProps) {
		nv, ov := newProps[key], oldProps[key]
		switch {
		case vdom.IsFalsy(nv) && !vdom.IsZeroNumber(nv):
			p.removeProp(el, key, ov)
		case p.shouldSet(nv, ov):
			if err := p.setProp(el, key, nv); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *pass) shouldSet(nv, ov any) bool {
	if vdom.IsFalsy(ov) {
		return true
	}
	if vdom.StrictEqual(nv, ov) {
		return false
	}
	if p.r.policy == PolicyStrict {
		return !(vdom.IsFunc(nv) && vdom.IsFunc(ov))
	}
	return !vdom.IsFunc(ov)
}

func (p *pass) setProp(el surface.Element, key string, value any) error {
	switch {
	case key == p.r.classProp:
		if err := el.SetAttribute(p.r.classAttr, value); err != nil {
			return err
		}
	case isBool(value):
		if err := el.SetAttribute(key, value); err != nil {
			return err
		}
		el.SetProperty(key, value)
	case p.isEventProp(key):
		if err := el.AddEventListener(p.eventName(key), value); err != nil {
			return err
		}
		p.stats.Listeners++
		return nil
	default:
		if err := el.SetAttribute(key, value); err != nil {
			return err
		}
	}
	p.stats.PropsSet++
	return nil
}

func (p *pass) removeProp(el surface.Element, key string, old any) {
	if key == p.r.classProp {
		el.RemoveAttribute(p.r.classAttr)
	} else {
		el.RemoveAttribute(key)
	}
	if isBool(old) {
		el.SetProperty(key, false)
	}
	p.stats.PropsRemoved++
}

func (p *pass) isEventProp(key string) bool {
	return strings.HasPrefix(key, p.r.eventPrefix)
}

// eventName derives the listener name: onClick → click.
func (p *pass) eventName(key string) string {
	return strings.ToLower(strings.TrimPrefix(key, p.r.eventPrefix))
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}
