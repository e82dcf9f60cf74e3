package vdom

import "reflect"

// H builds a plain element. Custom types are not resolved; use
// (*Registry).H for that.
func H(typ string, props Props, children ...any) *VNode {
	return build(nil, typ, props, children)
}

// H builds a node for typ. If typ is registered, the factory receives
// (typ, props, expandedChildren) and its result is returned as-is.
// Otherwise a plain element is returned with props defaulted to an
// empty map.
//
// Children may be *VNode values, scalars (turned into text nodes) or
// slices, which are flattened one level. nil children are dropped.
func (r *Registry) H(typ string, props Props, children ...any) *VNode {
	return build(r, typ, props, children)
}

func build(r *Registry, typ string, props Props, children []any) *VNode {
	expanded := expandChildren(children)
	if factory, ok := r.Lookup(typ); ok {
		return factory(typ, props, expanded)
	}
	if props == nil {
		props = Props{}
	}
	return &VNode{
		Kind:     KindElement,
		Type:     typ,
		Props:    props,
		Children: expanded,
	}
}

// expandChildren flattens sequence arguments exactly one level.
func expandChildren(args []any) []*VNode {
	out := make([]*VNode, 0, len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case *VNode:
			if v != nil {
				out = append(out, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					out = append(out, c)
				}
			}
		case []any:
			for _, c := range v {
				if n := toNode(c); n != nil {
					out = append(out, n)
				}
			}
		default:
			if isSlice(arg) {
				rv := reflect.ValueOf(arg)
				for i := 0; i < rv.Len(); i++ {
					if n := toNode(rv.Index(i).Interface()); n != nil {
						out = append(out, n)
					}
				}
				continue
			}
			if n := toNode(arg); n != nil {
				out = append(out, n)
			}
		}
	}
	return out
}

// toNode converts a single, already-flattened child. A nested sequence is
// not flattened further: it becomes an element without a type tag, which
// the surface rejects when the node is materialized.
func toNode(v any) *VNode {
	switch n := v.(type) {
	case nil:
		return nil
	case *VNode:
		return n
	}
	if isSlice(v) {
		rv := reflect.ValueOf(v)
		inner := make([]*VNode, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if c := toNode(rv.Index(i).Interface()); c != nil {
				inner = append(inner, c)
			}
		}
		return &VNode{Kind: KindElement, Props: Props{}, Children: inner}
	}
	return Text(v)
}
