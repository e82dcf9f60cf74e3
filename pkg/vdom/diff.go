package vdom

import "sort"

// MustReplace reports whether a and b are structurally incompatible: they
// differ in kind, they are text nodes with different values, or they are
// elements with different type tags. The test is shallow and never looks
// at children.
func MustReplace(a, b *VNode) bool {
	if a == nil || b == nil {
		return a != b
	}
	if a.Kind != b.Kind {
		return true
	}
	if a.Kind == KindText {
		return !StrictEqual(a.Value, b.Value)
	}
	return a.Type != b.Type
}

// PropsDiffer reports whether the prop bags of a and b differ.
//
// Every key of either bag is inspected. Two functions never count as a
// change. Two slices are compared element-wise up to the longer length,
// then with StrictEqual like every other value. A slice is never strictly
// equal to another, so a pair of slice props always reports a change.
func PropsDiffer(a, b *VNode) bool {
	var pa, pb Props
	if a != nil {
		pa = a.Props
	}
	if b != nil {
		pb = b.Props
	}
	for _, k := range UnionKeys(pa, pb) {
		va, vb := pa[k], pb[k]
		if IsFunc(va) && IsFunc(vb) {
			continue
		}
		if isSlice(va) && isSlice(vb) && !sliceEqual(va, vb) {
			return true
		}
		if !StrictEqual(va, vb) {
			return true
		}
	}
	return false
}

// UnionKeys returns the sorted keys of a followed by the sorted keys of b
// that are not in a. Keys present in both appear once.
func UnionKeys(a, b Props) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	n := len(keys)
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys[n:])
	return keys
}
