package state

// State is a typed handle on one key of a Tree.
type State[T any] struct {
	tree *Tree
	key  string
}

// Bind returns a handle for key. The key must be declared in the tree's
// Data; Set on an undeclared key fails.
func Bind[T any](t *Tree, key string) *State[T] {
	return &State[T]{tree: t, key: key}
}

// Key returns the bound key.
func (s *State[T]) Key() string { return s.key }

// Get returns the current value, or the zero value of T if the stored
// value has another type.
func (s *State[T]) Get() T {
	v, _ := s.tree.Get(s.key).(T)
	return v
}

// Set writes value and triggers an update when the tree is mounted.
func (s *State[T]) Set(value T) error {
	return s.tree.Set(s.key, value)
}

// Update applies fn to the current value and writes the result.
func (s *State[T]) Update(fn func(T) T) error {
	return s.Set(fn(s.Get()))
}
