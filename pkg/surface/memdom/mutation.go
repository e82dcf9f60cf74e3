package memdom

import "fmt"

// MutationOp identifies a recorded surface operation.
type MutationOp string

const (
	OpCreateElement MutationOp = "createElement"
	OpCreateText    MutationOp = "createText"
	OpAppend        MutationOp = "append"
	OpRemove        MutationOp = "remove"
	OpReplace       MutationOp = "replace"
	OpSetAttr       MutationOp = "setAttr"
	OpRemoveAttr    MutationOp = "removeAttr"
	OpSetProp       MutationOp = "setProp"
	OpAddListener   MutationOp = "addListener"
)

// Mutation is one entry of the document's mutation log.
type Mutation struct {
	Seq    uint64     `json:"seq"`
	Op     MutationOp `json:"op"`
	Target uint64     `json:"target,omitempty"` // parent or element being changed
	Node   uint64     `json:"node,omitempty"`   // node created, inserted or removed
	Old    uint64     `json:"old,omitempty"`    // node replaced
	Index  int        `json:"index"`
	Name   string     `json:"name,omitempty"`
	Value  string     `json:"value,omitempty"`
}

// String renders the mutation as a single log line.
func (m Mutation) String() string {
	switch m.Op {
	case OpCreateElement:
		return fmt.Sprintf("createElement #%d <%s>", m.Node, m.Name)
	case OpCreateText:
		return fmt.Sprintf("createText #%d %q", m.Node, m.Value)
	case OpAppend:
		return fmt.Sprintf("append #%d -> #%d[%d]", m.Node, m.Target, m.Index)
	case OpRemove:
		return fmt.Sprintf("remove #%d from #%d[%d]", m.Node, m.Target, m.Index)
	case OpReplace:
		return fmt.Sprintf("replace #%d with #%d in #%d[%d]", m.Old, m.Node, m.Target, m.Index)
	case OpSetAttr:
		return fmt.Sprintf("setAttr #%d %s=%q", m.Target, m.Name, m.Value)
	case OpRemoveAttr:
		return fmt.Sprintf("removeAttr #%d %s", m.Target, m.Name)
	case OpSetProp:
		return fmt.Sprintf("setProp #%d .%s=%s", m.Target, m.Name, m.Value)
	case OpAddListener:
		return fmt.Sprintf("addListener #%d %s", m.Target, m.Name)
	default:
		return fmt.Sprintf("%s #%d", m.Op, m.Target)
	}
}

// IsStructural reports whether the mutation changes the tree shape.
func (m Mutation) IsStructural() bool {
	switch m.Op {
	case OpAppend, OpRemove, OpReplace:
		return true
	}
	return false
}

// Count returns the number of mutations with the given op.
func Count(log []Mutation, op MutationOp) int {
	n := 0
	for _, m := range log {
		if m.Op == op {
			n++
		}
	}
	return n
}
