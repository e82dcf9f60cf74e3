// Package memdom is an in-memory render surface.
//
// It behaves like a browser document for the subset of operations the
// reconciler uses: element and text creation, attribute and property
// writes, event listeners, and child insertion, removal and replacement.
// Every mutation is recorded in a log that tests, the CLI and the preview
// server read back.
//
// A Document is not safe for concurrent use.
package memdom

import (
	"regexp"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/surface"
)

// validTag matches names the document accepts for CreateElement.
var validTag = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.:-]*$`)

// Document is an in-memory surface document rooted at a <body> element.
type Document struct {
	body   *Element
	nextID uint64
	log    []Mutation
	subs   map[uint64]func(Mutation)
	subSeq uint64
	seq    uint64
}

var _ surface.Document = (*Document)(nil)

// NewDocument creates an empty document.
func NewDocument() *Document {
	d := &Document{subs: make(map[uint64]func(Mutation))}
	d.body = d.newElement("body")
	return d
}

// Body returns the document's root element.
func (d *Document) Body() *Element {
	return d.body
}

func (d *Document) newElement(tag string) *Element {
	d.nextID++
	return &Element{
		nodeBase:  nodeBase{doc: d, id: d.nextID},
		tag:       tag,
		attrs:     make(map[string]string),
		props:     make(map[string]any),
		listeners: make(map[string][]any),
	}
}

// CreateElement implements surface.Document.
func (d *Document) CreateElement(tag string) (surface.Element, error) {
	if !validTag.MatchString(tag) {
		return nil, vterrors.New(vterrors.CodeInvalidTag).WithSubject(tag)
	}
	el := d.newElement(tag)
	d.record(Mutation{Op: OpCreateElement, Node: el.id, Name: tag})
	return el, nil
}

// CreateTextNode implements surface.Document.
func (d *Document) CreateTextNode(value any) surface.Node {
	d.nextID++
	t := &Text{nodeBase: nodeBase{doc: d, id: d.nextID}, data: textString(value)}
	d.record(Mutation{Op: OpCreateText, Node: t.id, Value: t.data})
	return t
}

// GetElementByID implements surface.Document. It searches the attached
// tree in document order.
func (d *Document) GetElementByID(id string) (surface.Element, bool) {
	el := d.body.find(func(e *Element) bool {
		v, ok := e.attrs["id"]
		return ok && v == id
	})
	if el == nil {
		return nil, false
	}
	return el, true
}

// NodeByID returns the attached node with the given internal node id.
func (d *Document) NodeByID(id uint64) (Node, bool) {
	var found Node
	d.body.walk(func(n Node) bool {
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// AddRoot creates a <div id="id"> under the body and returns it.
// It is the usual way to prepare a mount point.
func (d *Document) AddRoot(id string) *Element {
	el := d.newElement("div")
	el.attrs["id"] = id
	d.body.appendNode(el)
	return el
}

// Mutations returns a copy of the mutation log.
func (d *Document) Mutations() []Mutation {
	out := make([]Mutation, len(d.log))
	copy(out, d.log)
	return out
}

// ResetMutations clears the mutation log.
func (d *Document) ResetMutations() {
	d.log = d.log[:0]
}

// Subscribe registers fn to be called synchronously for every mutation.
// The returned function unsubscribes.
func (d *Document) Subscribe(fn func(Mutation)) func() {
	d.subSeq++
	id := d.subSeq
	d.subs[id] = fn
	return func() {
		delete(d.subs, id)
	}
}

func (d *Document) record(m Mutation) {
	d.seq++
	m.Seq = d.seq
	d.log = append(d.log, m)
	for _, fn := range d.subs {
		fn(m)
	}
}
