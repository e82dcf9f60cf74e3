package memdom

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
)

// voidElements are elements that cannot have children and have no closing tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IDAttr is the attribute emitted for node ids when annotating.
const IDAttr = "data-vt-id"

// HTMLOptions configures HTML serialization.
type HTMLOptions struct {
	// Pretty enables indented output. Text-only elements stay on one line.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces.
	Indent string

	// AnnotateIDs adds a data-vt-id attribute carrying each element's node
	// id, so a client can address elements for event dispatch.
	AnnotateIDs bool
}

type htmlWriter struct {
	w    io.Writer
	opts HTMLOptions
	err  error
}

// WriteHTML serializes n and its descendants to w.
func WriteHTML(w io.Writer, n Node, opts HTMLOptions) error {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	hw := &htmlWriter{w: w, opts: opts}
	hw.node(n, 0)
	return hw.err
}

// OuterHTML returns the serialization of n including its own tag.
func OuterHTML(n Node) string {
	var buf bytes.Buffer
	_ = WriteHTML(&buf, n, HTMLOptions{})
	return buf.String()
}

// InnerHTML returns the serialization of e's children.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	hw := &htmlWriter{w: &buf, opts: HTMLOptions{Indent: "  "}}
	for _, c := range e.children {
		hw.node(c, 0)
	}
	return buf.String()
}

func (hw *htmlWriter) write(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

func (hw *htmlWriter) indent(depth int) {
	if hw.opts.Pretty {
		hw.write(strings.Repeat(hw.opts.Indent, depth))
	}
}

func (hw *htmlWriter) newline() {
	if hw.opts.Pretty {
		hw.write("\n")
	}
}

func (hw *htmlWriter) node(n Node, depth int) {
	switch v := n.(type) {
	case *Text:
		hw.write(html.EscapeString(v.data))
	case *Element:
		hw.element(v, depth)
	}
}

func (hw *htmlWriter) element(e *Element, depth int) {
	hw.write("<")
	hw.write(e.tag)
	if hw.opts.AnnotateIDs {
		hw.write(fmt.Sprintf(` %s="%d"`, IDAttr, e.id))
	}
	for _, name := range e.AttrNames() {
		hw.write(" ")
		hw.write(name)
		hw.write(`="`)
		hw.write(html.EscapeString(e.attrs[name]))
		hw.write(`"`)
	}
	hw.write(">")
	if voidElements[e.tag] {
		return
	}

	block := hw.opts.Pretty && hasElementChild(e)
	for _, c := range e.children {
		if block {
			hw.newline()
			hw.indent(depth + 1)
		}
		hw.node(c, depth+1)
	}
	if block {
		hw.newline()
		hw.indent(depth)
	}
	hw.write("</")
	hw.write(e.tag)
	hw.write(">")
}

func hasElementChild(e *Element) bool {
	for _, c := range e.children {
		if _, ok := c.(*Element); ok {
			return true
		}
	}
	return false
}
