package memdom

import (
	"bytes"
	"fmt"
	"testing"
)

func TestOuterHTML(t *testing.T) {
	d := NewDocument()
	root := d.AddRoot("root")
	ul := mustElement(t, d, "ul")
	_ = ul.SetAttribute("class", "list")
	_ = ul.SetAttribute("aria-label", `a "quoted" <label>`)
	li := mustElement(t, d, "li")
	_ = li.AppendChild(d.CreateTextNode("1 < 2 & 3"))
	br := mustElement(t, d, "br")
	_ = ul.AppendChild(li)
	_ = ul.AppendChild(br)
	_ = root.AppendChild(ul)

	want := `<div id="root"><ul aria-label="a &#34;quoted&#34; &lt;label&gt;" class="list"><li>1 &lt; 2 &amp; 3</li><br></ul></div>`
	if got := OuterHTML(root); got != want {
		t.Errorf("OuterHTML() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteHTMLPrettyAndAnnotated(t *testing.T) {
	d := NewDocument()
	root := d.AddRoot("root")
	p := mustElement(t, d, "p")
	_ = p.AppendChild(d.CreateTextNode("hi"))
	_ = root.AppendChild(p)

	var buf bytes.Buffer
	if err := WriteHTML(&buf, root, HTMLOptions{Pretty: true, AnnotateIDs: true}); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	want := fmt.Sprintf("<div data-vt-id=\"%d\" id=\"root\">\n  <p data-vt-id=\"%d\">hi</p>\n</div>", root.ID(), p.ID())
	if buf.String() != want {
		t.Errorf("WriteHTML() =\n%s\nwant\n%s", buf.String(), want)
	}
}
