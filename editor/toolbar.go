package editor

import (
	"fmt"

	"github.com/rgonek/button-block/dom"
	"golang.org/x/net/html"
)

// Toolbar is the row of command buttons above the editable root.
type Toolbar struct {
	doc *dom.Document
	el  *html.Node
}

func newToolbar(doc *dom.Document) *Toolbar {
	return &Toolbar{
		doc: doc,
		el: doc.CreateElement("div",
			html.Attribute{Key: "class", Val: "editor-toolbar"},
			html.Attribute{Key: "role", Val: "toolbar"},
		),
	}
}

// Element returns the toolbar element.
func (tb *Toolbar) Element() *html.Node {
	return tb.el
}

// NewButton creates a detached toolbar button that dispatches command.
func (tb *Toolbar) NewButton(name, label, command string) *html.Node {
	btn := tb.doc.CreateElement("button",
		html.Attribute{Key: "type", Val: "button"},
		html.Attribute{Key: "name", Val: name},
		html.Attribute{Key: "title", Val: label},
		html.Attribute{Key: "aria-label", Val: label},
		html.Attribute{Key: "data-command", Val: command},
		html.Attribute{Key: "aria-pressed", Val: "false"},
	)
	dom.SetTextContent(btn, label)
	return btn
}

// Button returns the button with the given name, or nil.
func (tb *Toolbar) Button(name string) *html.Node {
	return dom.Query(tb.el, fmt.Sprintf("button[name=%q]", name))
}

// Buttons returns every button in order.
func (tb *Toolbar) Buttons() []*html.Node {
	return dom.QueryAll(tb.el, "button")
}

// Append adds btn at the end.
func (tb *Toolbar) Append(btn *html.Node) {
	dom.Detach(btn)
	tb.el.AppendChild(btn)
}

// InsertBefore adds btn before ref. A ref outside the toolbar appends.
func (tb *Toolbar) InsertBefore(btn, ref *html.Node) {
	if ref == nil || ref.Parent == nil {
		tb.Append(btn)
		return
	}
	dom.Detach(btn)
	ref.Parent.InsertBefore(btn, ref)
}

// Remove deletes the button with the given name and reports whether it existed.
func (tb *Toolbar) Remove(name string) bool {
	btn := tb.Button(name)
	if btn == nil {
		return false
	}
	tb.doc.RemoveEventListeners(btn)
	dom.Detach(btn)
	return true
}

// Click dispatches a click on the named button.
func (tb *Toolbar) Click(name string) bool {
	btn := tb.Button(name)
	if btn == nil {
		return false
	}
	tb.doc.Dispatch(btn, dom.NewEvent("click"))
	return true
}
