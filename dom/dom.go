// Package dom is a small event-capable document built on golang.org/x/net/html
// nodes. It provides element creation, attribute and text helpers, CSS queries
// and bubbling event dispatch with propagation control.
package dom

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Event is dispatched to a target element and bubbles to its ancestors.
type Event struct {
	Type   string
	Key    string
	Target *html.Node

	currentTarget    *html.Node
	stopped          bool
	defaultPrevented bool
}

// NewEvent creates an event of the given type.
func NewEvent(eventType string) *Event {
	return &Event{Type: eventType}
}

// KeyEvent creates a keydown event for key.
func KeyEvent(key string) *Event {
	return &Event{Type: "keydown", Key: key}
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault cancels the default action of the event.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool { return e.stopped }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// CurrentTarget is the element whose listener is running.
func (e *Event) CurrentTarget() *html.Node { return e.currentTarget }

// Listener handles an event.
type Listener func(ev *Event)

// Document owns a node tree and the listeners attached to its elements.
type Document struct {
	Root      *html.Node
	listeners map[*html.Node]map[string][]Listener
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{
		Root:      &html.Node{Type: html.DocumentNode},
		listeners: make(map[*html.Node]map[string][]Listener),
	}
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// AddEventListener attaches a listener for eventType on n.
func (d *Document) AddEventListener(n *html.Node, eventType string, l Listener) {
	byType, ok := d.listeners[n]
	if !ok {
		byType = make(map[string][]Listener)
		d.listeners[n] = byType
	}
	byType[eventType] = append(byType[eventType], l)
}

// RemoveEventListeners drops every listener attached to n or its descendants.
func (d *Document) RemoveEventListeners(n *html.Node) {
	delete(d.listeners, n)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		d.RemoveEventListeners(child)
	}
}

// Dispatch delivers ev to target and then to each ancestor until propagation
// is stopped. It returns false when the default action was prevented.
func (d *Document) Dispatch(target *html.Node, ev *Event) bool {
	ev.Target = target
	for n := target; n != nil; n = n.Parent {
		listeners := d.listeners[n][ev.Type]
		if len(listeners) == 0 {
			continue
		}
		ev.currentTarget = n
		for _, l := range listeners {
			l(ev)
		}
		if ev.stopped {
			break
		}
	}
	ev.currentTarget = nil
	return !ev.defaultPrevented
}

// Attr returns the value of an attribute.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or adds an attribute.
func SetAttr(n *html.Node, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// Value returns an input's current value.
func Value(n *html.Node) string {
	v, _ := Attr(n, "value")
	return v
}

// SetValue replaces an input's current value.
func SetValue(n *html.Node, value string) {
	SetAttr(n, "value", value)
}

// TextContent concatenates every text node below n.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

// SetTextContent replaces the children of n with a single text node.
func SetTextContent(n *html.Node, text string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// CloneTree deep-copies n without copying listeners.
func CloneTree(n *html.Node) *html.Node {
	cloned := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		cloned.AppendChild(CloneTree(child))
	}
	return cloned
}

// Query returns the first descendant of root matching a CSS selector, or nil.
func Query(root *html.Node, selector string) *html.Node {
	sel := goquery.NewDocumentFromNode(root).Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

// QueryAll returns every descendant of root matching a CSS selector.
func QueryAll(root *html.Node, selector string) []*html.Node {
	return goquery.NewDocumentFromNode(root).Find(selector).Nodes
}

// ParseElement parses markup and returns its first element.
func ParseElement(markup string) (*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return n, nil
		}
	}
	return nil, nil
}

// Render serializes n to HTML.
func Render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}
