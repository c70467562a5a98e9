// Package attachment holds the button attachment node and every conversion
// between its representations: the in-memory node, the JSON snapshot, the
// persisted attachment fragment and the attachment DOM element.
package attachment

import "fmt"

const (
	// Kind is the node type name registered with the editor.
	Kind = "button"
	// ContentType tags persisted fragments that carry a button.
	ContentType = "application/button"
	// DefaultLabel is used whenever a label is missing or empty.
	DefaultLabel = "Click me"
	// DefaultTarget is used whenever a link is missing or empty.
	DefaultTarget = "#"
	// MarkerClass identifies button anchors in legacy HTML content.
	MarkerClass = "lexxy-button"
	// ImportPriority is the priority of the attachment element importer.
	ImportPriority = 3
)

// Node is a button embedded in a document.
type Node struct {
	key    string
	Label  string
	Target string
}

// New creates a node, filling empty values with the defaults.
func New(label, target string) *Node {
	return &Node{
		Label:  orDefault(label, DefaultLabel),
		Target: orDefault(target, DefaultTarget),
	}
}

// Key returns the identity assigned by the host editor.
func (n *Node) Key() string {
	return n.key
}

// SetKey assigns the identity. The host editor calls it once on insertion.
func (n *Node) SetKey(key string) {
	n.key = key
}

// Kind returns the node type name.
func (n *Node) Kind() string {
	return Kind
}

// IsInline is always false: a button occupies its own block.
func (n *Node) IsInline() bool {
	return false
}

// Clone returns a structurally identical node with the same key.
func (n *Node) Clone() *Node {
	cloned := *n
	return &cloned
}

// TextContent is the label alone, used as the accessible name.
func (n *Node) TextContent() string {
	return n.Label
}

// PlainText renders the node as "[Button: label](target)".
func (n *Node) PlainText() string {
	return PlainText(n.Label, n.Target)
}

// PlainText formats a label and link the way non-rich contexts show a button.
func PlainText(label, link string) string {
	return fmt.Sprintf("[Button: %s](%s)", label, link)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
