package editor

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

// Node is a top-level block held by the editor.
type Node interface {
	Key() string
	SetKey(key string)
	Kind() string
	TextContent() string
}

// NodeType describes how the editor renders and serializes one kind of node.
type NodeType struct {
	Kind string
	// Render creates the live DOM for a node.
	Render func(n Node) *html.Node
	// ShouldRerender reports whether the DOM of a node touched by an update
	// must be replaced. Nil always replaces.
	ShouldRerender func(prev, next Node) bool
	ExportJSON     func(n Node) ([]byte, error)
	ImportJSON     func(data []byte) (Node, error)
	ExportDOM      func(n Node) *html.Node
	// Clone copies a node, keeping its key.
	Clone func(n Node) Node
}

// ParagraphKind is the kind of the built-in text block.
const ParagraphKind = "paragraph"

// Paragraph is a plain text block.
type Paragraph struct {
	key  string
	Text string
}

// NewParagraph creates a paragraph.
func NewParagraph(text string) *Paragraph {
	return &Paragraph{Text: text}
}

func (p *Paragraph) Key() string         { return p.key }
func (p *Paragraph) SetKey(key string)   { p.key = key }
func (p *Paragraph) Kind() string        { return ParagraphKind }
func (p *Paragraph) TextContent() string { return p.Text }

// CloneNode copies the paragraph.
func (p *Paragraph) CloneNode() Node {
	cloned := *p
	return &cloned
}

type paragraphJSON struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func paragraphType() NodeType {
	return NodeType{
		Kind: ParagraphKind,
		Render: func(n Node) *html.Node {
			p := &html.Node{Type: html.ElementNode, Data: "p"}
			if text := n.TextContent(); text != "" {
				p.AppendChild(&html.Node{Type: html.TextNode, Data: text})
			} else {
				p.AppendChild(&html.Node{Type: html.ElementNode, Data: "br"})
			}
			return p
		},
		ExportJSON: func(n Node) ([]byte, error) {
			return json.Marshal(paragraphJSON{Type: ParagraphKind, Text: n.TextContent()})
		},
		ImportJSON: func(data []byte) (Node, error) {
			if !gjson.ValidBytes(data) {
				return nil, fmt.Errorf("invalid paragraph JSON")
			}
			return NewParagraph(gjson.GetBytes(data, "text").String()), nil
		},
		ExportDOM: func(n Node) *html.Node {
			p := &html.Node{Type: html.ElementNode, Data: "p"}
			p.AppendChild(&html.Node{Type: html.TextNode, Data: n.TextContent()})
			return p
		},
		Clone: func(n Node) Node {
			if p, ok := n.(*Paragraph); ok {
				return p.CloneNode()
			}
			return NewParagraph(n.TextContent())
		},
	}
}
