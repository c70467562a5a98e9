// Package mdimport recovers buttons from Markdown documents that contain their
// plain-text projection, "[Button: label](link)".
package mdimport

import (
	"fmt"
	"strings"

	"github.com/rgonek/button-block/attachment"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const labelPrefix = "Button:"

// Result holds the buttons found in a document, in document order.
type Result struct {
	Buttons  []*attachment.Node   `json:"-"`
	Warnings []attachment.Warning `json:"warnings,omitempty"`
}

// Fragments returns the persisted form of every button.
func (r Result) Fragments() []attachment.Fragment {
	out := make([]attachment.Fragment, 0, len(r.Buttons))
	for _, n := range r.Buttons {
		out = append(out, attachment.ExportFragment(n))
	}
	return out
}

// Reader parses Markdown with GFM enabled.
type Reader struct {
	parser goldmark.Markdown
}

// New creates a Reader.
func New() *Reader {
	return &Reader{
		parser: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

var defaultReader = New()

// Read finds buttons using a shared Reader.
func Read(markdown string) Result {
	return defaultReader.Read(markdown)
}

// Read finds every link whose text starts with "Button:". Links with an empty
// label or destination get the attachment defaults.
func (r *Reader) Read(markdown string) Result {
	source := []byte(markdown)
	root := r.parser.Parser().Parse(text.NewReader(source))

	var res Result
	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := node.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}

		label, ok := strings.CutPrefix(inlineText(link, source), labelPrefix)
		if !ok {
			return ast.WalkSkipChildren, nil
		}
		label = strings.TrimSpace(label)
		target := strings.TrimSpace(string(link.Destination))

		if label == "" {
			res.warn("buttonText", attachment.DefaultLabel)
		}
		if target == "" {
			res.warn("buttonLink", attachment.DefaultTarget)
		}
		res.Buttons = append(res.Buttons, attachment.New(label, target))
		return ast.WalkSkipChildren, nil
	})
	return res
}

func (r *Result) warn(field, fallback string) {
	r.Warnings = append(r.Warnings, attachment.Warning{
		Type:    attachment.WarningDefaultedField,
		Field:   field,
		Message: fmt.Sprintf("%s is empty in markdown button %d; using %q", field, len(r.Buttons)+1, fallback),
	})
}

func inlineText(node ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch typed := n.(type) {
		case *ast.Text:
			sb.Write(typed.Segment.Value(source))
			if typed.SoftLineBreak() || typed.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(typed.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
