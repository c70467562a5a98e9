package attachment

import (
	"golang.org/x/net/html"
)

// ElementTag is the element persisted fragments are written as.
const ElementTag = "action-text-attachment"

const (
	attrContentType = "content-type"
	attrContent     = "content"
)

// ExportDOM renders n as an attachment element.
func ExportDOM(n *Node) *html.Node {
	return FragmentElement(ExportFragment(n))
}

// FragmentElement renders a fragment as an attachment element.
func FragmentElement(f Fragment) *html.Node {
	return &html.Node{
		Type: html.ElementNode,
		Data: ElementTag,
		Attr: []html.Attribute{
			{Key: attrContentType, Val: f.ContentType},
			{Key: attrContent, Val: f.Content},
		},
	}
}

// ElementFragment reads a fragment from an attachment element. ok is false
// when el is not an attachment element.
func ElementFragment(el *html.Node) (Fragment, bool) {
	if el == nil || el.Type != html.ElementNode || el.Data != ElementTag {
		return Fragment{}, false
	}

	var f Fragment
	for _, attr := range el.Attr {
		switch attr.Key {
		case attrContentType:
			f.ContentType = attr.Val
		case attrContent:
			f.Content = attr.Val
		}
	}
	return f, true
}

// ImportDOM creates a node from an attachment element using the default parser.
func ImportDOM(el *html.Node) (*Node, bool) {
	return defaultParser.ImportDOM(el)
}

// ImportDOM creates a node from an attachment element. ok is false for any
// element that is not a button attachment.
func (p ContentParser) ImportDOM(el *html.Node) (*Node, bool) {
	f, ok := ElementFragment(el)
	if !ok {
		return nil, false
	}
	return p.ImportFragment(f)
}
