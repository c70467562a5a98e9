package attachment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotButton is returned by strict decoders for fragments of another kind.
var ErrNotButton = errors.New("not a button attachment")

// Fragment is the persisted representation of an attachment: a content-type
// tag and an opaque content string.
type Fragment struct {
	ContentType string
	Content     string
}

type fragmentContent struct {
	ButtonText string `json:"buttonText"`
	ButtonLink string `json:"buttonLink"`
}

// IsButton reports whether the fragment is tagged as a button.
func (f Fragment) IsButton() bool {
	return f.ContentType == ContentType
}

// ExportFragment produces the persisted fragment for n. Invalid UTF-8 in the
// attributes is written as U+FFFD.
func ExportFragment(n *Node) Fragment {
	return Fragment{
		ContentType: ContentType,
		Content:     encodeContent(n.Label, n.Target),
	}
}

// ImportFragment creates a node from a fragment using the default content
// parser. ok is false when the fragment is not a button.
func ImportFragment(f Fragment) (*Node, bool) {
	return defaultParser.ImportFragment(f)
}

// ImportFragment creates a node from a fragment. ok is false when the fragment
// is not a button; malformed content is never an error.
func (p ContentParser) ImportFragment(f Fragment) (*Node, bool) {
	if !f.IsButton() {
		return nil, false
	}

	res := p.Parse(f.Content)
	return New(res.Label, res.Target), true
}

// DecodeFragment decodes f with the default content parser.
func DecodeFragment(f Fragment) (*Node, error) {
	return defaultParser.DecodeFragment(f)
}

// DecodeFragment is ImportFragment for callers that treat a foreign
// content-type as an error.
func (p ContentParser) DecodeFragment(f Fragment) (*Node, error) {
	n, ok := p.ImportFragment(f)
	if !ok {
		return nil, fmt.Errorf("%w: content-type %q", ErrNotButton, f.ContentType)
	}
	return n, nil
}

func encodeContent(label, target string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding two strings cannot fail.
	_ = enc.Encode(fragmentContent{ButtonText: label, ButtonLink: target})
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
