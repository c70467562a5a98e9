package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rgonek/button-block/attachment"
	"golang.org/x/net/html"
)

// Entry is one attachment element found in a document.
type Entry struct {
	Fragment attachment.Fragment
	// Resolver names the candidate that accepted the fragment. Empty when
	// every candidate declined.
	Resolver string
	Value    Renderable
}

// Declined reports whether no candidate accepted the fragment.
func (e Entry) Declined() bool {
	return e.Value == nil
}

// Document is a persisted body whose attachments have been resolved once.
type Document struct {
	Entries []Entry

	doc      *goquery.Document
	resolved map[*html.Node]Renderable
}

// Scan parses markup and resolves every attachment element through chain, in
// document order.
func Scan(ctx context.Context, chain *Chain, markup string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	d := &Document{doc: doc, resolved: make(map[*html.Node]Renderable)}
	var scanErr error
	doc.Find(attachment.ElementTag).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		el := sel.Nodes[0]
		entry, err := resolveElement(ctx, chain, el)
		if err != nil {
			scanErr = err
			return false
		}
		if !entry.Declined() {
			d.resolved[el] = entry.Value
		}
		d.Entries = append(d.Entries, entry)
		return true
	})
	if scanErr != nil {
		return nil, scanErr
	}
	return d, nil
}

// PlainText returns the document text with every resolved attachment
// replaced by its projection. Top-level blocks become lines.
func (d *Document) PlainText() string {
	var lines []string
	d.doc.Find("body").Contents().Each(func(_ int, sel *goquery.Selection) {
		var sb strings.Builder
		d.writeText(&sb, sel.Nodes[0])
		if text := strings.TrimSpace(sb.String()); text != "" {
			lines = append(lines, text)
		}
	})
	return strings.Join(lines, "\n")
}

func (d *Document) writeText(sb *strings.Builder, n *html.Node) {
	if r, ok := d.resolved[n]; ok {
		sb.WriteString(r.PlainText())
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.writeText(sb, c)
	}
}

// ScanDocument resolves every attachment element in markup, in document order.
func ScanDocument(ctx context.Context, chain *Chain, markup string) ([]Entry, error) {
	d, err := Scan(ctx, chain, markup)
	if err != nil {
		return nil, err
	}
	return d.Entries, nil
}

// ToPlainText is Scan followed by PlainText.
func ToPlainText(ctx context.Context, chain *Chain, markup string) (string, error) {
	d, err := Scan(ctx, chain, markup)
	if err != nil {
		return "", err
	}
	return d.PlainText(), nil
}

func resolveElement(ctx context.Context, chain *Chain, el *html.Node) (Entry, error) {
	f, _ := attachment.ElementFragment(el)
	entry := Entry{Fragment: f}

	match, ok, err := chain.Resolve(ctx, f)
	if err != nil {
		return Entry{}, err
	}
	if ok {
		entry.Resolver = match.Name
		entry.Value = match.Value
	}
	return entry, nil
}
