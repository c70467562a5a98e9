package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rgonek/button-block/dom"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type documentJSON struct {
	Blocks []json.RawMessage `json:"blocks"`
}

// ExportJSON serializes the document as {"blocks": [...]}.
func (e *Editor) ExportJSON() ([]byte, error) {
	doc := documentJSON{Blocks: make([]json.RawMessage, 0, len(e.blocks))}
	for _, n := range e.blocks {
		t := e.types[n.Kind()]
		if t.ExportJSON == nil {
			return nil, fmt.Errorf("node kind %q cannot be exported to JSON", n.Kind())
		}
		data, err := t.ExportJSON(n)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s node: %w", n.Kind(), err)
		}
		doc.Blocks = append(doc.Blocks, data)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document JSON: %w", err)
	}
	return data, nil
}

// ImportJSON replaces the document with blocks read from ExportJSON output.
func (e *Editor) ImportJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("failed to parse document JSON")
	}
	blocksValue := gjson.GetBytes(data, "blocks")
	if blocksValue.Exists() && !blocksValue.IsArray() {
		return errors.New("document JSON blocks must be an array")
	}

	var blocks []Node
	var importErr error
	blocksValue.ForEach(func(_, item gjson.Result) bool {
		kind := item.Get("type").String()
		t, ok := e.types[kind]
		if !ok || t.ImportJSON == nil {
			importErr = fmt.Errorf("%w: kind %q", ErrUnknownNode, kind)
			return false
		}
		n, err := t.ImportJSON([]byte(item.Raw))
		if err != nil {
			importErr = fmt.Errorf("failed to import %s node: %w", kind, err)
			return false
		}
		blocks = append(blocks, n)
		return true
	})
	if importErr != nil {
		return importErr
	}

	return e.Update(func(tx *Txn) error {
		return tx.Replace(blocks)
	})
}

// ExportHTML serializes the document as persisted HTML.
func (e *Editor) ExportHTML() (string, error) {
	var sb strings.Builder
	for _, n := range e.blocks {
		t := e.types[n.Kind()]
		if t.ExportDOM == nil {
			return "", fmt.Errorf("node kind %q cannot be exported to HTML", n.Kind())
		}
		if err := html.Render(&sb, t.ExportDOM(n)); err != nil {
			return "", fmt.Errorf("failed to render %s node: %w", n.Kind(), err)
		}
	}
	return sb.String(), nil
}

// ImportHTML replaces the document with blocks read from persisted HTML.
// Each top-level element goes through the importers registered for its tag;
// anything unclaimed becomes a paragraph holding its text.
func (e *Editor) ImportHTML(ctx context.Context, markup string) error {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	var blocks []Node
	for _, el := range nodes {
		switch el.Type {
		case html.ElementNode:
			n, err := e.importElement(ctx, el)
			if err != nil {
				return err
			}
			blocks = append(blocks, n)
		case html.TextNode:
			if text := strings.TrimSpace(el.Data); text != "" {
				blocks = append(blocks, NewParagraph(text))
			}
		}
	}

	return e.Update(func(tx *Txn) error {
		return tx.Replace(blocks)
	})
}

func (e *Editor) importElement(ctx context.Context, el *html.Node) (Node, error) {
	if chain, ok := e.importers[el.Data]; ok {
		match, handled, err := chain.Resolve(ctx, el)
		if err != nil {
			return nil, fmt.Errorf("failed to import <%s>: %w", el.Data, err)
		}
		if handled {
			e.log.WithField("tag", el.Data).WithField("importer", match.Name).Debug("imported element")
			return match.Value, nil
		}
	}
	return NewParagraph(strings.TrimSpace(dom.TextContent(el))), nil
}

func importParagraph(_ context.Context, el *html.Node) (Node, bool, error) {
	return NewParagraph(strings.TrimSpace(dom.TextContent(el))), true, nil
}
