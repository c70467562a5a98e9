// Package widget builds the editable DOM for a button node and keeps the node,
// its two input fields and the link preview in sync.
package widget

import (
	"errors"
	"fmt"
	"io"

	"github.com/rgonek/button-block/attachment"
	"github.com/rgonek/button-block/dom"
	"github.com/rgonek/button-block/editor"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// ErrTemplate is returned when a widget template lacks a required element.
var ErrTemplate = errors.New("invalid widget template")

// PreviewPlaceholder is shown in the preview while the label is empty.
const PreviewPlaceholder = "Add button text"

const (
	selectorPreview = `[data-role="preview"]`
	selectorText    = `input[data-role="text"]`
	selectorLink    = `input[data-role="link"]`
)

// DefaultTemplate is the markup cloned for every widget.
const DefaultTemplate = `<div class="lexxy-button-block" contenteditable="false" data-lexical-decorator="true">` +
	`<a class="lexxy-button" data-role="preview" href="#" tabindex="-1">Click me</a>` +
	`<label class="lexxy-button-block__field">Text <input type="text" data-role="text" placeholder="Button text" autocomplete="off"></label>` +
	`<label class="lexxy-button-block__field">Link <input type="url" data-role="link" placeholder="https://" autocomplete="off"></label>` +
	`</div>`

// Host runs transactional updates.
type Host interface {
	Update(fn func(tx *editor.Txn) error) error
}

// Option configures a Binder.
type Option func(*Binder)

// WithTemplate replaces DefaultTemplate.
func WithTemplate(markup string) Option {
	return func(b *Binder) {
		b.markup = markup
	}
}

// WithLogger sets the logger used for failed updates.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.log = logger
		}
	}
}

// Binder renders button widgets for one editor.
type Binder struct {
	host     Host
	doc      *dom.Document
	log      logrus.FieldLogger
	markup   string
	template *html.Node
}

// New creates a Binder. A template without a preview anchor and both input
// fields is rejected with ErrTemplate.
func New(host Host, doc *dom.Document, opts ...Option) (*Binder, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	b := &Binder{
		host:   host,
		doc:    doc,
		log:    discard,
		markup: DefaultTemplate,
	}
	for _, opt := range opts {
		opt(b)
	}

	tmpl, err := dom.ParseElement(b.markup)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	if tmpl == nil {
		return nil, fmt.Errorf("%w: no root element", ErrTemplate)
	}
	for _, selector := range []string{selectorPreview, selectorText, selectorLink} {
		if dom.Query(tmpl, selector) == nil {
			return nil, fmt.Errorf("%w: missing %s", ErrTemplate, selector)
		}
	}
	b.template = tmpl

	return b, nil
}

// Render builds the widget DOM for n and wires its event handlers.
func (b *Binder) Render(n *attachment.Node) *html.Node {
	root := dom.CloneTree(b.template)
	preview := dom.Query(root, selectorPreview)
	textField := dom.Query(root, selectorText)
	linkField := dom.Query(root, selectorLink)

	dom.SetAttr(preview, "href", n.Target)
	dom.SetTextContent(preview, previewText(n.Label))
	dom.SetValue(textField, n.Label)
	dom.SetValue(linkField, visibleTarget(n.Target))

	key := n.Key()

	b.doc.AddEventListener(preview, "click", func(ev *dom.Event) {
		ev.PreventDefault()
	})

	b.doc.AddEventListener(textField, "input", func(ev *dom.Event) {
		value := dom.Value(textField)
		b.update(key, func(btn *attachment.Node) {
			btn.Label = value
		})
		dom.SetTextContent(preview, previewText(value))
	})

	b.doc.AddEventListener(linkField, "input", func(ev *dom.Event) {
		target := dom.Value(linkField)
		if target == "" {
			target = attachment.DefaultTarget
		}
		b.update(key, func(btn *attachment.Node) {
			btn.Target = target
		})
		dom.SetAttr(preview, "href", target)
	})

	// Editing keys must reach the field, not the editor's document handlers.
	stop := func(ev *dom.Event) { ev.StopPropagation() }
	b.doc.AddEventListener(textField, "keydown", stop)
	b.doc.AddEventListener(linkField, "keydown", stop)

	return root
}

// ShouldRerender is always false: the widget owns its DOM after creation, and
// replacing it would drop the state of the inputs.
func (b *Binder) ShouldRerender(prev, next *attachment.Node) bool {
	return false
}

func (b *Binder) update(key string, mutate func(*attachment.Node)) {
	err := b.host.Update(func(tx *editor.Txn) error {
		n, err := tx.Node(key)
		if err != nil {
			return err
		}
		btn, ok := n.(*attachment.Node)
		if !ok {
			return fmt.Errorf("node %q is a %s, not a button", key, n.Kind())
		}
		mutate(btn)
		return nil
	})
	if err != nil {
		b.log.WithError(err).WithField("key", key).Warn("button update failed")
	}
}

func previewText(label string) string {
	if label == "" {
		return PreviewPlaceholder
	}
	return label
}

func visibleTarget(target string) string {
	if target == attachment.DefaultTarget {
		return ""
	}
	return target
}
