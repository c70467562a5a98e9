// Package extension registers the button node, its insertion command and its
// toolbar control with an editor.
package extension

import (
	"context"
	"fmt"
	"io"

	"github.com/rgonek/button-block/attachment"
	"github.com/rgonek/button-block/editor"
	"github.com/rgonek/button-block/resolver"
	"github.com/rgonek/button-block/widget"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// CommandInsertButtonBlock inserts a new button at the cursor.
const CommandInsertButtonBlock = "insertButtonBlock"

// ImporterName identifies the attachment element importer.
const ImporterName = "button-attachment"

// Option configures a Registrar.
type Option func(*Registrar)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Registrar) {
		if logger != nil {
			r.log = logger
		}
	}
}

// Registrar wires the button extension into editors.
type Registrar struct {
	config Config
	parser attachment.ContentParser
	log    logrus.FieldLogger
	active map[*editor.Editor]bool
}

// New creates a Registrar with the given config.
func New(config Config, opts ...Option) (*Registrar, error) {
	cfg := config.applyDefaults().clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &Registrar{
		config: cfg,
		parser: attachment.NewContentParser(cfg.MarkerClasses...),
		log:    discard,
		active: make(map[*editor.Editor]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the effective configuration.
func (r *Registrar) Config() Config {
	return r.config.clone()
}

// Activate registers the extension with host. It does nothing and reports
// false when the host lacks rich-text support. Activating twice is a no-op.
func (r *Registrar) Activate(host *editor.Editor) (bool, error) {
	if !host.SupportsRichText() {
		r.log.Debug("host does not support rich text; button extension inactive")
		return false, nil
	}
	if r.active[host] {
		r.log.Debug("button extension already active")
		return true, nil
	}

	var opts []widget.Option
	opts = append(opts, widget.WithLogger(r.log))
	if r.config.WidgetTemplate != "" {
		opts = append(opts, widget.WithTemplate(r.config.WidgetTemplate))
	}
	binder, err := widget.New(host, host.Document(), opts...)
	if err != nil {
		return false, fmt.Errorf("failed to build button widget: %w", err)
	}

	if err := host.RegisterNode(r.nodeType(binder)); err != nil {
		return false, fmt.Errorf("failed to register button node: %w", err)
	}
	host.RegisterImporter(attachment.ElementTag, resolver.Candidate[*html.Node, editor.Node]{
		Name:     ImporterName,
		Priority: r.config.ImportPriority,
		Resolve:  r.importElement,
	})
	host.RegisterCommand(CommandInsertButtonBlock, r.insertButtonBlock)
	host.OnToolbar(r.ConstructToolbar)

	r.active[host] = true
	return true, nil
}

// ConstructToolbar adds the insert button before the undo control, or at the
// end when there is none. A toolbar that already has it is left alone.
func (r *Registrar) ConstructToolbar(tb *editor.Toolbar) {
	if tb.Button(r.config.ToolbarButtonName) != nil {
		r.log.WithField("name", r.config.ToolbarButtonName).Debug("toolbar button already present")
		return
	}

	btn := tb.NewButton(r.config.ToolbarButtonName, r.config.ToolbarButtonLabel, CommandInsertButtonBlock)
	if undo := tb.Button(editor.CommandUndo); undo != nil {
		tb.InsertBefore(btn, undo)
		return
	}
	tb.Append(btn)
}

func (r *Registrar) insertButtonBlock(tx *editor.Txn) error {
	n := attachment.New(r.config.DefaultLabel, r.config.DefaultTarget)
	if err := tx.Insert(n); err != nil {
		return err
	}

	if next, ok := tx.Next(n.Key()); ok && next.Kind() == editor.ParagraphKind && next.TextContent() == "" {
		return tx.SetCursor(next.Key())
	}

	trailing := editor.NewParagraph("")
	if err := tx.InsertAfter(n.Key(), trailing); err != nil {
		return err
	}
	return tx.SetCursor(trailing.Key())
}

func (r *Registrar) importElement(_ context.Context, el *html.Node) (editor.Node, bool, error) {
	n, ok := r.parser.ImportDOM(el)
	if !ok {
		return nil, false, nil
	}
	return n, true, nil
}

func (r *Registrar) nodeType(binder *widget.Binder) editor.NodeType {
	return editor.NodeType{
		Kind: attachment.Kind,
		Render: func(n editor.Node) *html.Node {
			return binder.Render(n.(*attachment.Node))
		},
		ShouldRerender: func(prev, next editor.Node) bool {
			return binder.ShouldRerender(prev.(*attachment.Node), next.(*attachment.Node))
		},
		ExportJSON: func(n editor.Node) ([]byte, error) {
			return attachment.MarshalSnapshot(n.(*attachment.Node))
		},
		ImportJSON: func(data []byte) (editor.Node, error) {
			n, err := attachment.UnmarshalSnapshot(data)
			if err != nil {
				return nil, err
			}
			return n, nil
		},
		ExportDOM: func(n editor.Node) *html.Node {
			return attachment.ExportDOM(n.(*attachment.Node))
		},
		Clone: func(n editor.Node) editor.Node {
			return n.(*attachment.Node).Clone()
		},
	}
}
