// Package editor is an in-memory host for document blocks. It keeps the block
// list, runs every mutation inside a transactional update, re-renders the live
// DOM once per committed update, dispatches commands and owns the toolbar.
package editor

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rgonek/button-block/dom"
	"github.com/rgonek/button-block/resolver"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

var (
	// ErrUnknownCommand is returned when dispatching an unregistered command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUnknownNode is returned for unknown keys and unregistered node kinds.
	ErrUnknownNode = errors.New("unknown node")
	// ErrReadOnly is returned when a transaction is used after its update ended.
	ErrReadOnly = errors.New("transaction is closed")
)

const (
	// CommandUndo restores the state before the last committed update.
	CommandUndo = "undo"

	historyLimit = 100
)

// Capabilities describes what the hosting surface supports.
type Capabilities struct {
	RichText bool
}

// Command mutates the document inside an update.
type Command func(tx *Txn) error

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.log = logger
		}
	}
}

// WithKeyGenerator overrides how node keys are assigned.
func WithKeyGenerator(next func() string) Option {
	return func(e *Editor) {
		if next != nil {
			e.newKey = next
		}
	}
}

type mountedBlock struct {
	el   *html.Node
	prev Node
}

type historyEntry struct {
	blocks []Node
	cursor string
}

// Editor holds one document.
type Editor struct {
	caps   Capabilities
	log    logrus.FieldLogger
	newKey func() string

	types     map[string]NodeType
	importers map[string]*resolver.Chain[*html.Node, Node]
	commands  map[string]Command

	blocks  []Node
	cursor  string
	txn     *Txn
	history []historyEntry

	doc          *dom.Document
	root         *html.Node
	toolbar      *Toolbar
	mounted      map[string]mountedBlock
	renderPasses int

	updateListeners []func()
	toolbarBuilders []func(*Toolbar)
}

// New creates an editor with the built-in paragraph type and undo control.
func New(caps Capabilities, opts ...Option) *Editor {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Editor{
		caps:      caps,
		log:       discard,
		newKey:    uuid.NewString,
		types:     make(map[string]NodeType),
		importers: make(map[string]*resolver.Chain[*html.Node, Node]),
		commands:  make(map[string]Command),
		doc:       dom.NewDocument(),
		mounted:   make(map[string]mountedBlock),
	}
	for _, opt := range opts {
		opt(e)
	}

	body := e.doc.CreateElement("body")
	e.doc.Root.AppendChild(body)

	e.toolbar = newToolbar(e.doc)
	body.AppendChild(e.toolbar.el)
	e.toolbar.Append(e.toolbar.NewButton(CommandUndo, "Undo", CommandUndo))
	e.doc.AddEventListener(e.toolbar.el, "click", e.handleToolbarClick)

	e.root = e.doc.CreateElement("div",
		html.Attribute{Key: "class", Val: "editor-root"},
		html.Attribute{Key: "contenteditable", Val: "true"},
	)
	body.AppendChild(e.root)
	e.doc.AddEventListener(e.root, "keydown", e.handleKeyDown)

	// The built-in type is valid by construction.
	_ = e.RegisterNode(paragraphType())
	e.RegisterImporter("p", resolver.Candidate[*html.Node, Node]{
		Name:    ParagraphKind,
		Resolve: importParagraph,
	})

	return e
}

// SupportsRichText reports the rich-text capability of the host surface.
func (e *Editor) SupportsRichText() bool {
	return e.caps.RichText
}

// Document returns the live DOM document.
func (e *Editor) Document() *dom.Document {
	return e.doc
}

// RootElement returns the editable root element.
func (e *Editor) RootElement() *html.Node {
	return e.root
}

// Toolbar returns the toolbar.
func (e *Editor) Toolbar() *Toolbar {
	return e.toolbar
}

// RegisterNode registers a node type. Registering a kind twice is a no-op.
func (e *Editor) RegisterNode(t NodeType) error {
	if t.Kind == "" {
		return errors.New("node type requires a kind")
	}
	if t.Render == nil || t.Clone == nil {
		return fmt.Errorf("node type %q requires Render and Clone", t.Kind)
	}
	if _, ok := e.types[t.Kind]; ok {
		e.log.WithField("kind", t.Kind).Debug("node type already registered")
		return nil
	}
	e.types[t.Kind] = t
	return nil
}

// HasNode reports whether a node kind is registered.
func (e *Editor) HasNode(kind string) bool {
	_, ok := e.types[kind]
	return ok
}

// RegisterImporter adds a DOM importer for elements with the given tag.
// Importers for the same tag are tried by descending priority.
func (e *Editor) RegisterImporter(tag string, c resolver.Candidate[*html.Node, Node]) bool {
	chain, ok := e.importers[tag]
	if !ok {
		chain = resolver.New[*html.Node, Node]()
		e.importers[tag] = chain
	}
	return chain.Register(c)
}

// RegisterCommand registers a command. Registering a name twice is a no-op
// and reports false.
func (e *Editor) RegisterCommand(name string, cmd Command) bool {
	if _, ok := e.commands[name]; ok || name == CommandUndo {
		return false
	}
	e.commands[name] = cmd
	return true
}

// HasCommand reports whether a command is registered.
func (e *Editor) HasCommand(name string) bool {
	_, ok := e.commands[name]
	return ok || name == CommandUndo
}

// Dispatch runs a command inside an update.
func (e *Editor) Dispatch(name string) error {
	if name == CommandUndo {
		e.Undo()
		return nil
	}
	cmd, ok := e.commands[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return e.Update(func(tx *Txn) error {
		return cmd(tx)
	})
}

// OnUpdate registers a listener called once after every committed update.
func (e *Editor) OnUpdate(fn func()) {
	e.updateListeners = append(e.updateListeners, fn)
}

// OnToolbar registers a toolbar builder. Builders run on every BuildToolbar.
func (e *Editor) OnToolbar(fn func(*Toolbar)) {
	e.toolbarBuilders = append(e.toolbarBuilders, fn)
}

// BuildToolbar runs every toolbar builder. It may be called any number of times.
func (e *Editor) BuildToolbar() {
	for _, build := range e.toolbarBuilders {
		build(e.toolbar)
	}
}

// Update runs fn as one atomic mutation. If fn fails the document is left
// unchanged; otherwise the DOM is reconciled exactly once. Nested calls join
// the running update.
func (e *Editor) Update(fn func(tx *Txn) error) error {
	if e.txn != nil {
		return fn(e.txn)
	}

	before := historyEntry{blocks: e.cloneBlocks(e.blocks), cursor: e.cursor}
	tx := &Txn{editor: e, dirty: make(map[string]bool)}
	e.txn = tx

	err := func() error {
		defer func() {
			tx.closed = true
			e.txn = nil
		}()
		return fn(tx)
	}()
	if err != nil {
		e.blocks = before.blocks
		e.cursor = before.cursor
		return err
	}

	e.pushHistory(before)
	e.commit(tx.dirty)
	return nil
}

// Undo restores the state before the last committed update.
func (e *Editor) Undo() bool {
	if len(e.history) == 0 {
		return false
	}

	last := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.blocks = last.blocks
	e.cursor = last.cursor

	// Restored nodes are new objects; widgets must be rebuilt from them.
	for key, m := range e.mounted {
		e.unmount(key, m)
	}
	e.commit(nil)
	return true
}

// Blocks returns copies of the current blocks.
func (e *Editor) Blocks() []Node {
	return e.cloneBlocks(e.blocks)
}

// Node returns a copy of the block with the given key.
func (e *Editor) Node(key string) (Node, bool) {
	for _, n := range e.blocks {
		if n.Key() == key {
			return e.clone(n), true
		}
	}
	return nil, false
}

// CursorKey returns the key of the block holding the cursor.
func (e *Editor) CursorKey() string {
	return e.cursor
}

// Element returns the mounted DOM of a block.
func (e *Editor) Element(key string) *html.Node {
	return e.mounted[key].el
}

// RenderPasses counts reconciliations performed so far.
func (e *Editor) RenderPasses() int {
	return e.renderPasses
}

func (e *Editor) commit(dirty map[string]bool) {
	e.reconcile(dirty)
	e.renderPasses++
	for _, fn := range e.updateListeners {
		fn()
	}
}

func (e *Editor) reconcile(dirty map[string]bool) {
	present := make(map[string]bool, len(e.blocks))
	order := make([]*html.Node, 0, len(e.blocks))

	for _, n := range e.blocks {
		key := n.Key()
		present[key] = true
		t := e.types[n.Kind()]

		m, ok := e.mounted[key]
		switch {
		case !ok:
			m.el = t.Render(n)
		case dirty[key] && (t.ShouldRerender == nil || t.ShouldRerender(m.prev, n)):
			e.doc.RemoveEventListeners(m.el)
			m.el = t.Render(n)
		}
		m.prev = t.Clone(n)
		e.mounted[key] = m
		order = append(order, m.el)
	}

	for key, m := range e.mounted {
		if !present[key] {
			e.unmount(key, m)
		}
	}

	for e.root.FirstChild != nil {
		e.root.RemoveChild(e.root.FirstChild)
	}
	for _, el := range order {
		dom.Detach(el)
		e.root.AppendChild(el)
	}
}

func (e *Editor) unmount(key string, m mountedBlock) {
	e.doc.RemoveEventListeners(m.el)
	dom.Detach(m.el)
	delete(e.mounted, key)
}

func (e *Editor) pushHistory(entry historyEntry) {
	e.history = append(e.history, entry)
	if len(e.history) > historyLimit {
		e.history = e.history[len(e.history)-historyLimit:]
	}
}

func (e *Editor) clone(n Node) Node {
	return e.types[n.Kind()].Clone(n)
}

func (e *Editor) cloneBlocks(blocks []Node) []Node {
	cloned := make([]Node, 0, len(blocks))
	for _, n := range blocks {
		cloned = append(cloned, e.clone(n))
	}
	return cloned
}

func (e *Editor) handleKeyDown(ev *dom.Event) {
	var err error
	switch ev.Key {
	case "Enter":
		err = e.Update(func(tx *Txn) error {
			return tx.Insert(NewParagraph(""))
		})
	case "Delete", "Backspace":
		err = e.Update(func(tx *Txn) error {
			cur, ok := tx.Cursor()
			if !ok {
				return nil
			}
			return tx.Remove(cur.Key())
		})
	default:
		return
	}
	ev.PreventDefault()
	if err != nil {
		e.log.WithError(err).WithField("key", ev.Key).Warn("key handler failed")
	}
}

func (e *Editor) handleToolbarClick(ev *dom.Event) {
	for n := ev.Target; n != nil && n != e.toolbar.el; n = n.Parent {
		if n.Type != html.ElementNode || n.Data != "button" {
			continue
		}
		command, ok := dom.Attr(n, "data-command")
		if !ok {
			return
		}
		if err := e.Dispatch(command); err != nil {
			e.log.WithError(err).WithField("command", command).Warn("toolbar command failed")
		}
		return
	}
}
