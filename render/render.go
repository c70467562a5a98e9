// Package render resolves persisted button fragments for contexts that do not
// run an editor, such as plain-text export and read-only pages.
package render

import (
	"context"
	"io"
	"sync"

	"github.com/rgonek/button-block/attachment"
	"github.com/rgonek/button-block/resolver"
	"github.com/sirupsen/logrus"
)

// CandidateName identifies the button renderer in a resolver chain.
const CandidateName = "button"

// Chain resolves fragments of any attachment kind.
type Chain = resolver.Chain[attachment.Fragment, Renderable]

// Config configures a Renderer.
type Config struct {
	// MarkerClasses lists the anchor classes accepted in legacy content.
	MarkerClasses []string
	// Logger receives fallback diagnostics. Nil discards them.
	Logger logrus.FieldLogger
}

// Renderer turns button fragments into Blocks.
type Renderer struct {
	parser attachment.ContentParser
	log    logrus.FieldLogger
}

// New creates a Renderer.
func New(cfg Config) *Renderer {
	log := cfg.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Renderer{
		parser: attachment.NewContentParser(cfg.MarkerClasses...),
		log:    log,
	}
}

// Parse resolves f. ok is false when f is not a button fragment; malformed
// content yields a Block with defaults and warnings instead of an error.
func (r *Renderer) Parse(f attachment.Fragment) (*Block, bool) {
	if !f.IsButton() {
		r.log.WithField("content_type", f.ContentType).Debug("declining non-button fragment")
		return nil, false
	}

	res := r.parser.Parse(f.Content)
	if len(res.Warnings) > 0 {
		r.log.WithFields(logrus.Fields{
			"content_type": f.ContentType,
			"case":         res.Case,
			"warnings":     len(res.Warnings),
		}).Debug("button content resolved with fallbacks")
	}

	return &Block{
		ButtonText: res.Label,
		ButtonLink: res.Target,
		Warnings:   res.Warnings,
	}, true
}

// Candidate adapts the renderer to a resolver chain.
func (r *Renderer) Candidate() resolver.Candidate[attachment.Fragment, Renderable] {
	return resolver.Candidate[attachment.Fragment, Renderable]{
		Name:     CandidateName,
		Priority: attachment.ImportPriority,
		Resolve: func(_ context.Context, f attachment.Fragment) (Renderable, bool, error) {
			b, ok := r.Parse(f)
			if !ok {
				return nil, false, nil
			}
			return b, true, nil
		},
	}
}

// Install adds r to chain. Installing into a chain that already has a button
// renderer is a no-op and reports false.
func Install(chain *Chain, r *Renderer) bool {
	return chain.Register(r.Candidate())
}

var (
	defaultOnce  sync.Once
	defaultChain *Chain
)

// DefaultChain returns the process-wide chain with the button renderer
// installed. The renderer is installed exactly once.
func DefaultChain() *Chain {
	defaultOnce.Do(func() {
		defaultChain = resolver.New[attachment.Fragment, Renderable]()
		Install(defaultChain, New(Config{}))
	})
	return defaultChain
}
