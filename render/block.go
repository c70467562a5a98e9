package render

import (
	"fmt"
	"html"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rgonek/button-block/attachment"
)

// Renderable is a resolved attachment that can be shown outside the editor.
type Renderable interface {
	PlainText() string
	HTML() string
}

// Block is a button resolved from a persisted fragment. It is immutable once
// returned.
type Block struct {
	ButtonText string               `json:"buttonText"`
	ButtonLink string               `json:"buttonLink"`
	Warnings   []attachment.Warning `json:"warnings,omitempty"`
}

// PlainText renders the block as "[Button: text](link)".
func (b *Block) PlainText() string {
	return attachment.PlainText(b.ButtonText, b.ButtonLink)
}

// HTML renders the block as a read-only anchor. Links with schemes other than
// http, https and mailto lose their href.
func (b *Block) HTML() string {
	markup := fmt.Sprintf(`<a class="%s" href="%s">%s</a>`,
		attachment.MarkerClass,
		html.EscapeString(b.ButtonLink),
		html.EscapeString(b.ButtonText),
	)
	return anchorPolicy.Sanitize(markup)
}

var anchorPolicy = newAnchorPolicy()

func newAnchorPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[A-Za-z0-9_ -]+$`)).OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	return p
}
