package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/rgonek/button-block/attachment"
	"github.com/rgonek/button-block/resolver"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgreesWithAttachmentImport(t *testing.T) {
	contents := []string{
		`{"buttonText":"Go","buttonLink":"/x"}`,
		`{"buttonText":42,"buttonLink":true}`,
		`{"buttonText":"","buttonLink":null}`,
		`"<a class=\"lexxy-button\" href=\"/y\">Legacy</a>"`,
		`"<p>no anchor</p>"`,
		`[1,2]`,
		`not json`,
		``,
		`   `,
	}

	r := New(Config{})
	for _, content := range contents {
		f := attachment.Fragment{ContentType: attachment.ContentType, Content: content}

		block, ok := r.Parse(f)
		require.True(t, ok, content)
		n, ok := attachment.ImportFragment(f)
		require.True(t, ok, content)

		assert.Equal(t, n.Label, block.ButtonText, content)
		assert.Equal(t, n.Target, block.ButtonLink, content)
	}
}

func TestParseCases(t *testing.T) {
	r := New(Config{})

	tests := []struct {
		name     string
		content  string
		text     string
		link     string
		warnings bool
	}{
		{name: "object", content: `{"buttonText":"Go","buttonLink":"/x"}`, text: "Go", link: "/x"},
		{name: "legacy", content: `"<a class=\"lexxy-button\" href=\"/y\">Legacy</a>"`, text: "Legacy", link: "/y", warnings: true},
		{name: "broken", content: `{oops`, text: attachment.DefaultLabel, link: attachment.DefaultTarget, warnings: true},
		{name: "missing link", content: `{"buttonText":"Go"}`, text: "Go", link: attachment.DefaultTarget, warnings: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, ok := r.Parse(attachment.Fragment{ContentType: attachment.ContentType, Content: tt.content})
			require.True(t, ok)
			assert.Equal(t, tt.text, block.ButtonText)
			assert.Equal(t, tt.link, block.ButtonLink)
			assert.Equal(t, tt.warnings, len(block.Warnings) > 0)
		})
	}
}

func TestParseDeclinesOtherContentTypes(t *testing.T) {
	block, ok := New(Config{}).Parse(attachment.Fragment{ContentType: "application/other", Content: `{"buttonText":"Go"}`})
	assert.False(t, ok)
	assert.Nil(t, block)
}

func TestParseLogsFallbacks(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	_, ok := New(Config{Logger: logger}).Parse(attachment.Fragment{ContentType: attachment.ContentType, Content: "nope"})
	require.True(t, ok)
	assert.Contains(t, buf.String(), "content_type=application/button")
	assert.Contains(t, buf.String(), "case=default")
}

func TestPlainText(t *testing.T) {
	b := &Block{ButtonText: "Go", ButtonLink: "/x"}
	assert.Equal(t, "[Button: Go](/x)", b.PlainText())
}

func TestHTMLIsSanitized(t *testing.T) {
	b := &Block{ButtonText: "Go", ButtonLink: "https://example.com/a?b=1"}
	assert.Equal(t, `<a class="lexxy-button" href="https://example.com/a?b=1">Go</a>`, b.HTML())

	b = &Block{ButtonText: "<script>alert(1)</script>", ButtonLink: "javascript:alert(1)"}
	out := b.HTML()
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "alert(1)")
}

func TestInstallIsIdempotent(t *testing.T) {
	chain := resolver.New[attachment.Fragment, Renderable]()
	r := New(Config{})

	assert.True(t, Install(chain, r))
	assert.False(t, Install(chain, r))
	assert.False(t, Install(chain, New(Config{})))
	assert.Equal(t, 1, chain.Len())
}

func TestDefaultChainIsSingleton(t *testing.T) {
	first := DefaultChain()
	second := DefaultChain()
	assert.Same(t, first, second)
	assert.Equal(t, []string{CandidateName}, first.Names())
	assert.False(t, Install(first, New(Config{})))
}

type otherKind struct{ text string }

func (o otherKind) PlainText() string { return o.text }
func (o otherKind) HTML() string      { return o.text }

func TestChainFallsThroughToOtherKinds(t *testing.T) {
	chain := resolver.New[attachment.Fragment, Renderable]()
	Install(chain, New(Config{}))
	chain.Register(resolver.Candidate[attachment.Fragment, Renderable]{
		Name: "image",
		Resolve: func(_ context.Context, f attachment.Fragment) (Renderable, bool, error) {
			if f.ContentType != "image/png" {
				return nil, false, nil
			}
			return otherKind{text: "[image]"}, true, nil
		},
	})

	match, ok, err := chain.Resolve(context.Background(), attachment.Fragment{ContentType: "image/png"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "image", match.Name)

	match, ok, err = chain.Resolve(context.Background(), attachment.Fragment{ContentType: attachment.ContentType, Content: "{}"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, CandidateName, match.Name)
	assert.Equal(t, "[Button: Click me](#)", match.Value.PlainText())

	_, ok, err = chain.Resolve(context.Background(), attachment.Fragment{ContentType: "video/mp4"})
	require.NoError(t, err)
	assert.False(t, ok)
}
