package extension

import (
	"context"
	"testing"

	"github.com/rgonek/button-block/attachment"
	"github.com/rgonek/button-block/dom"
	"github.com/rgonek/button-block/editor"
	"github.com/rgonek/button-block/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func activeEditor(t *testing.T, cfg Config) (*editor.Editor, *Registrar) {
	t.Helper()

	r, err := New(cfg)
	require.NoError(t, err)

	e := editor.New(editor.Capabilities{RichText: true})
	ok, err := r.Activate(e)
	require.NoError(t, err)
	require.True(t, ok)
	return e, r
}

func buttonNames(tb *editor.Toolbar) []string {
	var names []string
	for _, btn := range tb.Buttons() {
		name, _ := dom.Attr(btn, "name")
		names = append(names, name)
	}
	return names
}

func kinds(blocks []editor.Node) []string {
	out := make([]string, 0, len(blocks))
	for _, n := range blocks {
		out = append(out, n.Kind())
	}
	return out
}

func TestActivateIsInertWithoutRichText(t *testing.T) {
	r, err := New(Config{})
	require.NoError(t, err)

	e := editor.New(editor.Capabilities{RichText: false})
	ok, err := r.Activate(e)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, e.HasNode(attachment.Kind))
	assert.False(t, e.HasCommand(CommandInsertButtonBlock))
	e.BuildToolbar()
	assert.Equal(t, []string{editor.CommandUndo}, buttonNames(e.Toolbar()))
}

func TestActivateRegistersNodeAndCommand(t *testing.T) {
	e, r := activeEditor(t, Config{})

	assert.True(t, e.HasNode(attachment.Kind))
	assert.True(t, e.HasCommand(CommandInsertButtonBlock))

	ok, err := r.Activate(e)
	require.NoError(t, err)
	assert.True(t, ok)

	e.BuildToolbar()
	assert.Equal(t, []string{"insert-button", editor.CommandUndo}, buttonNames(e.Toolbar()))
}

func TestToolbarConstructionIsIdempotent(t *testing.T) {
	e, _ := activeEditor(t, Config{})

	e.BuildToolbar()
	e.BuildToolbar()

	assert.Len(t, dom.QueryAll(e.Toolbar().Element(), `button[name="insert-button"]`), 1)
	assert.Equal(t, []string{"insert-button", editor.CommandUndo}, buttonNames(e.Toolbar()))
}

func TestToolbarButtonContract(t *testing.T) {
	e, _ := activeEditor(t, Config{ToolbarButtonLabel: "Add a button"})
	e.BuildToolbar()

	btn := e.Toolbar().Button("insert-button")
	require.NotNil(t, btn)

	attr := func(key string) string {
		v, ok := dom.Attr(btn, key)
		require.True(t, ok, key)
		return v
	}
	assert.Equal(t, "button", btn.Data)
	assert.Equal(t, "button", attr("type"))
	assert.Equal(t, "Add a button", attr("aria-label"))
	assert.Equal(t, CommandInsertButtonBlock, attr("data-command"))
	assert.Equal(t, "false", attr("aria-pressed"))
}

func TestToolbarButtonDefaults(t *testing.T) {
	e, _ := activeEditor(t, Config{})
	e.BuildToolbar()

	btn := e.Toolbar().Button("insert-button")
	require.NotNil(t, btn)
	label, ok := dom.Attr(btn, "aria-label")
	require.True(t, ok)
	assert.Equal(t, "Insert Button", label)
}

func TestToolbarAppendsWithoutUndo(t *testing.T) {
	e, _ := activeEditor(t, Config{})
	e.Toolbar().Append(e.Toolbar().NewButton("bold", "Bold", "bold"))
	require.True(t, e.Toolbar().Remove(editor.CommandUndo))

	e.BuildToolbar()
	assert.Equal(t, []string{"bold", "insert-button"}, buttonNames(e.Toolbar()))
}

func TestInsertCommandAddsTrailingParagraph(t *testing.T) {
	e, _ := activeEditor(t, Config{})

	require.NoError(t, e.Dispatch(CommandInsertButtonBlock))

	blocks := e.Blocks()
	require.Equal(t, []string{attachment.Kind, editor.ParagraphKind}, kinds(blocks))
	btn := blocks[0].(*attachment.Node)
	assert.Equal(t, attachment.DefaultLabel, btn.Label)
	assert.Equal(t, attachment.DefaultTarget, btn.Target)
	assert.Equal(t, "", blocks[1].TextContent())
	assert.Equal(t, blocks[1].Key(), e.CursorKey())
	assert.Equal(t, 1, e.RenderPasses())
}

func TestInsertCommandReusesEmptyParagraph(t *testing.T) {
	e, _ := activeEditor(t, Config{})
	require.NoError(t, e.Update(func(tx *editor.Txn) error {
		first := editor.NewParagraph("intro")
		if err := tx.Insert(first); err != nil {
			return err
		}
		if err := tx.Insert(editor.NewParagraph("")); err != nil {
			return err
		}
		return tx.SetCursor(first.Key())
	}))

	require.NoError(t, e.Dispatch(CommandInsertButtonBlock))
	assert.Equal(t, []string{editor.ParagraphKind, attachment.Kind, editor.ParagraphKind}, kinds(e.Blocks()))
}

func TestInsertCommandBeforeTextAddsEmptyLine(t *testing.T) {
	e, _ := activeEditor(t, Config{})
	require.NoError(t, e.Update(func(tx *editor.Txn) error {
		head := editor.NewParagraph("head")
		if err := tx.Insert(head); err != nil {
			return err
		}
		if err := tx.Insert(editor.NewParagraph("tail")); err != nil {
			return err
		}
		return tx.SetCursor(head.Key())
	}))

	require.NoError(t, e.Dispatch(CommandInsertButtonBlock))

	blocks := e.Blocks()
	require.Equal(t, []string{editor.ParagraphKind, attachment.Kind, editor.ParagraphKind, editor.ParagraphKind}, kinds(blocks))
	assert.Equal(t, "", blocks[2].TextContent())
	assert.Equal(t, "tail", blocks[3].TextContent())
}

func TestToolbarClickInsertsConfiguredButton(t *testing.T) {
	e, _ := activeEditor(t, Config{DefaultLabel: "Sign up", DefaultTarget: "/signup"})
	e.BuildToolbar()

	require.True(t, e.Toolbar().Click("insert-button"))

	blocks := e.Blocks()
	require.NotEmpty(t, blocks)
	btn, ok := blocks[0].(*attachment.Node)
	require.True(t, ok)
	assert.Equal(t, "Sign up", btn.Label)
	assert.Equal(t, "/signup", btn.Target)
}

func TestEditedButtonSurvivesHTMLAndJSON(t *testing.T) {
	e, _ := activeEditor(t, Config{})
	require.NoError(t, e.Dispatch(CommandInsertButtonBlock))
	key := e.Blocks()[0].Key()

	widgetEl := e.Element(key)
	textField := dom.Query(widgetEl, `input[data-role="text"]`)
	linkField := dom.Query(widgetEl, `input[data-role="link"]`)
	dom.SetValue(textField, "Read more")
	e.Document().Dispatch(textField, dom.NewEvent("input"))
	dom.SetValue(linkField, "/articles/1")
	e.Document().Dispatch(linkField, dom.NewEvent("input"))

	persisted, err := e.ExportHTML()
	require.NoError(t, err)
	assert.Contains(t, persisted, `content-type="application/button"`)

	other, _ := activeEditor(t, Config{})
	require.NoError(t, other.ImportHTML(context.Background(), persisted))
	btn, ok := other.Blocks()[0].(*attachment.Node)
	require.True(t, ok)
	assert.Equal(t, "Read more", btn.Label)
	assert.Equal(t, "/articles/1", btn.Target)

	snapshot, err := e.ExportJSON()
	require.NoError(t, err)
	assert.Contains(t, string(snapshot), `"buttonText":"Read more"`)

	third, _ := activeEditor(t, Config{})
	require.NoError(t, third.ImportJSON(snapshot))
	btn, ok = third.Blocks()[0].(*attachment.Node)
	require.True(t, ok)
	assert.Equal(t, "Read more", btn.Label)
	assert.Equal(t, "/articles/1", btn.Target)
}

func TestImportPriorityBeatsCompetingImporter(t *testing.T) {
	e, _ := activeEditor(t, Config{})
	e.RegisterImporter(attachment.ElementTag, resolver.Candidate[*html.Node, editor.Node]{
		Name:     "generic-attachment",
		Priority: 1,
		Resolve: func(_ context.Context, el *html.Node) (editor.Node, bool, error) {
			return editor.NewParagraph("generic"), true, nil
		},
	})

	markup := `<action-text-attachment content-type="application/button" content='{"buttonText":"Go","buttonLink":"/x"}'></action-text-attachment>` +
		`<action-text-attachment content-type="application/other" content="{}"></action-text-attachment>`
	require.NoError(t, e.ImportHTML(context.Background(), markup))

	blocks := e.Blocks()
	require.Equal(t, []string{attachment.Kind, editor.ParagraphKind}, kinds(blocks))
	assert.Equal(t, "Go", blocks[0].(*attachment.Node).Label)
	assert.Equal(t, "generic", blocks[1].TextContent())
}

func TestImportLegacyAndBrokenAttachments(t *testing.T) {
	e, _ := activeEditor(t, Config{})

	markup := `<action-text-attachment content-type="application/button" content="&quot;&lt;a class=\&quot;lexxy-button\&quot; href=\&quot;/x\&quot;&gt;Go&lt;/a&gt;&quot;"></action-text-attachment>` +
		`<action-text-attachment content-type="application/button" content="not json"></action-text-attachment>`
	require.NoError(t, e.ImportHTML(context.Background(), markup))

	blocks := e.Blocks()
	require.Len(t, blocks, 2)
	legacy := blocks[0].(*attachment.Node)
	assert.Equal(t, "Go", legacy.Label)
	assert.Equal(t, "/x", legacy.Target)
	broken := blocks[1].(*attachment.Node)
	assert.Equal(t, attachment.DefaultLabel, broken.Label)
	assert.Equal(t, attachment.DefaultTarget, broken.Target)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{MarkerClasses: []string{"not a class"}})
	require.Error(t, err)

	_, err = New(Config{ImportPriority: -1})
	require.Error(t, err)

	_, err = New(Config{WidgetTemplate: "<div></div>"})
	require.NoError(t, err)
}

func TestActivateFailsOnBrokenTemplate(t *testing.T) {
	r, err := New(Config{WidgetTemplate: "<div></div>"})
	require.NoError(t, err)

	ok, err := r.Activate(editor.New(editor.Capabilities{RichText: true}))
	require.Error(t, err)
	assert.False(t, ok)
}
