package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAndRender(t *testing.T) {
	t.Parallel()

	tpl, err := Compile(`{{{inviter.name}}} invited you to join group "{{{group.title}}}"`)
	require.NoError(t, err)

	out := tpl.Render(Context{
		"inviter": map[string]any{"name": "Alice"},
		"group":   map[string]any{"title": "Gardening"},
	})
	assert.Equal(t, `Alice invited you to join group "Gardening"`, out)
}

func TestRenderMissingPaths(t *testing.T) {
	t.Parallel()

	tpl, err := Compile(`[{{{a.b.c}}}]`)
	require.NoError(t, err)

	cases := []struct {
		name string
		ctx  Context
	}{
		{"nil context", nil},
		{"a missing", Context{}},
		{"a.b missing", Context{"a": map[string]any{}}},
		{"a.b.c missing", Context{"a": map[string]any{"b": map[string]any{}}}},
		{"a.b.c nil", Context{"a": map[string]any{"b": map[string]any{"c": nil}}}},
		{"chain broken by scalar", Context{"a": "not a map"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := tpl.Render(tc.ctx)
			assert.Equal(t, "[]", out)
			assert.NotContains(t, out, "undefined")
			assert.NotContains(t, out, "<no value>")
		})
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	t.Parallel()

	tpl, err := Compile(`Hello {{{user.name}}}, welcome to {{{group.title}}}.`)
	require.NoError(t, err)

	ctx := Context{
		"user":  map[string]any{"name": "Bob"},
		"group": map[string]any{"title": "Chess"},
	}
	first := tpl.Render(ctx)
	second := tpl.Render(ctx)
	assert.Equal(t, first, second)
}

func TestRenderEscapedMarker(t *testing.T) {
	t.Parallel()

	tpl, err := Compile(`{{{author.name}}} wrote: "{{postIntro}}"`)
	require.NoError(t, err)

	out := tpl.Render(Context{
		"author":    map[string]any{"name": "Alice"},
		"postIntro": `<script>alert("x")</script>`,
	})
	assert.Equal(t, `Alice wrote: "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;"`, out)
}

func TestRenderNonStringValues(t *testing.T) {
	t.Parallel()

	tpl, err := Compile(`{{{count}}} members`)
	require.NoError(t, err)
	assert.Equal(t, "42 members", tpl.Render(Context{"count": 42}))
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  string
	}{
		{"unterminated raw marker", `hello {{{group.title}`},
		{"unterminated escaped marker", `hello {{group.title`},
		{"empty path", `{{{}}}`},
		{"blank path", `{{ }}`},
		{"dangling dot", `{{{group.}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.src)
			require.Error(t, err)
			var bad *BadTemplateError
			assert.ErrorAs(t, err, &bad)
		})
	}
}

func TestCompileEmptySource(t *testing.T) {
	t.Parallel()

	tpl, err := Compile("")
	require.NoError(t, err)
	assert.True(t, tpl.Blank())
	assert.Equal(t, "", tpl.Render(Context{"anything": "at all"}))
}

func TestRenderLiteralOnly(t *testing.T) {
	t.Parallel()

	tpl, err := Compile("[Communities] You've been invited to join a group.")
	require.NoError(t, err)
	assert.Equal(t, "[Communities] You've been invited to join a group.", tpl.Render(nil))
}
