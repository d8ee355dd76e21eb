package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleBold(t *testing.T) {
	got, sel := Toggle("hello world", Selection{0, 5}, Bold)
	assert.Equal(t, "**hello** world", got)
	assert.Equal(t, Selection{2, 7}, sel)

	// re-select the wrapped word including its markers
	got, sel = Toggle(got, Selection{0, 9}, Bold)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, Selection{0, 5}, sel)
}

func TestToggleIsSelfInverse(t *testing.T) {
	tests := []struct {
		name string
		text string
		sel  Selection
		kind Kind
	}{
		{"bold word", "hello world", Selection{6, 11}, Bold},
		{"italic word", "hello world", Selection{0, 5}, Italic},
		{"italic on bold", "**hello** world", Selection{0, 9}, Italic},
		{"inline code", "run go test now", Selection{4, 11}, Code},
		{"fenced code", "a\nb\nc", Selection{0, 5}, Code},
		{"heading", "one\ntwo", Selection{5, 5}, Heading},
		{"checklist", "buy milk", Selection{3, 3}, Checklist},
		{"unicode", "héllo wörld", Selection{6, 11}, Bold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once, sel := Toggle(tt.text, tt.sel, tt.kind)
			require.NotEqual(t, tt.text, once)
			twice, back := Toggle(once, sel, tt.kind)
			assert.Equal(t, tt.text, twice)
			assert.Equal(t, tt.sel, back)
		})
	}
}

func TestEmptySelectionIsNoOpForInline(t *testing.T) {
	for _, k := range []Kind{Bold, Italic, Code} {
		got, sel := Toggle("hello", Selection{2, 2}, k)
		assert.Equal(t, "hello", got)
		assert.Equal(t, Selection{2, 2}, sel)
	}
}

func TestMultiLineCodeUsesFence(t *testing.T) {
	text := "x\nfunc a\nfunc b\ny"

	got, _ := Toggle(text, Selection{2, 15}, Code)
	assert.Equal(t, "x\n```\nfunc a\nfunc b\n```\ny", got)

	got, _ = Toggle(text, Selection{2, 8}, Code)
	assert.Equal(t, "x\n`func a`\nfunc b\ny", got)
}

func TestToggleHeading(t *testing.T) {
	got, sel := Toggle("intro\nTitle here", Selection{8, 8}, Heading)
	assert.Equal(t, "intro\n# Title here", got)
	assert.Equal(t, Selection{10, 10}, sel)

	got, _ = Toggle("## Sub", Selection{4, 4}, Heading)
	assert.Equal(t, "Sub", got)
}

func TestToggleChecklistAndCheck(t *testing.T) {
	text, sel := Toggle("milk\neggs", Selection{6, 6}, Checklist)
	assert.Equal(t, "milk\n- [ ] eggs", text)

	text, _ = Toggle(text, sel, Check)
	assert.Equal(t, "milk\n- [x] eggs", text)

	text, _ = Toggle(text, sel, Check)
	assert.Equal(t, "milk\n- [ ] eggs", text)

	unchanged, _ := Toggle("plain", Selection{1, 1}, Check)
	assert.Equal(t, "plain", unchanged)
}

func TestSelectionIsClamped(t *testing.T) {
	got, sel := Toggle("abc", Selection{5, -3}, Bold)
	assert.Equal(t, "**abc**", got)
	assert.Equal(t, Selection{2, 5}, sel)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Bold")
	require.NoError(t, err)
	assert.Equal(t, Bold, k)
	assert.Equal(t, "checklist", Checklist.String())

	_, err = ParseKind("strike")
	assert.Error(t, err)
}
