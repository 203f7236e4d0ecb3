package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sultanMIB/pdf-ui/constants"
	"github.com/sultanMIB/pdf-ui/internal/common"
)

func TestDefault_IsValid(t *testing.T) {
	lex := Default()
	require.NoError(t, lex.Validate())

	assert.Equal(t, "--- الصفحة 3 ---", lex.PageMarker(3))
	assert.Equal(t, `[\x{0623}-\x{064A}]`, lex.Script.Class())
	assert.True(t, lex.Script.Contains('م'))
	assert.False(t, lex.Script.Contains('a'))
	assert.Len(t, lex.Topics, 16)
	assert.Len(t, lex.Patterns, len(constants.EntityTypes()))
	assert.Equal(t, "فاتورة", lex.DocumentLabel(constants.DocumentInvoice))
}

func TestDefault_FreshValues(t *testing.T) {
	a := Default()
	a.EntityLabels[constants.EntityPhone] = "changed"
	b := Default()
	assert.Equal(t, "أرقام هواتف", b.EntityLabel(constants.EntityPhone))
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	content := `
script: {low: 0x0041, high: 0x007A}
labels:
  page_marker: "--- Page %d ---"
  unknown: "unknown"
entity_labels:
  phone: "Phones"
keywords:
  - type: invoice
    words: [invoice, total]
topics: [payment, project]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	lex, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "--- Page 2 ---", lex.PageMarker(2))
	assert.Equal(t, "unknown", lex.Labels.Unknown)
	assert.Equal(t, "Phones", lex.EntityLabel(constants.EntityPhone))
	assert.Equal(t, "أسماء", lex.EntityLabel(constants.EntityPersonName))
	require.Len(t, lex.Keywords, 1)
	assert.Equal(t, constants.DocumentInvoice, lex.Keywords[0].Type)
	assert.Equal(t, []string{"payment", "project"}, lex.Topics)
	assert.Equal(t, rune('A'), lex.Script.Low)
	assert.Equal(t, "لا يوجد محتوى لتحليله", lex.Labels.NoContent)
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	lex, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Labels, lex.Labels)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "inverted script", yaml: "script: {low: 0x064A, high: 0x0623}"},
		{name: "marker without page", yaml: "labels: {page_marker: 'page'}"},
		{name: "unknown entity", yaml: "entity_labels: {zipcode: Zip}"},
		{name: "fallback keyword type", yaml: "keywords: [{type: General, words: [x]}]"},
		{name: "broken yaml", yaml: "labels: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Equal(t, "LEXICON_ERROR", common.AppErrorCode(err))
		})
	}
}

func TestParse_PatternBoundedDefaultsTrue(t *testing.T) {
	lex, err := Parse([]byte(`patterns: [{type: URL, expr: 'www\.\S+'}, {type: Number, expr: '\d+', bounded: false}]`))
	require.NoError(t, err)
	require.Len(t, lex.Patterns, 2)
	assert.True(t, lex.Patterns[0].Bounded)
	assert.False(t, lex.Patterns[1].Bounded)
}

func TestClone_Independent(t *testing.T) {
	a := Default()
	b := a.Clone()
	b.Topics[0] = "x"
	b.Keywords[0].Words[0] = "y"
	assert.Equal(t, "عمل", a.Topics[0])
	assert.Equal(t, "عقد", a.Keywords[0].Words[0])
}

func TestValidate_WrapsValidationError(t *testing.T) {
	lex := Default()
	lex.Labels.PageMarker = "page"

	err := lex.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Contains(t, err.Error(), "labels.page_marker")
}
