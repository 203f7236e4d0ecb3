package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sultanMIB/pdf-ui/constants"
	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/entity"
	"github.com/sultanMIB/pdf-ui/internal/extract"
	"github.com/sultanMIB/pdf-ui/internal/lexicon"
	"github.com/sultanMIB/pdf-ui/internal/patterns"
	"github.com/sultanMIB/pdf-ui/internal/pdf"
	"github.com/sultanMIB/pdf-ui/internal/pdf/pdftest"
	"github.com/sultanMIB/pdf-ui/internal/semantic"
)

var fixedNow = time.Date(2024, 1, 15, 10, 30, 0, 123456000, time.Local)

func fixedClock() time.Time { return fixedNow }

type fakeMetadata struct {
	md  entity.Metadata
	err error
}

func (f fakeMetadata) ReadMetadata(context.Context, []byte) (entity.Metadata, error) {
	return f.md, f.err
}

type fakeContent struct {
	pages []extract.Page
	err   error
}

func (f fakeContent) ExtractPages(context.Context, []byte) ([]extract.Page, error) {
	return f.pages, f.err
}

type fakeEntities struct {
	out   []entity.Entity
	panic bool
}

func (f fakeEntities) ExtractEntities(context.Context, string) []entity.Entity {
	if f.panic {
		panic("scanner exploded")
	}
	return f.out
}

type fakeClassifier struct {
	res entity.SemanticAnalysis
	err error
}

func (f fakeClassifier) Classify(context.Context, string) (entity.SemanticAnalysis, error) {
	return f.res, f.err
}

func newFake(lex *lexicon.Lexicon, md extract.MetadataReader, content extract.ContentExtractor, ents extract.EntityExtractor, cls extract.Classifier) *Processor {
	if md == nil {
		md = fakeMetadata{md: entity.Metadata{PageCount: 1, Title: "t", Author: "a", CreationDate: "d"}}
	}
	if ents == nil {
		ents = patterns.NewMatcher(lex, nil)
	}
	if cls == nil {
		cls = semantic.NewClassifier(lex, nil)
	}
	return NewProcessor(nil, lex, md, content, ents, cls, WithClock(fixedClock))
}

func TestAnalyze_InvalidBytes(t *testing.T) {
	lex := lexicon.Default()
	p := New(nil, lex, pdf.DefaultConfig(), WithClock(fixedClock))
	data := []byte("this is not a pdf at all")

	res := p.Analyze(context.Background(), data)

	require.True(t, res.Success)
	assert.Equal(t, 0, res.Metadata.PageCount)
	assert.Equal(t, lex.Labels.Unknown, res.Metadata.Title)
	assert.Equal(t, lex.Labels.Unknown, res.Metadata.Author)
	assert.Equal(t, lex.Labels.Unknown, res.Metadata.CreationDate)
	assert.Equal(t, "0.02", res.Metadata.FileSizeKB)
	assert.Equal(t, lex.Labels.ExtractionFailed, res.RawText)
	assert.Empty(t, res.Tables)
	assert.Equal(t, "2024-01-15T10:30:00.123456", res.ProcessingTime)
}

func TestAnalyze_RealDocument(t *testing.T) {
	lex := lexicon.Default()
	p := New(nil, lex, pdf.DefaultConfig(), WithClock(fixedClock))
	data := pdftest.Build(pdftest.Doc{
		Title:  "Contract",
		Author: "Legal",
		Pages: []pdftest.Page{
			pdftest.Lines("Mail user@example.com on 2024-01-15."),
			pdftest.Lines("Call 0501234567."),
			pdftest.Lines("See https://example.com/terms"),
		},
	})

	res := p.Analyze(context.Background(), data)
	require.True(t, res.Success)
	assert.Equal(t, 3, res.Metadata.PageCount)
	assert.Equal(t, "Contract", res.Metadata.Title)
	assert.Equal(t, lex.Labels.Unknown, res.Metadata.CreationDate)

	last := -1
	for n := 1; n <= 3; n++ {
		marker := lex.PageMarker(n)
		assert.Equal(t, 1, strings.Count(res.RawText, marker))
		idx := strings.Index(res.RawText, marker)
		assert.Greater(t, idx, last)
		last = idx
	}

	types := map[string]bool{}
	for _, e := range res.Entities {
		types[e.Type] = true
		assert.Equal(t, patterns.Confidence(e.Text), e.Confidence)
	}
	assert.True(t, types[lex.EntityLabel(constants.EntityEmail)])
	assert.True(t, types[lex.EntityLabel(constants.EntityDate)])
	assert.True(t, types[lex.EntityLabel(constants.EntityPhone)])

	again := p.Analyze(context.Background(), data)
	assert.Equal(t, res, again)
}

func TestAnalyze_PageBlocksAndLengthAccounting(t *testing.T) {
	lex := lexicon.Default()
	pages := []extract.Page{
		{Number: 1, Text: "foo"},
		{Number: 2, Text: "ignored", Grids: [][][]any{{{"x"}}}, Err: common.ErrPageFailed},
		{Number: 3, Text: "bar", Grids: [][][]any{{{"A", "B"}, {"1", "2"}, {"3", "4"}}}},
	}
	p := newFake(lex, nil, fakeContent{pages: pages}, nil, nil)

	res := p.Analyze(context.Background(), nil)
	require.True(t, res.Success)

	want := "\n" + lex.PageMarker(1) + "\nfoo\n" +
		"\n" + lex.PageMarker(2) + "\n\n" +
		"\n" + lex.PageMarker(3) + "\nbar\n"
	assert.Equal(t, want, res.RawText)

	require.Len(t, res.Tables, 1)
	assert.Equal(t, 3, res.Tables[0].Page)
	assert.Equal(t, 1, res.Tables[0].TableIndex)
	assert.Equal(t, []string{"A", "B"}, res.Tables[0].Headers)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, res.Tables[0].Rows)
}

func TestAnalyze_Limits(t *testing.T) {
	lex := lexicon.Default()
	var grids [][][]any
	for i := 0; i < 8; i++ {
		grids = append(grids, [][]any{{"h"}, {"v"}})
	}
	pages := []extract.Page{{Number: 1, Text: strings.Repeat("ب", 12000), Grids: grids}}
	var ents []entity.Entity
	for i := 0; i < 30; i++ {
		ents = append(ents, entity.Entity{Type: "n", Text: "1", Confidence: 72})
	}
	p := newFake(lex, nil, fakeContent{pages: pages}, fakeEntities{out: ents}, nil)

	res := p.Analyze(context.Background(), nil)
	require.True(t, res.Success)
	assert.Equal(t, 5000, len([]rune(res.RawText)))
	assert.Len(t, res.Tables, 5)
	assert.Len(t, res.Entities, 20)
	assert.Equal(t, 5, res.Tables[4].TableIndex)
}

func TestAnalyze_TopicsTruncatedToFive(t *testing.T) {
	lex := lexicon.Default()
	pages := []extract.Page{{Number: 1, Text: strings.Join(lex.Topics, " ")}}
	p := newFake(lex, nil, fakeContent{pages: pages}, nil, nil)

	res := p.Analyze(context.Background(), nil)
	assert.Equal(t, lex.Topics[:5], res.SemanticAnalysis.Topics)
	assert.Equal(t, lex.LanguageLabel(constants.LanguagePrimary), res.SemanticAnalysis.Language)
}

func TestAnalyze_ZeroPages(t *testing.T) {
	lex := lexicon.Default()
	p := newFake(lex, nil, fakeContent{pages: nil}, nil, nil)

	res := p.Analyze(context.Background(), nil)
	require.True(t, res.Success)
	assert.Equal(t, lex.Labels.NoText, res.RawText)
	assert.Equal(t, semanticEmpty(lex), res.SemanticAnalysis)
	assert.NotNil(t, res.Entities)
	assert.Empty(t, res.Entities)
}

func TestAnalyze_ContentFailureUsesLabel(t *testing.T) {
	lex := lexicon.Default()
	p := newFake(lex, nil, fakeContent{err: common.ErrMalformedDocument}, nil, nil)

	res := p.Analyze(context.Background(), nil)
	require.True(t, res.Success)
	assert.Equal(t, lex.Labels.ExtractionFailed, res.RawText)
	assert.Empty(t, res.Tables)
	// classification still runs on the fallback text
	assert.Equal(t, lex.LanguageLabel(constants.LanguagePrimary), res.SemanticAnalysis.Language)
}

func TestAnalyze_MetadataFallbacks(t *testing.T) {
	lex := lexicon.Default()
	content := fakeContent{pages: []extract.Page{{Number: 1, Text: "x"}}}

	p := newFake(lex, fakeMetadata{err: common.ErrNoMetadata, md: entity.Metadata{PageCount: 4}}, content, nil, nil)
	res := p.Analyze(context.Background(), make([]byte, 2048))
	assert.Equal(t, metadataFallback(lex, 2048), res.Metadata)
	assert.Equal(t, "2.00", res.Metadata.FileSizeKB)

	p = newFake(lex, fakeMetadata{md: entity.Metadata{PageCount: 2, Title: "T"}}, content, nil, nil)
	res = p.Analyze(context.Background(), make([]byte, 512))
	assert.Equal(t, entity.Metadata{PageCount: 2, Title: "T", Author: lex.Labels.Unknown, CreationDate: lex.Labels.Unknown, FileSizeKB: "0.50"}, res.Metadata)
}

func TestAnalyze_ClassifierFailure(t *testing.T) {
	lex := lexicon.Default()
	content := fakeContent{pages: []extract.Page{{Number: 1, Text: "x"}}}
	p := newFake(lex, nil, content, nil, fakeClassifier{err: common.ErrClassification})

	res := p.Analyze(context.Background(), nil)
	require.True(t, res.Success)
	assert.Equal(t, semanticFailed(lex), res.SemanticAnalysis)
}

func TestAnalyze_PanicBecomesFailure(t *testing.T) {
	lex := lexicon.Default()
	content := fakeContent{pages: []extract.Page{{Number: 1, Text: "x"}}}
	p := newFake(lex, nil, content, fakeEntities{panic: true}, nil)

	res := p.Analyze(context.Background(), nil)
	assert.False(t, res.Success)
	assert.Equal(t, lex.ProcessingFailed("scanner exploded"), res.Error)
}

func TestAnalyze_CancelledContext(t *testing.T) {
	lex := lexicon.Default()
	p := newFake(lex, nil, fakeContent{pages: []extract.Page{{Number: 1, Text: "x"}}}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := p.Analyze(ctx, nil)
	assert.False(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Error, strings.TrimSuffix(lex.Labels.ProcessingFailed, "%s")))
}

func TestAnalyze_CustomLimits(t *testing.T) {
	lex := lexicon.Default()
	content := fakeContent{pages: []extract.Page{{Number: 1, Text: "abcdef"}}}
	p := NewProcessor(nil, lex, fakeMetadata{}, content, fakeEntities{}, fakeClassifier{err: errors.New("x")},
		WithLimits(Limits{RawTextRunes: 4, Tables: 0, Entities: 0, Topics: 0}))

	res := p.Analyze(context.Background(), nil)
	assert.Equal(t, "\n---", res.RawText)
}

func TestAnalyzeFile_Missing(t *testing.T) {
	lex := lexicon.Default()
	p := New(nil, lex, pdf.DefaultConfig())

	res := p.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestAnalyze_SeveralLinesOnOnePage(t *testing.T) {
	lex := lexicon.Default()
	p := New(nil, lex, pdf.DefaultConfig(), WithClock(fixedClock))
	data := pdftest.Build(pdftest.Doc{Pages: []pdftest.Page{
		pdftest.Lines("Call 0501234567", "Email user@example.com", "Total 42"),
	}})

	res := p.Analyze(context.Background(), data)
	require.True(t, res.Success)
	assert.Equal(t, "\n"+lex.PageMarker(1)+"\nCall 0501234567\nEmail user@example.com\nTotal 42\n", res.RawText)

	byType := map[string][]string{}
	for _, e := range res.Entities {
		byType[e.Type] = append(byType[e.Type], e.Text)
	}
	assert.Equal(t, []string{"user@example.com"}, byType[lex.EntityLabel(constants.EntityEmail)])
	assert.Equal(t, []string{"0501234567"}, byType[lex.EntityLabel(constants.EntityPhone)])
	assert.Contains(t, byType[lex.EntityLabel(constants.EntityNumber)], "42")
	assert.Empty(t, res.Tables)
}

func TestAnalyze_RealTable(t *testing.T) {
	lex := lexicon.Default()
	p := New(nil, lex, pdf.DefaultConfig(), WithClock(fixedClock))
	xs := []float64{72, 300}
	page := pdftest.Page{}
	page.Texts = append(page.Texts, pdftest.Row(700, xs, "A", "B")...)
	page.Texts = append(page.Texts, pdftest.Row(680, xs, "1", "2")...)
	page.Texts = append(page.Texts, pdftest.Row(660, xs, "3", "4")...)
	data := pdftest.Build(pdftest.Doc{Pages: []pdftest.Page{page}})

	res := p.Analyze(context.Background(), data)
	require.True(t, res.Success)
	require.Len(t, res.Tables, 1)
	assert.Equal(t, entity.Table{
		Page:       1,
		TableIndex: 1,
		Headers:    []string{"A", "B"},
		Rows:       [][]string{{"1", "2"}, {"3", "4"}},
	}, res.Tables[0])
}
