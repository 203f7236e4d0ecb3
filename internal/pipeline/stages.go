package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sultanMIB/pdf-ui/constants"
	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/entity"
	"github.com/sultanMIB/pdf-ui/internal/extract"
	"github.com/sultanMIB/pdf-ui/internal/lexicon"
	"github.com/sultanMIB/pdf-ui/internal/pdf"
)

func (p *Processor) runMetadata(ctx context.Context, log *slog.Logger, data []byte) entity.Metadata {
	md, err := p.metadata.ReadMetadata(ctx, data)
	if err != nil {
		log.Warn("processor.metadata.fallback", "stage", constants.StageMetadata, "err", err)
		return metadataFallback(p.lex, len(data))
	}
	return withUnknowns(p.lex, md, len(data))
}

func (p *Processor) runContent(ctx context.Context, log *slog.Logger, data []byte) (string, []entity.Table) {
	pages, err := p.content.ExtractPages(ctx, data)
	if err != nil {
		log.Warn("processor.content.fallback", "stage", constants.StageContent, "err", err)
		return p.lex.Labels.ExtractionFailed, nil
	}

	var b strings.Builder
	var tables []entity.Table
	failed := 0
	for _, pg := range pages {
		b.WriteString(pageBlock(p.lex, pg))
		if pg.Err != nil {
			failed++
			continue
		}
		tables = append(tables, extract.NormalizeTables(pg.Number, pg.Grids)...)
	}
	if failed > 0 {
		log.Warn("processor.content.partial", "stage", constants.StageContent, "failed_pages", failed, "pages", len(pages))
	}
	return b.String(), tables
}

func (p *Processor) runSemantic(ctx context.Context, log *slog.Logger, text string) entity.SemanticAnalysis {
	sem, err := p.classifier.Classify(ctx, text)
	switch {
	case errors.Is(err, common.ErrEmptyText):
		return semanticEmpty(p.lex)
	case err != nil:
		log.Warn("processor.semantic.fallback", "stage", constants.StageSemantic, "err", err)
		return semanticFailed(p.lex)
	}
	return sem
}

// pageBlock renders one page as newline, marker, newline, text, newline.
// A failed page keeps its marker with empty text.
func pageBlock(lex *lexicon.Lexicon, pg extract.Page) string {
	text := pg.Text
	if pg.Err != nil {
		text = ""
	}
	return "\n" + lex.PageMarker(pg.Number) + "\n" + text + "\n"
}

func metadataFallback(lex *lexicon.Lexicon, size int) entity.Metadata {
	return entity.Metadata{
		PageCount:    0,
		Title:        lex.Labels.Unknown,
		Author:       lex.Labels.Unknown,
		CreationDate: lex.Labels.Unknown,
		FileSizeKB:   pdf.FileSizeKB(size),
	}
}

func withUnknowns(lex *lexicon.Lexicon, md entity.Metadata, size int) entity.Metadata {
	orUnknown := func(s string) string {
		if s == "" {
			return lex.Labels.Unknown
		}
		return s
	}
	md.Title = orUnknown(md.Title)
	md.Author = orUnknown(md.Author)
	md.CreationDate = orUnknown(md.CreationDate)
	md.FileSizeKB = pdf.FileSizeKB(size)
	return md
}

func semanticEmpty(lex *lexicon.Lexicon) entity.SemanticAnalysis {
	return entity.SemanticAnalysis{
		DocumentType: lex.DocumentLabel(constants.DocumentUnknown),
		Topics:       []string{},
		Language:     lex.LanguageLabel(constants.LanguageUnknown),
		Summary:      lex.Labels.NoContent,
	}
}

func semanticFailed(lex *lexicon.Lexicon) entity.SemanticAnalysis {
	return entity.SemanticAnalysis{
		DocumentType: lex.DocumentLabel(constants.DocumentUnknown),
		Topics:       []string{},
		Language:     lex.LanguageLabel(constants.LanguageUnknown),
		Summary:      lex.Labels.AnalysisError,
	}
}
