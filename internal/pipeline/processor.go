package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/sultanMIB/pdf-ui/constants"
	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/entity"
	"github.com/sultanMIB/pdf-ui/internal/extract"
	"github.com/sultanMIB/pdf-ui/internal/lexicon"
	"github.com/sultanMIB/pdf-ui/internal/patterns"
	"github.com/sultanMIB/pdf-ui/internal/pdf"
	"github.com/sultanMIB/pdf-ui/internal/semantic"
)

// TimeLayout is the processingTime format: local time, microseconds, no zone.
const TimeLayout = "2006-01-02T15:04:05.000000"

// Limits caps the collections in a result.
type Limits struct {
	RawTextRunes int
	Tables       int
	Entities     int
	Topics       int
}

func DefaultLimits() Limits {
	return Limits{RawTextRunes: 5000, Tables: 5, Entities: 20, Topics: 5}
}

// Processor runs metadata, content, entity and semantic stages in order
// over one document. It keeps no per-document state and is safe for
// concurrent use.
type Processor struct {
	logger     *slog.Logger
	lex        *lexicon.Lexicon
	metadata   extract.MetadataReader
	content    extract.ContentExtractor
	entities   extract.EntityExtractor
	classifier extract.Classifier
	limits     Limits
	now        func() time.Time
}

type Option func(*Processor)

func WithLimits(l Limits) Option {
	return func(p *Processor) { p.limits = l }
}

// WithClock replaces time.Now for processingTime.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func NewProcessor(
	logger *slog.Logger,
	lex *lexicon.Lexicon,
	metadata extract.MetadataReader,
	content extract.ContentExtractor,
	entities extract.EntityExtractor,
	classifier extract.Classifier,
	opts ...Option,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:     logger,
		lex:        lex,
		metadata:   metadata,
		content:    content,
		entities:   entities,
		classifier: classifier,
		limits:     DefaultLimits(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// New wires the default stages: pdfcpu and ledongthuc/pdf for reading, the
// lexicon's pattern table for entities and its vocabularies for semantics.
func New(logger *slog.Logger, lex *lexicon.Lexicon, cfg pdf.Config, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	ex := pdf.NewExtractor(cfg, logger)
	return NewProcessor(logger, lex, ex, ex,
		patterns.NewMatcher(lex, logger),
		semantic.NewClassifier(lex, logger),
		opts...)
}

// Lexicon returns the string table results are rendered with.
func (p *Processor) Lexicon() *lexicon.Lexicon { return p.lex }

// Analyze never returns an error: every stage degrades to its default and
// only an unexpected panic or a cancelled context yields success=false.
func (p *Processor) Analyze(ctx context.Context, data []byte) (res entity.AnalysisResult) {
	log := common.LoggerFrom(ctx, p.logger)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("processor.panic", "panic", r, "stack", string(debug.Stack()))
			res = entity.Failure(p.lex.ProcessingFailed(fmt.Sprint(r)))
		}
	}()

	md := p.runMetadata(ctx, log, data)
	if err := ctx.Err(); err != nil {
		return p.fail(log, err)
	}
	text, tables := p.runContent(ctx, log, data)
	if err := ctx.Err(); err != nil {
		return p.fail(log, err)
	}
	ents := p.entities.ExtractEntities(ctx, text)
	log.Debug("processor.entities.ok", "stage", constants.StageEntities, "count", len(ents))
	if err := ctx.Err(); err != nil {
		return p.fail(log, err)
	}
	sem := p.runSemantic(ctx, log, text)

	res = p.assemble(md, text, tables, ents, sem)
	log.Info("processor.analyze.ok",
		"pages", res.Metadata.PageCount,
		"tables", len(res.Tables),
		"entities", len(res.Entities),
		"document_type", res.SemanticAnalysis.DocumentType,
		"duration", time.Since(start),
	)
	return res
}

// AnalyzeFile reads a staged upload and analyzes it.
func (p *Processor) AnalyzeFile(ctx context.Context, path string) entity.AnalysisResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return p.fail(common.LoggerFrom(ctx, p.logger), common.WrapError(err, "read "+path))
	}
	return p.Analyze(ctx, data)
}

func (p *Processor) fail(log *slog.Logger, err error) entity.AnalysisResult {
	log.Error("processor.analyze.failed", "err", err)
	return entity.Failure(p.lex.ProcessingFailed(err.Error()))
}
