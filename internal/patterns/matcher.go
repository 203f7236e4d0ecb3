package patterns

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/sultanMIB/pdf-ui/constants"
	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/entity"
	"github.com/sultanMIB/pdf-ui/internal/lexicon"
)

const (
	minConfidence = 70
	maxConfidence = 95
)

// Confidence is a function of match length only: 70 + 2 per rune, capped at 95.
func Confidence(match string) int {
	c := minConfidence + 2*utf8.RuneCountInString(match)
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}

type compiled struct {
	typ     constants.EntityType
	label   string
	bounded bool
	find    *regexp.Regexp
	whole   *regexp.Regexp
	err     error
}

// Matcher runs the ordered entity pattern table over text.
// It is safe for concurrent use.
type Matcher struct {
	patterns []compiled
	logger   *slog.Logger
}

// NewMatcher compiles every pattern of lex. A pattern that fails to compile
// is kept as a disabled entry and skipped at scan time.
func NewMatcher(lex *lexicon.Lexicon, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Matcher{logger: logger}
	for _, p := range lex.Patterns {
		c := compiled{typ: p.Type, label: lex.EntityLabel(p.Type), bounded: p.Bounded}
		c.find, c.whole, c.err = compile(lex.Expand(p.Expr))
		if c.err != nil {
			logger.Warn("patterns.compile.failed", "type", p.Type, "error", c.err)
		}
		m.patterns = append(m.patterns, c)
	}
	return m
}

func compile(expr string) (find, whole *regexp.Regexp, err error) {
	if find, err = regexp.Compile(expr); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrPattern, err)
	}
	if whole, err = regexp.Compile(`^(?:` + expr + `)$`); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrPattern, err)
	}
	return find, whole, nil
}

// ExtractEntities emits matches grouped by pattern in table order, and by
// position within a pattern. Overlaps across patterns are kept.
func (m *Matcher) ExtractEntities(ctx context.Context, text string) []entity.Entity {
	out := make([]entity.Entity, 0)
	if text == "" {
		return out
	}
	log := common.LoggerFrom(ctx, m.logger)
	for _, p := range m.patterns {
		if p.err != nil {
			continue
		}
		found, err := p.scan(text)
		if err != nil {
			log.Warn("patterns.scan.failed", "type", p.typ, "error", err)
			continue
		}
		for _, s := range found {
			out = append(out, entity.Entity{Type: p.label, Text: s, Confidence: Confidence(s)})
		}
	}
	return out
}

// scan isolates one pattern; a panic is reported as ErrPattern.
func (p compiled) scan(text string) (found []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			found, err = nil, common.RecoverError(common.ErrPattern, r)
		}
	}()
	if !p.bounded {
		return p.find.FindAllString(text, -1), nil
	}
	return scanBounded(text, p.find, p.whole), nil
}

// scanBounded finds non-overlapping matches that start and end on a Unicode
// word boundary. RE2's \b only knows ASCII word characters, so boundaries
// are checked here. When the leftmost match fails the end check, shorter
// prefixes of it are tried before moving one rune past its start.
func scanBounded(text string, find, whole *regexp.Regexp) []string {
	var out []string
	pos := 0
	for pos <= len(text) {
		loc := find.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end == start {
			pos = nextRune(text, start)
			continue
		}

		if isBoundary(text, start) {
			if e := longestBounded(text, start, end, whole); e > start {
				out = append(out, text[start:e])
				pos = e
				continue
			}
		}
		pos = nextRune(text, start)
	}
	return out
}

func longestBounded(text string, start, end int, whole *regexp.Regexp) int {
	for e := end; e > start; {
		if isBoundary(text, e) && whole.MatchString(text[start:e]) {
			return e
		}
		_, size := utf8.DecodeLastRuneInString(text[start:e])
		e -= size
	}
	return start
}

// isBoundary reports whether byte offset i sits between a word and a non-word rune.
func isBoundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWord(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWord(r)
	}
	return before != after
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func nextRune(text string, i int) int {
	if i >= len(text) {
		return len(text) + 1
	}
	_, size := utf8.DecodeRuneInString(text[i:])
	return i + size
}
