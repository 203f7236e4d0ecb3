package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sultanMIB/pdf-ui/constants"
	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/entity"
	"github.com/sultanMIB/pdf-ui/internal/lexicon"
)

const (
	maxRankedTopics  = 10
	minTopicRunes    = 3
	summarySentences = 3
	summaryRunes     = 200
)

// Classifier derives a SemanticAnalysis from text with keyword heuristics.
type Classifier struct {
	lex    *lexicon.Lexicon
	topics map[string]struct{}
	logger *slog.Logger
}

func NewClassifier(lex *lexicon.Lexicon, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{lex: lex, topics: lex.TopicSet(), logger: logger}
}

// Classify returns ErrEmptyText for empty input and ErrClassification when a
// heuristic cannot run. The returned record is only meaningful when err is nil.
func (c *Classifier) Classify(ctx context.Context, text string) (res entity.SemanticAnalysis, err error) {
	if text == "" {
		return entity.SemanticAnalysis{}, common.ErrEmptyText
	}
	defer func() {
		if r := recover(); r != nil {
			res, err = entity.SemanticAnalysis{}, common.RecoverError(common.ErrClassification, r)
		}
	}()
	if !c.lex.Script.Valid() {
		return entity.SemanticAnalysis{}, fmt.Errorf("%w: invalid script range %X-%X", common.ErrClassification, c.lex.Script.Low, c.lex.Script.High)
	}

	res = entity.SemanticAnalysis{
		DocumentType: c.lex.DocumentLabel(DocumentType(c.lex, text)),
		Topics:       Topics(c.lex.Script, c.topics, text),
		Language:     c.lex.LanguageLabel(Language(c.lex.Script, text)),
		Summary:      Summary(text),
	}
	common.LoggerFrom(ctx, c.logger).Debug("semantic.classified",
		"document_type", res.DocumentType, "topics", len(res.Topics), "language", res.Language)
	return res, nil
}

// DocumentType tests keyword sets in order against the lowercased text.
func DocumentType(lex *lexicon.Lexicon, text string) constants.DocumentType {
	lower := strings.ToLower(text)
	for _, ks := range lex.Keywords {
		for _, w := range ks.Words {
			if w != "" && strings.Contains(lower, strings.ToLower(w)) {
				return ks.Type
			}
		}
	}
	return constants.DocumentGeneral
}

// Topics counts vocabulary words among the script words of at least three
// runes and returns up to ten, most frequent first, ties in first-seen order.
func Topics(script lexicon.Script, vocab map[string]struct{}, text string) []string {
	counts := make(map[string]int)
	var order []string
	for _, w := range scriptWords(script, text) {
		if utf8.RuneCountInString(w) < minTopicRunes {
			continue
		}
		if _, ok := vocab[w]; !ok {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxRankedTopics {
		order = order[:maxRankedTopics]
	}
	if order == nil {
		order = []string{}
	}
	return order
}

// scriptWords returns maximal runs of script runes that stand alone as words,
// i.e. not glued to another letter, digit or underscore on either side.
func scriptWords(script lexicon.Script, text string) []string {
	var out []string
	start := -1
	glued := false
	prevWord := false
	for i, r := range text {
		in := script.Contains(r)
		switch {
		case in && start < 0:
			start = i
			glued = prevWord
		case !in && start >= 0:
			if !glued && !isWord(r) {
				out = append(out, text[start:i])
			}
			start = -1
		}
		prevWord = isWord(r)
	}
	if start >= 0 && !glued {
		out = append(out, text[start:])
	}
	return out
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Language is a presence test: one script rune anywhere makes the text Primary.
func Language(script lexicon.Script, text string) constants.Language {
	for _, r := range text {
		if script.Contains(r) {
			return constants.LanguagePrimary
		}
	}
	return constants.LanguageSecondary
}

// Summary joins the first three period-separated segments when there are more
// than three, otherwise it truncates the text to 200 runes.
func Summary(text string) string {
	var sentences []string
	for _, s := range strings.Split(text, ".") {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) > summarySentences {
		return strings.Join(sentences[:summarySentences], ". ") + "."
	}
	return truncateRunes(text, summaryRunes) + "..."
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
