package lexicon

import (
	"fmt"
	"strings"

	"github.com/sultanMIB/pdf-ui/constants"
)

// ScriptPlaceholder is replaced by the target-script character class in pattern expressions.
const ScriptPlaceholder = "{script}"

// Script is the inclusive code point range of the target script.
type Script struct {
	Low  rune `yaml:"low"`
	High rune `yaml:"high"`
}

// Valid reports whether the range is non-empty and inside Unicode.
func (s Script) Valid() bool {
	return s.Low > 0 && s.Low <= s.High && s.High <= 0x10FFFF
}

// Contains reports whether r falls inside the range.
func (s Script) Contains(r rune) bool {
	return r >= s.Low && r <= s.High
}

// Class renders the range as an RE2 character class.
func (s Script) Class() string {
	return fmt.Sprintf(`[\x{%04X}-\x{%04X}]`, s.Low, s.High)
}

// Labels holds the fixed user-facing strings.
type Labels struct {
	Unknown          string `yaml:"unknown"`
	PageMarker       string `yaml:"page_marker"`
	ExtractionFailed string `yaml:"extraction_failed"`
	NoText           string `yaml:"no_text"`
	NoContent        string `yaml:"no_content"`
	AnalysisError    string `yaml:"analysis_error"`
	ProcessingFailed string `yaml:"processing_failed"`

	NoFile     string `yaml:"no_file"`
	NoFilename string `yaml:"no_filename"`
	NotPDF     string `yaml:"not_pdf"`
	EmptyFile  string `yaml:"empty_file"`
	TooLarge   string `yaml:"too_large"`
	Busy       string `yaml:"busy"`
	Healthy    string `yaml:"healthy"`
}

// KeywordSet is one document-type keyword vocabulary.
type KeywordSet struct {
	Type  constants.DocumentType `yaml:"type"`
	Words []string               `yaml:"words"`
}

// Pattern is one named entity expression. Bounded patterns require a word
// boundary on both sides of the match.
type Pattern struct {
	Type    constants.EntityType `yaml:"type"`
	Expr    string               `yaml:"expr"`
	Bounded bool                 `yaml:"bounded"`
}

// Lexicon is the localized string table plus the vocabularies the analysis
// heuristics run against. A Lexicon is read-only once built.
type Lexicon struct {
	Script         Script
	Labels         Labels
	EntityLabels   map[constants.EntityType]string
	DocumentLabels map[constants.DocumentType]string
	LanguageLabels map[constants.Language]string
	// Keywords are tested in order; the first set with a hit wins.
	Keywords []KeywordSet
	Topics   []string
	Patterns []Pattern
}

func (l *Lexicon) EntityLabel(t constants.EntityType) string {
	if v, ok := l.EntityLabels[t]; ok {
		return v
	}
	return string(t)
}

func (l *Lexicon) DocumentLabel(t constants.DocumentType) string {
	if v, ok := l.DocumentLabels[t]; ok {
		return v
	}
	return string(t)
}

func (l *Lexicon) LanguageLabel(t constants.Language) string {
	if v, ok := l.LanguageLabels[t]; ok {
		return v
	}
	return string(t)
}

// PageMarker renders the page boundary marker for a 1-based page number.
func (l *Lexicon) PageMarker(page int) string {
	return fmt.Sprintf(l.Labels.PageMarker, page)
}

// ProcessingFailed renders the top-level failure message.
func (l *Lexicon) ProcessingFailed(cause string) string {
	return fmt.Sprintf(l.Labels.ProcessingFailed, cause)
}

// Expand substitutes the script class into a pattern expression.
func (l *Lexicon) Expand(expr string) string {
	return strings.ReplaceAll(expr, ScriptPlaceholder, l.Script.Class())
}

// TopicSet returns the topic vocabulary as a lookup set.
func (l *Lexicon) TopicSet() map[string]struct{} {
	out := make(map[string]struct{}, len(l.Topics))
	for _, w := range l.Topics {
		out[w] = struct{}{}
	}
	return out
}

// Clone returns a deep copy so callers can derive variants without sharing maps.
func (l *Lexicon) Clone() *Lexicon {
	c := *l
	c.EntityLabels = make(map[constants.EntityType]string, len(l.EntityLabels))
	for k, v := range l.EntityLabels {
		c.EntityLabels[k] = v
	}
	c.DocumentLabels = make(map[constants.DocumentType]string, len(l.DocumentLabels))
	for k, v := range l.DocumentLabels {
		c.DocumentLabels[k] = v
	}
	c.LanguageLabels = make(map[constants.Language]string, len(l.LanguageLabels))
	for k, v := range l.LanguageLabels {
		c.LanguageLabels[k] = v
	}
	c.Keywords = make([]KeywordSet, len(l.Keywords))
	for i, ks := range l.Keywords {
		c.Keywords[i] = KeywordSet{Type: ks.Type, Words: append([]string(nil), ks.Words...)}
	}
	c.Topics = append([]string(nil), l.Topics...)
	c.Patterns = append([]Pattern(nil), l.Patterns...)
	return &c
}
