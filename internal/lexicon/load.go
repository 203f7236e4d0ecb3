package lexicon

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sultanMIB/pdf-ui/constants"
	"github.com/sultanMIB/pdf-ui/internal/common"
)

// fileLexicon mirrors the YAML layout. Every field is optional.
//
//	script: {low: 0x0623, high: 0x064A}
//	labels:
//	  unknown: "n/a"
//	  page_marker: "--- Page %d ---"
//	entity_labels: {Phone: "Phone numbers"}
//	keywords:
//	  - type: Contract
//	    words: [contract, agreement]
//	topics: [project, payment]
//	patterns:
//	  - {type: Number, expr: '\p{Nd}+', bounded: true}
type fileLexicon struct {
	Script         *Script           `yaml:"script"`
	Labels         Labels            `yaml:"labels"`
	EntityLabels   map[string]string `yaml:"entity_labels"`
	DocumentLabels map[string]string `yaml:"document_labels"`
	LanguageLabels map[string]string `yaml:"language_labels"`
	Keywords       []struct {
		Type  string   `yaml:"type"`
		Words []string `yaml:"words"`
	} `yaml:"keywords"`
	Topics   []string `yaml:"topics"`
	Patterns []struct {
		Type    string `yaml:"type"`
		Expr    string `yaml:"expr"`
		Bounded *bool  `yaml:"bounded"`
	} `yaml:"patterns"`
}

// Load reads a YAML lexicon from path and overlays it on Default().
// An empty path returns the defaults unchanged.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %q: %w", path, err)
	}
	return Parse(data)
}

// Parse overlays YAML content on Default() and validates the result.
func Parse(data []byte) (*Lexicon, error) {
	var fl fileLexicon
	if err := yaml.Unmarshal(data, &fl); err != nil {
		return nil, common.NewAppError("LEXICON_ERROR", "parse lexicon", err)
	}

	lex := Default()
	if err := overlay(lex, &fl); err != nil {
		return nil, err
	}
	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return lex, nil
}

func overlay(lex *Lexicon, fl *fileLexicon) error {
	if fl.Script != nil {
		lex.Script = *fl.Script
	}
	overlayLabels(&lex.Labels, fl.Labels)

	for k, v := range fl.EntityLabels {
		t, ok := constants.CanonicalizeEntityType(k)
		if !ok {
			return common.NewAppError("LEXICON_ERROR", fmt.Sprintf("unknown entity type %q", k), common.ErrInvalidInput)
		}
		if v != "" {
			lex.EntityLabels[t] = v
		}
	}
	for k, v := range fl.DocumentLabels {
		t, ok := constants.CanonicalizeDocumentType(k)
		if !ok {
			return common.NewAppError("LEXICON_ERROR", fmt.Sprintf("unknown document type %q", k), common.ErrInvalidInput)
		}
		if v != "" {
			lex.DocumentLabels[t] = v
		}
	}
	for k, v := range fl.LanguageLabels {
		found := false
		for _, l := range constants.Languages() {
			if strings.EqualFold(k, string(l)) {
				if v != "" {
					lex.LanguageLabels[l] = v
				}
				found = true
			}
		}
		if !found {
			return common.NewAppError("LEXICON_ERROR", fmt.Sprintf("unknown language %q", k), common.ErrInvalidInput)
		}
	}

	if len(fl.Keywords) > 0 {
		lex.Keywords = lex.Keywords[:0]
		for _, ks := range fl.Keywords {
			t, ok := constants.CanonicalizeDocumentType(ks.Type)
			if !ok {
				return common.NewAppError("LEXICON_ERROR", fmt.Sprintf("unknown document type %q", ks.Type), common.ErrInvalidInput)
			}
			lex.Keywords = append(lex.Keywords, KeywordSet{Type: t, Words: ks.Words})
		}
	}
	if len(fl.Topics) > 0 {
		lex.Topics = fl.Topics
	}
	if len(fl.Patterns) > 0 {
		lex.Patterns = lex.Patterns[:0]
		for _, p := range fl.Patterns {
			t, ok := constants.CanonicalizeEntityType(p.Type)
			if !ok {
				return common.NewAppError("LEXICON_ERROR", fmt.Sprintf("unknown entity type %q", p.Type), common.ErrInvalidInput)
			}
			bounded := true
			if p.Bounded != nil {
				bounded = *p.Bounded
			}
			lex.Patterns = append(lex.Patterns, Pattern{Type: t, Expr: p.Expr, Bounded: bounded})
		}
	}
	return nil
}

func overlayLabels(dst *Labels, src Labels) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Unknown, src.Unknown)
	set(&dst.PageMarker, src.PageMarker)
	set(&dst.ExtractionFailed, src.ExtractionFailed)
	set(&dst.NoText, src.NoText)
	set(&dst.NoContent, src.NoContent)
	set(&dst.AnalysisError, src.AnalysisError)
	set(&dst.ProcessingFailed, src.ProcessingFailed)
	set(&dst.NoFile, src.NoFile)
	set(&dst.NoFilename, src.NoFilename)
	set(&dst.NotPDF, src.NotPDF)
	set(&dst.EmptyFile, src.EmptyFile)
	set(&dst.TooLarge, src.TooLarge)
	set(&dst.Busy, src.Busy)
	set(&dst.Healthy, src.Healthy)
}

// Validate checks that the table is complete enough to render every result field.
// Pattern expressions are not compiled here; a bad pattern only disables itself.
func (l *Lexicon) Validate() error {
	v := common.NewValidator()
	if !l.Script.Valid() {
		v.Field("script", fmt.Sprintf("%X-%X", l.Script.Low, l.Script.High), invalid("must be a non-empty code point range"))
	}
	v.Field("labels.unknown", l.Labels.Unknown, common.Required)
	v.Field("labels.page_marker", l.Labels.PageMarker, common.Required, containsVerb("%d"))
	v.Field("labels.processing_failed", l.Labels.ProcessingFailed, common.Required, containsVerb("%s"))
	v.Field("labels.extraction_failed", l.Labels.ExtractionFailed, common.Required)
	v.Field("labels.no_text", l.Labels.NoText, common.Required)
	v.Field("labels.no_content", l.Labels.NoContent, common.Required)
	v.Field("labels.analysis_error", l.Labels.AnalysisError, common.Required)

	for _, t := range constants.EntityTypes() {
		v.Field("entity_labels."+string(t), l.EntityLabels[t], common.Required)
	}
	for _, t := range constants.DocumentTypes() {
		v.Field("document_labels."+string(t), l.DocumentLabels[t], common.Required)
	}
	for _, t := range constants.Languages() {
		v.Field("language_labels."+string(t), l.LanguageLabels[t], common.Required)
	}
	for i, ks := range l.Keywords {
		if ks.Type == constants.DocumentGeneral || ks.Type == constants.DocumentUnknown {
			v.Field(fmt.Sprintf("keywords[%d].type", i), ks.Type, invalid("is a fallback type"))
		}
	}
	for i, p := range l.Patterns {
		v.Field(fmt.Sprintf("patterns[%d].expr", i), p.Expr, common.Required)
	}

	if v.HasErrors() {
		return common.NewAppError("LEXICON_ERROR", v.ErrorMessage(), common.ErrValidation)
	}
	return nil
}

func invalid(msg string) common.ValidationRule {
	return func(fieldName string, value interface{}) *common.ValidationError {
		return &common.ValidationError{Field: fieldName, Value: value, Message: msg}
	}
}

func containsVerb(verb string) common.ValidationRule {
	return func(fieldName string, value interface{}) *common.ValidationError {
		s, _ := value.(string)
		if strings.Count(s, "%") != 1 || !strings.Contains(s, verb) {
			return &common.ValidationError{Field: fieldName, Value: value, Message: "must contain exactly one " + verb}
		}
		return nil
	}
}
