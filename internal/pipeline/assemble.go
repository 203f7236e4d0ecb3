package pipeline

import (
	"unicode/utf8"

	"github.com/sultanMIB/pdf-ui/internal/entity"
)

func (p *Processor) assemble(md entity.Metadata, text string, tables []entity.Table, ents []entity.Entity, sem entity.SemanticAnalysis) entity.AnalysisResult {
	raw := truncateRunes(text, p.limits.RawTextRunes)
	if text == "" {
		raw = p.lex.Labels.NoText
	}
	sem.Topics = head(sem.Topics, p.limits.Topics)
	if sem.Topics == nil {
		sem.Topics = []string{}
	}
	return entity.AnalysisResult{
		Success:          true,
		Metadata:         md,
		RawText:          raw,
		Tables:           head(tables, p.limits.Tables),
		Entities:         head(ents, p.limits.Entities),
		SemanticAnalysis: sem,
		ProcessingTime:   p.now().Format(TimeLayout),
	}
}

// head returns a copy of at most n leading elements, never nil.
func head[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(s) < n {
		n = len(s)
	}
	out := make([]T, n)
	copy(out, s[:n])
	return out
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
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
