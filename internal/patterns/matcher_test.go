package patterns

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sultanMIB/pdf-ui/constants"
	"github.com/sultanMIB/pdf-ui/internal/entity"
	"github.com/sultanMIB/pdf-ui/internal/lexicon"
)

func texts(es []entity.Entity, label string) []string {
	var out []string
	for _, e := range es {
		if e.Type == label {
			out = append(out, e.Text)
		}
	}
	return out
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 70, Confidence(""))
	assert.Equal(t, 72, Confidence("1"))
	assert.Equal(t, 94, Confidence("123456789012"))
	assert.Equal(t, 95, Confidence("1234567890123"))
	assert.Equal(t, 95, Confidence("a very long match that goes on"))
	// runes, not bytes
	assert.Equal(t, 78, Confidence("محمد"))

	prev := 0
	for n := 0; n < 40; n++ {
		s := make([]byte, n)
		for i := range s {
			s[i] = 'x'
		}
		c := Confidence(string(s))
		assert.GreaterOrEqual(t, c, prev)
		assert.GreaterOrEqual(t, c, 70)
		assert.LessOrEqual(t, c, 95)
		prev = c
	}
}

func TestExtractEntities_EmailDatePhone(t *testing.T) {
	lex := lexicon.Default()
	m := NewMatcher(lex, nil)

	got := m.ExtractEntities(context.Background(), "Contact user@example.com on 2024-01-15 or call 0501234567.")

	email := lex.EntityLabel(constants.EntityEmail)
	date := lex.EntityLabel(constants.EntityDate)
	phone := lex.EntityLabel(constants.EntityPhone)
	number := lex.EntityLabel(constants.EntityNumber)

	assert.Equal(t, []string{"user@example.com"}, texts(got, email))
	assert.Equal(t, []string{"2024-01-15"}, texts(got, date))
	assert.Equal(t, []string{"0501234567"}, texts(got, phone))
	assert.Equal(t, []string{"2024", "01", "15", "0501234567"}, texts(got, number))

	for _, e := range got {
		assert.Equal(t, Confidence(e.Text), e.Confidence)
	}

	// pattern order first, then position
	var order []string
	for _, e := range got {
		if len(order) == 0 || order[len(order)-1] != e.Type {
			order = append(order, e.Type)
		}
	}
	assert.Equal(t, []string{date, phone, email, number}, order)
}

func TestExtractEntities_ArabicNamesUseUnicodeBoundaries(t *testing.T) {
	lex := lexicon.Default()
	m := NewMatcher(lex, nil)
	names := lex.EntityLabel(constants.EntityPersonName)

	got := m.ExtractEntities(context.Background(), "السيد محمد أحمد")
	assert.Equal(t, []string{"السيد محمد"}, texts(got, names))

	got = m.ExtractEntities(context.Background(), "xمحمد أحمد")
	assert.Empty(t, texts(got, names))
}

func TestExtractEntities_NumbersNeedBoundaries(t *testing.T) {
	lex := lexicon.Default()
	m := NewMatcher(lex, nil)
	number := lex.EntityLabel(constants.EntityNumber)
	phone := lex.EntityLabel(constants.EntityPhone)

	got := m.ExtractEntities(context.Background(), "abc123 456 ٠٥٠١٢٣٤٥٦٧")
	assert.Equal(t, []string{"456", "٠٥٠١٢٣٤٥٦٧"}, texts(got, number))
	assert.Equal(t, []string{"٠٥٠١٢٣٤٥٦٧"}, texts(got, phone))

	// 16 digits is too long for a phone and has no inner boundary
	got = m.ExtractEntities(context.Background(), "1234567890123456")
	assert.Empty(t, texts(got, phone))
}

func TestExtractEntities_URLRunsToWhitespace(t *testing.T) {
	lex := lexicon.Default()
	m := NewMatcher(lex, nil)

	got := m.ExtractEntities(context.Background(), "see https://example.com/a?b=1, then http://x.y")
	assert.Equal(t, []string{"https://example.com/a?b=1,", "http://x.y"}, texts(got, lex.EntityLabel(constants.EntityURL)))
}

func TestExtractEntities_BadPatternIsSkipped(t *testing.T) {
	lex := lexicon.Default()
	lex.Patterns = append([]lexicon.Pattern{{Type: constants.EntityDate, Expr: `(`, Bounded: true}}, lex.Patterns...)
	m := NewMatcher(lex, nil)

	got := m.ExtractEntities(context.Background(), "call 0501234567")
	require.NotEmpty(t, got)
	assert.Equal(t, []string{"0501234567"}, texts(got, lex.EntityLabel(constants.EntityPhone)))
}

func TestExtractEntities_Empty(t *testing.T) {
	m := NewMatcher(lexicon.Default(), nil)
	got := m.ExtractEntities(context.Background(), "")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestScanBounded_ShorterPrefix(t *testing.T) {
	lex := lexicon.Default()
	m := NewMatcher(lex, nil)
	date := lex.EntityLabel(constants.EntityDate)

	// D/M/YYYY followed by a letter has no boundary at any length
	got := m.ExtractEntities(context.Background(), "1/2/2024x and 3/4/24")
	assert.Equal(t, []string{"3/4/24"}, texts(got, date))
}
