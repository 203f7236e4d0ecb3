package pdf

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF          = regexp.MustCompile(`\r\n?`)
	reTrailingSpace = regexp.MustCompile(`(?m)[ \t]+$`)
)

// Normalize unifies line endings, drops trailing blanks on each line and
// applies the configured Unicode normalization form. NFKC folds Arabic
// presentation forms back to base letters.
func Normalize(s, form string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTrailingSpace.ReplaceAllString(s, "")
	return applyForm(s, form)
}

// applyForm applies only the Unicode normalization form; whitespace is kept.
func applyForm(s, form string) string {
	switch strings.ToLower(form) {
	case NormNFKC:
		return norm.NFKC.String(s)
	case NormNFC:
		return norm.NFC.String(s)
	}
	return s
}
