package constants

import (
	"strings"
)

// EntityType is the canonical, non-localized key of an entity pattern.
type EntityType string

const (
	EntityPersonName EntityType = "PersonName"
	EntityDate       EntityType = "Date"
	EntityPhone      EntityType = "Phone"
	EntityEmail      EntityType = "Email"
	EntityURL        EntityType = "URL"
	EntityNumber     EntityType = "Number"
)

// Declaration order is the emission order of entity extraction.
var allEntityTypes = []EntityType{
	EntityPersonName,
	EntityDate,
	EntityPhone,
	EntityEmail,
	EntityURL,
	EntityNumber,
}

// DocumentType is the canonical key of a coarse document classification.
type DocumentType string

const (
	DocumentContract DocumentType = "Contract"
	DocumentInvoice  DocumentType = "Invoice"
	DocumentReport   DocumentType = "Report"
	DocumentGeneral  DocumentType = "General"
	DocumentUnknown  DocumentType = "Unknown"
)

var allDocumentTypes = []DocumentType{
	DocumentContract,
	DocumentInvoice,
	DocumentReport,
	DocumentGeneral,
	DocumentUnknown,
}

// Language is the canonical key of the script-presence language test.
type Language string

const (
	LanguagePrimary   Language = "Primary"
	LanguageSecondary Language = "Secondary"
	LanguageUnknown   Language = "Unknown"
)

var allLanguages = []Language{
	LanguagePrimary,
	LanguageSecondary,
	LanguageUnknown,
}

func EntityTypes() []EntityType {
	out := make([]EntityType, len(allEntityTypes))
	copy(out, allEntityTypes)
	return out
}

func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(allDocumentTypes))
	copy(out, allDocumentTypes)
	return out
}

func Languages() []Language {
	out := make([]Language, len(allLanguages))
	copy(out, allLanguages)
	return out
}

// CanonicalizeEntityType maps loose spellings from config files onto an EntityType.
func CanonicalizeEntityType(input string) (EntityType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]EntityType{
		"name":    EntityPersonName,
		"names":   EntityPersonName,
		"person":  EntityPersonName,
		"dates":   EntityDate,
		"tel":     EntityPhone,
		"mobile":  EntityPhone,
		"mail":    EntityEmail,
		"e-mail":  EntityEmail,
		"link":    EntityURL,
		"web":     EntityURL,
		"numbers": EntityNumber,
	}
	if t, ok := synonyms[normalized]; ok {
		return t, true
	}
	for _, t := range allEntityTypes {
		if normalized == strings.ToLower(string(t)) {
			return t, true
		}
	}
	return "", false
}

// CanonicalizeDocumentType maps loose spellings onto a DocumentType.
func CanonicalizeDocumentType(input string) (DocumentType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, t := range allDocumentTypes {
		if normalized == strings.ToLower(string(t)) {
			return t, true
		}
	}
	return "", false
}
