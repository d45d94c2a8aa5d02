package extract

import "regexp"

// Candidate patterns are tried in order, first match wins, independently per
// field. Each yields its first capture group when present, otherwise the
// whole match.
var addressPatterns = []*regexp.Regexp{
	// Explicit label, capturing up to two lines of following text.
	regexp.MustCompile(`(?i)(?:deliver(?:y)?(?:\s+to)?|ship(?:ping)?(?:\s+to)?|address)[:\s]+([^\n]+(?:\n[^\n]+)?)`),
	// Street-address shape: house number, words, known street suffix.
	regexp.MustCompile(`(?i)\d+\s+[\w\s]+(?:street|st|avenue|ave|road|rd|lane|ln|drive|dr|court|ct|place|pl|boulevard|blvd)[^\n]*`),
	// "City, ST 12345" shape.
	regexp.MustCompile(`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*,?\s+[A-Z]{2}\s+\d{5}(?:-\d{4})?`),
}

var referencePatterns = []*regexp.Regexp{
	// Explicit label followed by an alphanumeric/hyphen token.
	regexp.MustCompile(`(?i)(?:ref(?:erence)?|order|tracking|job|delivery)[\s#:]+([A-Z0-9\-]+)`),
	// Carrier-style prefix: 2-4 uppercase letters, optional hyphen, 6-10 digits.
	regexp.MustCompile(`\b[A-Z]{2,4}-?\d{6,10}\b`),
	// Bare long digit run.
	regexp.MustCompile(`\b\d{10,}\b`),
}

// ExtractFields locates a delivery address and a reference number in raw
// recognized text. Nothing matching leaves the corresponding field nil.
func ExtractFields(rawText string) Fields {
	return Fields{
		Address:   firstMatch(rawText, addressPatterns),
		Reference: firstMatch(rawText, referencePatterns),
	}
}

func firstMatch(text string, patterns []*regexp.Regexp) *string {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := m[0]
		if len(m) > 1 && m[1] != "" {
			v = m[1]
		}
		return &v
	}
	return nil
}
