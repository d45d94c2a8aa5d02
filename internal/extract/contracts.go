// Package extract derives delivery fields from raw OCR text. It is a
// best-effort heuristic: false positives and misses are expected, and an
// empty input simply yields no fields.
package extract

// Fields is the outcome of pattern extraction over one image's text.
// Either field is nil when no candidate pattern matched.
type Fields struct {
	Address   *string
	Reference *string
}

// PodExtraction carries the fields and raw text recognized on the
// customer-signed proof-of-delivery photo.
type PodExtraction struct {
	Fields
	RawText string
}

// JobSheetExtraction carries the fields and raw text recognized on the
// driver's job-sheet photo.
type JobSheetExtraction struct {
	Fields
	RawText string
}

// Merge reconciles the two sources. The POD is the customer-signed document,
// so its values win; the job sheet only fills gaps.
func Merge(pod PodExtraction, jobSheet JobSheetExtraction) Fields {
	merged := Fields{Address: pod.Address, Reference: pod.Reference}
	if merged.Address == nil {
		merged.Address = jobSheet.Address
	}
	if merged.Reference == nil {
		merged.Reference = jobSheet.Reference
	}
	return merged
}
