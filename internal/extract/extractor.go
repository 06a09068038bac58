package extract

// Extractor defines a minimal interface for extraction strategies so the HTTP
// layer and CLI can be exercised with stubs.
type Extractor interface {
	// Extract scans text and returns one match set per category.
	// Implementations must be deterministic and free of side effects.
	Extract(text string) Result
}

// TableExtractor applies the fixed pattern table via Extract.
type TableExtractor struct{}

func (TableExtractor) Extract(text string) Result {
	return Extract(text)
}
