package domain

// Summary holds the counters of one update pass.
// Updated+Skipped may exceed Total: a record whose title is repaired and whose alt text is then
// derived is counted twice.
type Summary struct {
	Total   int
	Updated int
	Skipped int

	TotalSizesProcessed int
	MetadataIssues      int

	// Failed counts records abandoned after a store error.
	Failed int
}
