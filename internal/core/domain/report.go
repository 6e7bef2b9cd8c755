package domain

// ListReport is the outcome of one list across all pipeline stages.
type ListReport struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Stats       ListStats `json:"stats"`
	Score       int       `json:"score"`
	Distributed int       `json:"distributed"`
	Filtered    int       `json:"filtered"`
	Changed     int       `json:"changed"`

	// Carried marks a list redistributed from the previous build without
	// being requested.
	Carried bool `json:"carried,omitempty"`
}

// BuildReport is the outcome of one build run.
type BuildReport struct {
	Number string       `json:"number"`
	Lists  []ListReport `json:"lists"`
}

// Totals sums the per-list counters.
func (r *BuildReport) Totals() ListReport {
	total := ListReport{ID: "total"}
	for _, l := range r.Lists {
		total.Stats.SourcesTotal += l.Stats.SourcesTotal
		total.Stats.SourcesProcessed += l.Stats.SourcesProcessed
		total.Stats.EntriesTotal += l.Stats.EntriesTotal
		total.Stats.EntriesResolved += l.Stats.EntriesResolved
		total.Distributed += l.Distributed
		total.Filtered += l.Filtered
		total.Changed += l.Changed
	}
	return total
}
