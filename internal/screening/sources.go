package screening

// MergeSources appends the citations in add that dst does not already hold,
// keyed by URI. Citations without a URI are dropped. Merging the same list
// twice is a no-op.
func MergeSources(dst *ReportSources, add ReportSources) {
	dst.Web = mergeByURI(dst.Web, add.Web)
	dst.Maps = mergeByURI(dst.Maps, add.Maps)
}

func mergeByURI(existing, add []ReportSource) []ReportSource {
	seen := make(map[string]bool, len(existing)+len(add))
	for _, s := range existing {
		seen[s.URI] = true
	}
	for _, s := range add {
		if s.URI == "" || seen[s.URI] {
			continue
		}
		seen[s.URI] = true
		existing = append(existing, s)
	}
	if existing == nil {
		existing = []ReportSource{}
	}
	return existing
}
