package jobs

import (
	"sort"
	"strings"
)

// Filter matches jobs against optional criteria; an empty criterion
// matches everything.
type Filter struct {
	Company string
	Level   string
	Keyword string
}

// Apply returns the jobs matching every set criterion, preserving order.
func (f Filter) Apply(list []Job) []Job {
	matched := make([]Job, 0, len(list))
	for _, job := range list {
		if f.Company != "" && !strings.EqualFold(job.Company, f.Company) {
			continue
		}
		if f.Level != "" && !strings.EqualFold(job.Level(), f.Level) {
			continue
		}
		if f.Keyword != "" && !containsFold(job.Title, f.Keyword) && !containsFold(job.Description, f.Keyword) {
			continue
		}
		matched = append(matched, job)
	}
	return matched
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// SortField names a sortable job attribute.
type SortField string

const (
	SortByTitle   SortField = "title"
	SortByCompany SortField = "company"
)

// Sort orders the slice in place, stably, by the given field. Unknown
// fields leave the order untouched.
func Sort(list []Job, field SortField) {
	switch field {
	case SortByTitle:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	case SortByCompany:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Company < list[j].Company })
	}
}

// Companies returns the distinct non-empty company names, sorted. The
// listing view uses this to populate its company filter.
func Companies(list []Job) []string {
	set := make(map[string]struct{})
	for _, job := range list {
		if job.Company != "" {
			set[job.Company] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
