// Package jobs searches the backend's scraped job listings and provides
// the client-side filtering and sorting the listing view needs.
package jobs

import "strings"

// Job is one scraped listing as returned by the jobs endpoint.
type Job struct {
	URN         string `json:"urn"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	ApplyLink   string `json:"apply_link"`
	Source      string `json:"source"`
}

// Level derives a seniority bucket from the job title. The backend does
// not supply one, so this is a keyword heuristic.
func (j Job) Level() string {
	title := strings.ToLower(j.Title)
	switch {
	case strings.Contains(title, "senior") || strings.Contains(title, "sr."):
		return "Senior"
	case strings.Contains(title, "junior") || strings.Contains(title, "jr."):
		return "Junior"
	case strings.Contains(title, "mid") || strings.Contains(title, "middle"):
		return "Mid"
	}
	return ""
}
