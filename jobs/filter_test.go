package jobs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonAveryan/careermate/jobs"
)

var sample = []jobs.Job{
	{URN: "1", Title: "Senior Go Developer", Company: "Acme", Description: "Distributed systems"},
	{URN: "2", Title: "Junior Frontend Developer", Company: "Globex", Description: "React"},
	{URN: "3", Title: "Mid-level Data Engineer", Company: "Acme", Description: "Pipelines in Go"},
	{URN: "4", Title: "Product Manager", Company: "Initech", Description: "Roadmaps"},
}

func TestLevelHeuristic(t *testing.T) {
	cases := map[string]string{
		"Senior Go Developer":       "Senior",
		"Sr. Backend Engineer":      "Senior",
		"Junior Frontend Developer": "Junior",
		"Jr. Analyst":               "Junior",
		"Mid-level Data Engineer":   "Mid",
		"Middle QA Engineer":        "Mid",
		"Product Manager":           "",
	}
	for title, want := range cases {
		require.Equal(t, want, jobs.Job{Title: title}.Level(), title)
	}
}

func TestFilterByCompany(t *testing.T) {
	got := jobs.Filter{Company: "acme"}.Apply(sample)
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].URN)
	require.Equal(t, "3", got[1].URN)
}

func TestFilterByLevel(t *testing.T) {
	got := jobs.Filter{Level: "senior"}.Apply(sample)
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].URN)
}

func TestFilterByKeywordMatchesTitleAndDescription(t *testing.T) {
	got := jobs.Filter{Keyword: "go"}.Apply(sample)
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].URN)
	require.Equal(t, "3", got[1].URN)
}

func TestFilterCombinesCriteria(t *testing.T) {
	got := jobs.Filter{Company: "Acme", Keyword: "pipelines"}.Apply(sample)
	require.Len(t, got, 1)
	require.Equal(t, "3", got[0].URN)
}

func TestSortByTitle(t *testing.T) {
	list := append([]jobs.Job(nil), sample...)
	jobs.Sort(list, jobs.SortByTitle)
	require.Equal(t, "Junior Frontend Developer", list[0].Title)
	require.Equal(t, "Senior Go Developer", list[3].Title)
}

func TestSortUnknownFieldKeepsOrder(t *testing.T) {
	list := append([]jobs.Job(nil), sample...)
	jobs.Sort(list, jobs.SortField("salary"))
	require.Equal(t, sample, list)
}

func TestCompanies(t *testing.T) {
	require.Equal(t, []string{"Acme", "Globex", "Initech"}, jobs.Companies(sample))
}
