package main

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/AntonAveryan/careermate/internal/errors"
	"github.com/AntonAveryan/careermate/jobs"
)

func newJobsCmd(a *app) *cobra.Command {
	var (
		city     string
		maxPages int
		company  string
		level    string
		keyword  string
		sortBy   string
	)
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Search job listings for a city",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if city == "" {
				city = a.cfg.DefaultCity
			}
			list, err := a.jobs.Search(cmd.Context(), city, maxPages)
			if err != nil {
				if apperrors.Is(err, jobs.ErrNoCareerFields) {
					return fmt.Errorf("no career fields on your profile yet, upload a CV first (careermate cv upload)")
				}
				return err
			}

			list = jobs.Filter{Company: company, Level: level, Keyword: keyword}.Apply(list)
			if sortBy != "" {
				jobs.Sort(list, jobs.SortField(sortBy))
			}

			if len(list) == 0 {
				fmt.Println("No jobs found. Try a different city or filters.")
				return nil
			}
			for _, job := range list {
				line := job.Title
				if job.Company != "" {
					line += ", " + job.Company
				}
				if job.Location != "" {
					line += ", " + job.Location
				}
				fmt.Printf("%s\n  urn: %s", line, job.URN)
				if lvl := job.Level(); lvl != "" {
					fmt.Printf("  level: %s", lvl)
				}
				if job.ApplyLink != "" {
					fmt.Printf("\n  apply: %s", job.ApplyLink)
				}
				fmt.Println()
			}
			fmt.Printf("\n%d job(s)\n", len(list))
			return nil
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "city to search (default from config)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 1, "pages of results to scrape")
	cmd.Flags().StringVar(&company, "company", "", "filter by company")
	cmd.Flags().StringVar(&level, "level", "", "filter by seniority (Junior/Mid/Senior)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "filter by keyword in title or description")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort by 'title' or 'company'")
	return cmd
}
