// Package search builds filtered job-search URLs and walks a shuffled list
// of (position, location) queries page by page, pacing every load.
package search

import (
	"fmt"
	"net/url"
	"strings"

	"easyapply-engine/internal/config"
)

// Query drives one page-iteration loop. Immutable.
type Query struct {
	Position string
	Location string
}

const pageSize = 25

// BaseParams renders the filter portion of the search URL deterministically
// from config. Field order matters: the output is stable across runs with
// the same config.
func BaseParams(cfg config.Config) string {
	s := cfg.Search

	distance := fmt.Sprintf("?distance=%d", s.Distance)

	remote := ""
	if s.Remote {
		remote = "&f_WT=2"
	}

	fewApplicants := ""
	if s.FewerThanTenApplicants {
		fewApplicants = "&f_EA=true"
	}

	jobTypes := "f_JT="
	for _, jt := range []struct {
		on     bool
		letter string
	}{
		{s.JobTypes.FullTime, "F"},
		{s.JobTypes.Contract, "C"},
		{s.JobTypes.PartTime, "P"},
		{s.JobTypes.Temporary, "T"},
		{s.JobTypes.Internship, "I"},
		{s.JobTypes.Other, "O"},
		{s.JobTypes.Volunteer, "V"},
	} {
		if jt.on {
			jobTypes += "%2C" + jt.letter
		}
	}

	experience := "f_E="
	for i, on := range []bool{
		s.ExperienceLevels.Internship,
		s.ExperienceLevels.EntryLevel,
		s.ExperienceLevels.Associate,
		s.ExperienceLevels.MidSenior,
		s.ExperienceLevels.Director,
		s.ExperienceLevels.Executive,
	} {
		if on {
			experience += fmt.Sprintf("%%2C%d", i+1)
		}
	}

	// First truthy range wins, in declaration order.
	date := ""
	switch {
	case s.Date.AllTime:
		date = ""
	case s.Date.Month:
		date = "&f_TPR=r2592000"
	case s.Date.Week:
		date = "&f_TPR=r604800"
	case s.Date.Last24Hours:
		date = "&f_TPR=r86400"
	}

	sort := ""
	if s.NewestFirst {
		sort = "&sortBy=DD"
	}

	var terms []string
	for _, t := range []string{distance, remote, fewApplicants, jobTypes, experience} {
		if t != "" {
			terms = append(terms, t)
		}
	}

	// Easy-apply filter is always on; the whole engine only drives that flow.
	return strings.Join(terms, "&") + "&f_AL=true" + date + sort
}

// NextPageURL returns the search URL for a given query and zero-based page.
func NextPageURL(baseParams string, q Query, page int) string {
	return "https://www.linkedin.com/jobs/search/" + baseParams +
		"&keywords=" + url.QueryEscape(q.Position) +
		"&location=" + url.QueryEscape(q.Location) +
		fmt.Sprintf("&start=%d", page*pageSize)
}
