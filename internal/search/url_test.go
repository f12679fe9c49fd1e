package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"easyapply-engine/internal/config"
)

func testSearchConfig() config.Config {
	var cfg config.Config
	cfg.Search.Positions = []string{"Software Engineer"}
	cfg.Search.Locations = []string{"Austin, Texas"}
	cfg.Search.Distance = 25
	cfg.Search.Remote = true
	cfg.Search.ExperienceLevels.EntryLevel = true
	cfg.Search.ExperienceLevels.Associate = true
	cfg.Search.ExperienceLevels.MidSenior = true
	cfg.Search.JobTypes.FullTime = true
	cfg.Search.JobTypes.Contract = true
	cfg.Search.Date.Week = true
	return cfg
}

func TestBaseParams(t *testing.T) {
	cfg := testSearchConfig()
	base := BaseParams(cfg)

	assert.True(t, len(base) > 0 && base[0] == '?')
	assert.Contains(t, base, "distance=25")
	assert.Contains(t, base, "&f_WT=2")
	assert.Contains(t, base, "f_JT=%2CF%2CC")
	assert.Contains(t, base, "f_E=%2C2%2C3%2C4")
	assert.Contains(t, base, "&f_AL=true")
	assert.Contains(t, base, "&f_TPR=r604800")
	assert.NotContains(t, base, "f_EA")
	assert.NotContains(t, base, "sortBy")
}

func TestBaseParamsDeterministic(t *testing.T) {
	cfg := testSearchConfig()
	assert.Equal(t, BaseParams(cfg), BaseParams(cfg))
}

func TestBaseParamsDatePrecedence(t *testing.T) {
	cfg := testSearchConfig()
	cfg.Search.Date.Month = true
	cfg.Search.Date.Week = true
	assert.Contains(t, BaseParams(cfg), "&f_TPR=r2592000")

	cfg.Search.Date.AllTime = true
	assert.NotContains(t, BaseParams(cfg), "f_TPR")
}

func TestBaseParamsNewestFirst(t *testing.T) {
	cfg := testSearchConfig()
	cfg.Search.NewestFirst = true
	assert.Contains(t, BaseParams(cfg), "&sortBy=DD")
}

func TestNextPageURL(t *testing.T) {
	base := BaseParams(testSearchConfig())
	q := Query{Position: "Site Reliability Engineer", Location: "New York, NY"}

	u := NextPageURL(base, q, 0)
	assert.Contains(t, u, "https://www.linkedin.com/jobs/search/")
	assert.Contains(t, u, "&keywords=Site+Reliability+Engineer")
	assert.Contains(t, u, "&location=New+York%2C+NY")
	assert.Contains(t, u, "&start=0")

	u2 := NextPageURL(base, q, 3)
	assert.Contains(t, u2, "&start=75")
}
