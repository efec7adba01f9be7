package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobpilot/internal/config"
)

func TestBuildAdapters_PublicBoardsOnly(t *testing.T) {
	cfg := config.Defaults()
	adapters := buildAdapters(cfg)

	require.Len(t, adapters, 3)
	names := []string{}
	for _, a := range adapters {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"indeed", "jobstreet", "linkedin"}, names)
}

func TestBuildAdapters_CareerPagesFirst(t *testing.T) {
	cfg := config.Defaults()
	cfg.GreenhouseBoards = []string{"acme"}
	cfg.LeverCompanies = []string{"initech"}

	adapters := buildAdapters(cfg)
	require.Len(t, adapters, 5)
	assert.Equal(t, "greenhouse", adapters[0].Name())
	assert.Equal(t, "lever", adapters[1].Name())
}

func TestResolvePosting_FromURLDerivesID(t *testing.T) {
	applyPostingID = ""
	applyURL = "https://boards.greenhouse.io/acme/jobs/1?utm_source=feed"
	applyTitle = "Backend Engineer"
	applyCompany = "Acme"
	t.Cleanup(func() { applyURL, applyTitle, applyCompany = "", "", "" })

	p, err := resolvePosting(context.Background(), &stores{})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "manual", p.Source)

	// Tracking params do not change the identity.
	applyURL = "https://boards.greenhouse.io/acme/jobs/1"
	same, err := resolvePosting(context.Background(), &stores{})
	require.NoError(t, err)
	assert.Equal(t, p.ID, same.ID)
}

func TestResolvePosting_PostingIDNeedsDatabase(t *testing.T) {
	applyPostingID = "abc123"
	applyURL = ""
	t.Cleanup(func() { applyPostingID = "" })

	_, err := resolvePosting(context.Background(), &stores{})
	assert.Error(t, err)
}
