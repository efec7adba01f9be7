package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobpilot/internal/dedup"
	"github.com/jonathan/jobpilot/internal/match"
	"github.com/jonathan/jobpilot/internal/profile"
	"github.com/jonathan/jobpilot/internal/sources"
	"github.com/jonathan/jobpilot/internal/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search job boards and rank postings against your profile",
	Long:  "Search every configured source in parallel, merge duplicate postings, and, when a profile is given, rank the results by match score.",
	RunE:  runSearch,
}

var (
	searchKeywords []string
	searchLocation string
	searchLimit    int
	profilePath    string
	minScore       float64
	outPath        string
)

func init() {
	searchCmd.Flags().StringSliceVarP(&searchKeywords, "keywords", "k", nil, "Keywords to search for (required unless set in config)")
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "Location filter")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum postings per source")
	searchCmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Path to profile JSON; enables match scoring")
	searchCmd.Flags().Float64Var(&minScore, "min-score", 0, "Hide postings scoring below this composite")
	searchCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write ranked results as JSON to this file")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(searchKeywords) > 0 {
		cfg.Keywords = searchKeywords
	}
	if searchLocation != "" {
		cfg.Location = searchLocation
	}
	if searchLimit > 0 {
		cfg.Limit = searchLimit
	}
	if profilePath != "" {
		cfg.ProfilePath = profilePath
	}
	if minScore > 0 {
		cfg.MinScore = minScore
	}
	if len(cfg.Keywords) == 0 {
		return fmt.Errorf("no keywords given; use --keywords or set them in the config file")
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()

	result := newAggregator(cfg, log).Run(ctx, sources.Query{
		Keywords: cfg.Keywords,
		Location: cfg.Location,
		Limit:    cfg.Limit,
	})
	merged := dedup.Merge(result.Postings, dedup.DefaultPriorities())

	printReport(result.Report)

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if st.database != nil {
		if err := st.database.UpsertPostings(ctx, merged); err != nil {
			return fmt.Errorf("failed to persist postings: %w", err)
		}
	}

	if cfg.ProfilePath == "" {
		printPostings(merged)
		return writeOut(merged)
	}

	prof, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		return err
	}

	engine, closeEngine, err := newEngine(ctx, cfg, st.cache, log)
	if err != nil {
		return err
	}
	defer closeEngine()

	scores, err := engine.Score(ctx, prof, merged)
	if err != nil {
		return err
	}
	ranked := match.Rank(merged, scores)

	shown := ranked[:0:0]
	for _, r := range ranked {
		if r.Score.Composite >= cfg.MinScore {
			shown = append(shown, r)
		}
	}
	printRanked(shown, len(ranked))
	return writeOut(shown)
}

func printReport(report []types.SourceStatus) {
	fmt.Fprintln(os.Stdout, "Sources:")
	for _, s := range report {
		if s.OK {
			fmt.Fprintf(os.Stdout, "  %-12s ok      %d postings\n", s.Source, s.Count)
			continue
		}
		fmt.Fprintf(os.Stdout, "  %-12s FAILED  %s\n", s.Source, s.Reason)
		if s.ManualURL != "" {
			fmt.Fprintf(os.Stdout, "  %-12s         search manually: %s\n", "", s.ManualURL)
		}
	}
	fmt.Fprintln(os.Stdout)
}

func printPostings(postings []types.Posting) {
	fmt.Fprintf(os.Stdout, "%d postings after merge:\n", len(postings))
	for _, p := range postings {
		fmt.Fprintf(os.Stdout, "  [%s] %s at %s (%s)\n    %s\n", p.Source, p.Title, p.Company, p.Location, p.URL)
	}
}

func printRanked(shown []match.Ranked, total int) {
	fmt.Fprintf(os.Stdout, "%d of %d postings above threshold:\n", len(shown), total)
	for _, r := range shown {
		mode := string(r.Score.Mode)
		detail := fmt.Sprintf("skill %.2f, experience %.2f", r.Score.Skill, r.Score.Experience)
		if r.Score.Semantic != nil {
			detail = fmt.Sprintf("semantic %.2f, %s", *r.Score.Semantic, detail)
		}
		fmt.Fprintf(os.Stdout, "  %.2f  %s at %s [%s: %s]\n    id=%s\n    %s\n",
			r.Score.Composite, r.Posting.Title, r.Posting.Company, mode, detail, r.Posting.ID, r.Posting.URL)
	}
	if total > len(shown) {
		fmt.Fprintf(os.Stdout, "(%d below threshold hidden)\n", total-len(shown))
	}
}

func writeOut(v any) error {
	if outPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Results written to %s\n", outPath)
	return nil
}
