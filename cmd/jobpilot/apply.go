package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/jonathan/jobpilot/internal/apply"
	"github.com/jonathan/jobpilot/internal/platform"
	"github.com/jonathan/jobpilot/internal/profile"
	"github.com/jonathan/jobpilot/internal/types"
)

const (
	promptYes = "Yes, submit"
	promptNo  = "No, abort"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Fill out an application and submit after confirmation",
	Long:  "Open the posting's application form in a headless browser, fill it from your profile, show what was filled, and submit only after you confirm. Captchas, logins, and unfillable critical fields hand the application back to you.",
	RunE:  runApply,
}

var (
	applyPostingID string
	applyURL       string
	applyTitle     string
	applyCompany   string
	applyProfile   string
	autoApprove    bool
	forceNew       bool
)

func init() {
	applyCmd.Flags().StringVar(&applyPostingID, "posting-id", "", "Posting id from an earlier search (requires a database)")
	applyCmd.Flags().StringVarP(&applyURL, "url", "u", "", "Posting URL to apply to directly")
	applyCmd.Flags().StringVar(&applyTitle, "title", "", "Posting title, used with --url")
	applyCmd.Flags().StringVar(&applyCompany, "company", "", "Company name, used with --url")
	applyCmd.Flags().StringVarP(&applyProfile, "profile", "p", "", "Path to profile JSON (required)")
	applyCmd.Flags().BoolVarP(&autoApprove, "yes", "y", false, "Submit without asking for confirmation")
	applyCmd.Flags().BoolVar(&forceNew, "force-new", false, "Supersede a manual-required attempt and start over")

	applyCmd.MarkFlagRequired("profile")

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	if applyPostingID == "" && applyURL == "" {
		return fmt.Errorf("either --posting-id or --url must be provided")
	}
	if applyPostingID != "" && applyURL != "" {
		return fmt.Errorf("--posting-id and --url are mutually exclusive; provide only one")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	posting, err := resolvePosting(ctx, st)
	if err != nil {
		return err
	}

	prof, err := profile.Load(applyProfile)
	if err != nil {
		return err
	}

	confirm := confirmPrompt
	if autoApprove {
		confirm = func(context.Context, apply.Review) (bool, error) { return true, nil }
	}

	orch := apply.New(st.tracker, sessionFactory, confirm, apply.Options{
		MaxSessions: int64(cfg.MaxSessions),
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  time.Second,
	}, log)

	attempt, err := orch.Apply(ctx, posting, prof, forceNew)
	if err != nil {
		return err
	}

	switch attempt.State {
	case types.StateSubmitted:
		fmt.Fprintf(os.Stdout, "Application submitted: %s at %s\n", posting.Title, posting.Company)
	case types.StateManualRequired:
		fmt.Fprintf(os.Stdout, "Manual completion required: %s\n", attempt.LastError)
		fmt.Fprintf(os.Stdout, "Apply by hand at: %s\n", posting.URL)
	default:
		fmt.Fprintf(os.Stdout, "Attempt ended in state %s: %s\n", attempt.State, attempt.LastError)
	}
	return nil
}

// resolvePosting builds the target posting from the database or the flags.
func resolvePosting(ctx context.Context, st *stores) (types.Posting, error) {
	if applyPostingID != "" {
		if st.database == nil {
			return types.Posting{}, fmt.Errorf("--posting-id needs a configured database; use --url instead")
		}
		p, err := st.database.GetPosting(ctx, applyPostingID)
		if err != nil {
			return types.Posting{}, err
		}
		if p == nil {
			return types.Posting{}, fmt.Errorf("posting %s not found; run a search first", applyPostingID)
		}
		return *p, nil
	}

	p := types.Posting{
		Title:   applyTitle,
		Company: applyCompany,
		URL:     applyURL,
		Source:  "manual",
	}
	p.DeriveID()
	return p, nil
}

func sessionFactory(ctx context.Context) (*platform.Session, func(), error) {
	return platform.NewSession(ctx)
}

// confirmPrompt shows the filled form summary and asks before submitting.
func confirmPrompt(_ context.Context, review apply.Review) (bool, error) {
	fmt.Fprintf(os.Stdout, "\nReady to submit: %s at %s\n", review.Posting.Title, review.Posting.Company)
	fmt.Fprintf(os.Stdout, "Filled fields: %v\n", review.Filled)
	if len(review.Skipped) > 0 {
		fmt.Fprintf(os.Stdout, "Skipped fields: %v\n", review.Skipped)
	}
	if len(review.UnmappedRequired) > 0 {
		fmt.Fprintf(os.Stdout, "Required fields left empty: %v\n", review.UnmappedRequired)
	}

	prompt := promptui.Select{
		Label: "Submit this application?",
		Items: []string{promptYes, promptNo},
	}
	_, answer, err := prompt.Run()
	if err != nil {
		return false, err
	}
	return answer == promptYes, nil
}
