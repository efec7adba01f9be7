package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobpilot/internal/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show application attempts by state",
	RunE:  runStatus,
}

var (
	statusPostingID string
	statusProfileID string
)

func init() {
	statusCmd.Flags().StringVar(&statusPostingID, "posting-id", "", "Show the attempt history for one posting")
	statusCmd.Flags().StringVar(&statusProfileID, "profile-id", "", "Profile id, used with --posting-id")

	rootCmd.AddCommand(statusCmd)
}

// stateOrder fixes the display order from most to least actionable.
var stateOrder = []types.AttemptState{
	types.StateAwaitingReview,
	types.StateManualRequired,
	types.StatePending,
	types.StateFormDiscovered,
	types.StateFieldsMapped,
	types.StateFieldsFilled,
	types.StateSubmitted,
	types.StateFailed,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if statusPostingID != "" {
		if statusProfileID == "" {
			return fmt.Errorf("--posting-id needs --profile-id")
		}
		return printHistory(cmd, st)
	}

	counts, err := st.tracker.CountByState(ctx)
	if err != nil {
		return err
	}

	total := 0
	fmt.Fprintln(os.Stdout, "Attempts by state:")
	for _, state := range stateOrder {
		if n := counts[state]; n > 0 {
			fmt.Fprintf(os.Stdout, "  %-16s %d\n", state, n)
			total += n
		}
	}
	fmt.Fprintf(os.Stdout, "  %-16s %d\n", "total", total)
	return nil
}

func printHistory(cmd *cobra.Command, st *stores) error {
	ctx := cmd.Context()

	attempt, err := st.tracker.Find(ctx, statusPostingID, statusProfileID)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Attempt %s (%s) on %s\n", attempt.ID, attempt.State, attempt.PlatformKind)
	if attempt.LastError != "" {
		fmt.Fprintf(os.Stdout, "Last error: %s\n", attempt.LastError)
	}

	history, err := st.tracker.History(ctx, attempt.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "History:")
	for _, tr := range history {
		fmt.Fprintf(os.Stdout, "  %s  %-16s -> %-16s %s\n",
			tr.At.Format("2006-01-02 15:04:05"), tr.From, tr.To, tr.Reason)
	}
	return nil
}
