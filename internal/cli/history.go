package cli

import (
	"fmt"

	"github.com/mpetrov/trialgate/internal/store"
	"github.com/spf13/cobra"
)

var (
	historyLimit   int
	historyJSONOut bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved assessments",
	Long: `List, show, and delete assessments saved by previous runs.

Assessments are stored under the storage directory (default:
$HOME/.trialgate/assessments) unless assess ran with --no-save.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved assessments, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openHistory()
		if err != nil {
			return err
		}

		summaries := s.List(historyLimit)
		if historyJSONOut {
			return printJSON(summaries)
		}
		if len(summaries) == 0 {
			fmt.Println("No saved assessments.")
			return nil
		}
		for _, sum := range summaries {
			fmt.Printf("%s  %s  %5.1f/100 %-8s %s\n",
				sum.ID, sum.CreatedAt.Format("2006-01-02 15:04"), sum.OverallScore, sum.RiskLevel, sum.TrialName)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <assessment-id>",
	Short: "Show one saved assessment in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openHistory()
		if err != nil {
			return err
		}

		entry, ok := s.Get(args[0])
		if !ok {
			return fmt.Errorf("assessment not found: %s", args[0])
		}
		return printJSON(entry.Assessment)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <assessment-id>",
	Short: "Delete a saved assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openHistory()
		if err != nil {
			return err
		}

		if err := s.Delete(args[0]); err != nil {
			return fmt.Errorf("delete assessment: %w", err)
		}
		fmt.Printf("✓ Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)

	historyCmd.PersistentFlags().StringVar(&storageDir, "storage-dir", "", "assessment history directory (default: $HOME/.trialgate/assessments)")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum assessments to list")
	historyListCmd.Flags().BoolVar(&historyJSONOut, "json-output", false, "print results as JSON")
}

func openHistory() (*store.Store, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	dir, err := resolveStorageDir(cfg)
	if err != nil {
		return nil, err
	}
	return store.Open(dir)
}
