package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mpetrov/trialgate/internal/cache"
	"github.com/mpetrov/trialgate/internal/model"
	"github.com/mpetrov/trialgate/internal/registry"
	"github.com/spf13/cobra"
)

var (
	fetchIntervention string
	fetchPhase        string
	fetchStatus       string
	fetchLimit        int
	fetchOut          string
	fetchAppend       bool
	fetchNoCache      bool
	fetchTimeout      time.Duration
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <condition>",
	Short: "Fetch trial records from ClinicalTrials.gov",
	Long: `Fetch queries the ClinicalTrials.gov v2 API for completed and
terminated trials matching a condition and converts them into corpus
record form. Responses are cached on disk, so repeated queries within
the cache TTL never hit the network.

With --append the fetched records are merged into an existing corpus
file; records with an already-present NCT ID replace the stored ones.

Example:
  trialgate fetch "major depressive disorder"
  trialgate fetch depression --intervention DRUG --limit 50
  trialgate fetch melanoma --append --out historical_trials.json`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchIntervention, "intervention", "", "intervention type or name filter")
	fetchCmd.Flags().StringVar(&fetchPhase, "phase", "", "keep only trials in this phase (e.g. \"Phase 3\")")
	fetchCmd.Flags().StringVar(&fetchStatus, "status", "", "overall statuses, comma-separated (default: COMPLETED,TERMINATED)")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 20, "maximum trials to fetch")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "write records to this corpus file instead of stdout")
	fetchCmd.Flags().BoolVar(&fetchAppend, "append", false, "merge into --out instead of overwriting")
	fetchCmd.Flags().BoolVar(&fetchNoCache, "no-cache", false, "disable the response cache (force fresh fetch)")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", time.Minute, "overall fetch timeout")
}

func runFetch(cmd *cobra.Command, args []string) error {
	condition := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	var responseCache cache.Cache
	if cfg.Cache.Enabled && !fetchNoCache {
		dir, err := cacheDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cache disabled: %v\n", err)
		} else {
			responseCache = cache.NewLayeredCache(cfg.Cache.DefaultTTL, dir, cfg.Registry.CacheTTL)
		}
	}

	client := registry.NewClient(cfg.Registry, responseCache)

	if verbose {
		fmt.Fprintf(os.Stderr, "Fetching: %s\n", condition)
		fmt.Fprintf(os.Stderr, "Registry: %s\n", cfg.Registry.BaseURL)
		fmt.Fprintln(os.Stderr)
	}

	trials, err := client.SearchTrials(ctx, registry.SearchParams{
		Condition:    condition,
		Intervention: fetchIntervention,
		Phase:        fetchPhase,
		Status:       fetchStatus,
		Limit:        fetchLimit,
	})
	if err != nil {
		return fmt.Errorf("fetch trials: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Fetched %d trials\n", len(trials))

	if fetchOut == "" {
		return printJSON(trials)
	}
	return writeCorpusFile(fetchOut, trials, fetchAppend)
}

// cacheDir returns the on-disk response cache directory.
func cacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return home + "/.trialgate/cache", nil
}

// corpusDocument mirrors the corpus file layout.
type corpusDocument struct {
	Trials          []model.TrialRecord    `json:"trials"`
	FailurePatterns map[string]interface{} `json:"failure_patterns,omitempty"`
}

// writeCorpusFile writes records as a corpus document. In append mode the
// existing file is loaded first and fetched records replace stored ones
// that share an NCT ID.
func writeCorpusFile(path string, trials []model.TrialRecord, appendMode bool) error {
	doc := corpusDocument{Trials: trials}

	if appendMode {
		data, err := os.ReadFile(path)
		if err == nil {
			var existing corpusDocument
			if err := json.Unmarshal(data, &existing); err != nil {
				return fmt.Errorf("existing corpus %s is invalid: %w", path, err)
			}
			byID := make(map[string]model.TrialRecord, len(trials))
			for _, t := range trials {
				if t.NCTID != "" {
					byID[t.NCTID] = t
				}
			}
			replaced := make(map[string]bool, len(byID))
			merged := make([]model.TrialRecord, 0, len(existing.Trials)+len(trials))
			for _, t := range existing.Trials {
				if r, ok := byID[t.NCTID]; ok {
					merged = append(merged, r)
					replaced[t.NCTID] = true
					continue
				}
				merged = append(merged, t)
			}
			for _, t := range trials {
				if t.NCTID != "" && replaced[t.NCTID] {
					continue
				}
				merged = append(merged, t)
			}
			doc.Trials = merged
			doc.FailurePatterns = existing.FailurePatterns
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("read existing corpus: %w", err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Wrote %d trials to %s\n", len(doc.Trials), path)
	return nil
}
