package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mpetrov/trialgate/internal/corpus"
	"github.com/mpetrov/trialgate/internal/search"
	"github.com/spf13/cobra"
)

var (
	searchArea       string
	searchPhase      string
	searchAge        string
	searchOutcome    string
	searchLimit      int
	searchSimilarity bool
	searchJSONOut    bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <drug-class>",
	Short: "Search the historical trial corpus",
	Long: `Search the corpus of historical trials.

By default this is a flat filter scan: drug class matches by substring,
with optional area, phase, and outcome filters. With --similar the
multi-stage similarity search runs instead and results carry scores.

Example:
  trialgate search SSRI --area depression
  trialgate search "checkpoint inhibitor" --outcome failed --limit 10
  trialgate search SSRI --similar --phase "Phase 3" --age 18-65`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchArea, "area", "", "therapeutic area filter")
	searchCmd.Flags().StringVar(&searchPhase, "phase", "", "trial phase filter (e.g. \"Phase 3\")")
	searchCmd.Flags().StringVar(&searchAge, "age", "", "population age range for similarity scoring (e.g. 18-65)")
	searchCmd.Flags().StringVar(&searchOutcome, "outcome", "all", "outcome filter (success, failed, terminated, all)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", search.DefaultTopK, "maximum results")
	searchCmd.Flags().BoolVar(&searchSimilarity, "similar", false, "use similarity search instead of filtering")
	searchCmd.Flags().BoolVar(&searchJSONOut, "json-output", false, "print results as JSON")
	searchCmd.Flags().StringVar(&corpusPath, "corpus", "", "historical trials corpus path (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	drugClass := args[0]

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if corpusPath != "" {
		cfg.Corpus.Path = corpusPath
	}

	c, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	searcher := search.NewSearcher(corpus.NewStore(c.Trials))

	if searchSimilarity {
		matches := searcher.Search(search.Query{
			DrugClass:       drugClass,
			TherapeuticArea: searchArea,
			Phase:           searchPhase,
			PopulationAge:   searchAge,
			TopK:            searchLimit,
		})

		if searchJSONOut {
			return printJSON(matches)
		}
		if len(matches) == 0 {
			fmt.Println("No similar trials found.")
			return nil
		}
		for i, m := range matches {
			fmt.Printf("%d. [%.2f] %s %s (%s, %s) — %s\n",
				i+1, m.SimilarityScore, m.NCTID, m.TrialName, m.Phase, m.DrugClass, m.Outcome)
		}
		return nil
	}

	results := searcher.Filter(search.FilterQuery{
		DrugClass:       drugClass,
		TherapeuticArea: searchArea,
		Phase:           searchPhase,
		Outcome:         searchOutcome,
		Limit:           searchLimit,
	})

	if searchJSONOut {
		return printJSON(results)
	}
	if len(results) == 0 {
		fmt.Println("No trials matched.")
		return nil
	}
	for i, t := range results {
		fmt.Printf("%d. %s %s (%s, %s) — %s\n",
			i+1, t.NCTID, t.TrialName, t.Phase, t.DrugClass, t.Outcome)
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
