package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mpetrov/trialgate/internal/model"
	"github.com/mpetrov/trialgate/internal/pipeline"
	"github.com/mpetrov/trialgate/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	outJSON       string
	outMD         string
	assessTimeout time.Duration
	corpusPath    string
	topK          int
	noFooter      bool
	noSave        bool
	storageDir    string
	llmEnabled    bool
	llmProvider   string
	llmModel      string
)

// assessCmd represents the assess command
var assessCmd = &cobra.Command{
	Use:   "assess <protocol.json>",
	Short: "Assess a single protocol and generate a risk report",
	Long: `Assess analyzes one trial protocol to:
- Find the most similar historical trials in the corpus
- Compare the protocol design against the closest match
- Score historical precedent, safety alignment, and design completeness
- Rank recommendations by impact and feasibility

Example:
  trialgate assess protocol.json
  trialgate assess protocol.json --json report.json --md report.md
  trialgate assess protocol.json --llm --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAssess,
}

func init() {
	rootCmd.AddCommand(assessCmd)

	// Output flags
	assessCmd.Flags().StringVar(&outJSON, "json", "assessment.json", "output JSON path")
	assessCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	assessCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Corpus and search flags
	assessCmd.Flags().StringVar(&corpusPath, "corpus", "", "historical trials corpus path (default from config)")
	assessCmd.Flags().IntVar(&topK, "top-k", 0, "number of similar trials to match (default from config)")
	assessCmd.Flags().DurationVar(&assessTimeout, "timeout", 2*time.Minute, "overall assessment timeout")

	// History flags
	assessCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the assessment to history")
	assessCmd.Flags().StringVar(&storageDir, "storage-dir", "", "assessment history directory (default: $HOME/.trialgate/assessments)")

	// LLM flags
	assessCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM findings generation")
	assessCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai)")
	assessCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runAssess(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), assessTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Output.IncludeFooter = !noFooter
	if corpusPath != "" {
		cfg.Corpus.Path = corpusPath
	}
	if topK > 0 {
		cfg.Search.TopK = topK
	}

	// Configure LLM if enabled
	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		if llmProvider == "openai" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Assessing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Corpus: %s\n", cfg.Corpus.Path)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", assessTimeout)
		fmt.Fprintln(os.Stderr)
	}

	// Create pipeline
	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Loaded corpus: %d trials\n", p.CorpusSize())
	}

	assessment, err := p.AssessFile(ctx, path)
	if err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Matched %d similar trials\n", len(assessment.SimilarTrials))
		fmt.Fprintf(os.Stderr, "✓ Generated %d findings\n", len(assessment.Findings))
		fmt.Fprintf(os.Stderr, "✓ Overall risk: %.1f/100 (%s)\n", assessment.Risk.OverallScore, assessment.Risk.RiskLevel)
		if assessment.LLM != nil && assessment.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Narrative findings via %s/%s\n", assessment.LLM.Provider, assessment.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	// Persist to history unless disabled
	if !noSave {
		dir, err := resolveStorageDir(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: history disabled: %v\n", err)
		} else {
			s, err := store.Open(dir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: history disabled: %v\n", err)
			} else if err := s.Save(assessment); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save assessment: %v\n", err)
			} else if verbose {
				fmt.Fprintf(os.Stderr, "✓ Saved assessment %s\n", assessment.ID)
			}
		}
	}

	// Render outputs
	if err := p.RenderReport(assessment, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// buildConfig layers the config file and environment over the defaults.
// The config file uses the same yaml keys the structs declare.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	cfg.Output.Verbose = verbose
	return cfg, nil
}

// resolveStorageDir picks the assessment history directory: flag, then
// config, then the default under the home directory.
func resolveStorageDir(cfg *model.Config) (string, error) {
	if storageDir != "" {
		return storageDir, nil
	}
	if cfg.Storage.Dir != "" {
		return cfg.Storage.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return home + "/.trialgate/assessments", nil
}
