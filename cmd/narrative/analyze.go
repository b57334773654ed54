package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/narrative/internal/api"
	"github.com/jackzampolin/narrative/internal/config"
	"github.com/jackzampolin/narrative/internal/decoder"
	"github.com/jackzampolin/narrative/internal/layout"
	"github.com/jackzampolin/narrative/internal/tokenizer"
)

// AnalyzeSummary is what `narrative analyze` prints, without requiring a
// running server: the page and token counts that POST /api/narrative/analyze
// also reports, plus block count, the scholarly flag, the references hard
// stop and, with --text, the flattened text. It carries no doc or job ID.
type AnalyzeSummary struct {
	PageCount          int    `json:"page_count" yaml:"page_count"`
	TokenCount         int    `json:"token_count" yaml:"token_count"`
	BlockCount         int    `json:"block_count" yaml:"block_count"`
	IsLikelyScholarly  bool   `json:"is_likely_scholarly" yaml:"is_likely_scholarly"`
	ReferencesHardStop int    `json:"references_hard_stop_token_index" yaml:"references_hard_stop_token_index"`
	FullText           string `json:"full_text,omitempty" yaml:"full_text,omitempty"`
}

var (
	analyzeFixture   string
	analyzeMaxPages  int
	analyzePrintText bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <pdf>",
	Short: "Run the narrative pipeline over a single document",
	Long: `Analyze runs the full layout pipeline over a PDF (or, with --fixture,
a JSON text-position fixture) and prints a summary of the resulting
narrative index.

Examples:
  narrative analyze paper.pdf
  narrative analyze --fixture testdata/two_column.json
  narrative analyze paper.pdf --text`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var ps layout.PageSource
		switch {
		case analyzeFixture != "":
			doc, err := decoder.LoadFixture(analyzeFixture)
			if err != nil {
				return err
			}
			ps = decoder.NewFixtureDecoder(doc)
		case len(args) == 1:
			pdf, err := decoder.OpenPDF(args[0])
			if err != nil {
				return err
			}
			ps = pdf
		default:
			return fmt.Errorf("provide a PDF path or --fixture")
		}

		cfg := config.DefaultConfig().LayoutConfig()
		if analyzeMaxPages > 0 {
			cfg.MaxPages = analyzeMaxPages
		}

		idx, err := layout.Analyze(ctx, ps, tokenizer.NewWordTokenizer(), cfg)
		if err != nil {
			return err
		}

		summary := AnalyzeSummary{
			PageCount:          len(idx.Pages),
			TokenCount:         len(idx.Tokens),
			BlockCount:         countAnalyzeBlocks(idx),
			IsLikelyScholarly:  idx.IsLikelyScholarly,
			ReferencesHardStop: idx.ReferencesHardStopTokenIndex,
		}
		if analyzePrintText {
			summary.FullText = strings.TrimSpace(idx.FullText)
		}

		return api.Output(summary)
	},
}

func countAnalyzeBlocks(idx *layout.NarrativeIndex) int {
	n := 0
	for _, p := range idx.Pages {
		n += len(p.Blocks)
	}
	return n
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFixture, "fixture", "", "path to a JSON text-position fixture instead of a PDF")
	analyzeCmd.Flags().IntVar(&analyzeMaxPages, "max-pages", 0, "override the configured page cap (0 = use config default)")
	analyzeCmd.Flags().BoolVar(&analyzePrintText, "text", false, "include the flattened narrative text in the output")

	rootCmd.AddCommand(analyzeCmd)
}
