package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/report"
)

func newDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [provider]",
		Short: "Run anomaly detection",
		Long: `Run all detection methods against the ingested cost series.

With a provider argument only that provider is analyzed; without one
every ingested provider is. Findings are persisted and replace the
provider's previous run.`,
		Example: `  costwatch detect
  costwatch detect aws
  costwatch detect aws -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			if len(args) == 1 {
				result, err := env.anomalies.Detect(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return renderResult(result)
			}

			results, err := env.anomalies.DetectAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No cost series ingested. Run 'costwatch ingest' first.")
				return nil
			}
			return renderResults(results)
		},
	}
	return cmd
}

func renderResult(result *anomaly.DetectionResult) error {
	if getOutputFormat() != "table" {
		return printOutput(result)
	}
	return report.RenderText(os.Stdout, result)
}

func renderResults(results map[string]*anomaly.DetectionResult) error {
	if getOutputFormat() != "table" {
		return printOutput(results)
	}
	return report.RenderTextAll(os.Stdout, results)
}
