package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
)

func newReportCmd() *cobra.Command {
	var (
		providerName string
		method       string
		severity     string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show persisted anomalies from past detection runs",
		Example: `  costwatch report
  costwatch report --provider aws --severity high
  costwatch report -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			anomalies, err := env.db.List(cmd.Context(), anomaly.Filter{
				Provider: providerName,
				Method:   method,
				Severity: severity,
			})
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(anomalies)
			}

			if len(anomalies) == 0 {
				fmt.Println("No persisted anomalies. Run 'costwatch detect' first.")
				return nil
			}

			counts, err := env.db.CountBySeverity(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Anomalies: %d (high=%d medium=%d low=%d)\n\n",
				len(anomalies),
				counts[anomaly.SeverityHigh],
				counts[anomaly.SeverityMedium],
				counts[anomaly.SeverityLow])

			table := NewTable("PROVIDER", "DATE", "COST", "METHOD", "SEVERITY")
			for _, a := range anomalies {
				table.AddRow(
					a.Provider,
					a.Date.Format("2006-01-02"),
					fmt.Sprintf("%.2f", a.ObservedCost),
					string(a.Method),
					formatSeverity(string(a.Severity)),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "filter by provider")
	cmd.Flags().StringVar(&method, "method", "", "filter by detection method")
	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity: low, medium, high")

	return cmd
}
