package providers

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/costwatch/costwatch/internal/domain/cost"
)

// FetchGCPDailyCosts retrieves daily cost totals from a GCP BigQuery
// billing export table for the last days days.
func FetchGCPDailyCosts(ctx context.Context, creds GCPBillingCredentials, days int) ([]cost.Point, error) {
	if creds.BillingDataset == "" {
		return nil, nil // No billing dataset configured, skip gracefully
	}

	var opts []option.ClientOption
	if creds.ServiceAccountJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds.ServiceAccountJSON)))
	}

	client, err := bigquery.NewClient(ctx, creds.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}
	defer client.Close()

	startDate := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")

	query := client.Query(fmt.Sprintf(`
		SELECT
			DATE(usage_start_time) AS cost_date,
			SUM(cost) AS daily_cost
		FROM %s
		WHERE DATE(usage_start_time) >= @start_date
		GROUP BY cost_date
		ORDER BY cost_date ASC
	`, fmt.Sprintf("`%s`", creds.BillingDataset)))

	query.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: startDate},
	}

	it, err := query.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("BigQuery query error: %w", err)
	}

	var points []cost.Point
	for {
		var row struct {
			CostDate  bigquery.NullDate `bigquery:"cost_date"`
			DailyCost float64           `bigquery:"daily_cost"`
		}

		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("BigQuery row read error: %w", err)
		}

		costDate := time.Date(
			row.CostDate.Date.Year, row.CostDate.Date.Month, row.CostDate.Date.Day,
			0, 0, 0, 0, time.UTC,
		)

		points = append(points, cost.Point{Date: costDate, Cost: row.DailyCost})
	}

	return points, nil
}
