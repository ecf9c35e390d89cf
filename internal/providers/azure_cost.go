package providers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"

	"github.com/costwatch/costwatch/internal/domain/cost"
)

// FetchAzureDailyCosts retrieves daily cost totals from Azure Cost
// Management for the last days days.
func FetchAzureDailyCosts(ctx context.Context, creds AzureCredentials, days int) ([]cost.Point, error) {
	credential, err := azidentity.NewClientSecretCredential(creds.TenantID, creds.ClientID, creds.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := armcostmanagement.NewQueryClient(credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client: %w", err)
	}

	now := time.Now().UTC()
	startDate := now.AddDate(0, 0, -days)

	scope := fmt.Sprintf("subscriptions/%s", creds.SubscriptionID)

	timePeriod := armcostmanagement.QueryTimePeriod{
		From: &startDate,
		To:   &now,
	}

	sumFunc := armcostmanagement.FunctionTypeSum
	queryAggregation := map[string]*armcostmanagement.QueryAggregation{
		"PreTaxCost": {
			Name:     ptrStr("PreTaxCost"),
			Function: &sumFunc,
		},
	}

	granularity := armcostmanagement.GranularityTypeDaily
	timeframeCustom := armcostmanagement.TimeframeTypeCustom
	exportTypeUsage := armcostmanagement.ExportTypeActualCost

	queryDef := armcostmanagement.QueryDefinition{
		Type:       &exportTypeUsage,
		Timeframe:  &timeframeCustom,
		TimePeriod: &timePeriod,
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: &granularity,
			Aggregation: queryAggregation,
		},
	}

	result, err := client.Usage(ctx, scope, queryDef, nil)
	if err != nil {
		return nil, fmt.Errorf("Azure Cost Management API error: %w", err)
	}

	if result.Properties == nil || result.Properties.Rows == nil {
		return nil, nil
	}

	// Build column index mapping
	colIndex := make(map[string]int)
	if result.Properties.Columns != nil {
		for i, col := range result.Properties.Columns {
			if col.Name != nil {
				colIndex[*col.Name] = i
			}
		}
	}

	costIdx, hasCost := colIndex["PreTaxCost"]
	dateIdx, hasDate := colIndex["UsageDateKey"]
	if !hasDate {
		dateIdx, hasDate = colIndex["UsageDate"]
	}

	var points []cost.Point
	for _, row := range result.Properties.Rows {
		if len(row) == 0 {
			continue
		}

		var dailyCost float64
		if hasCost && costIdx < len(row) {
			if v, ok := row[costIdx].(float64); ok {
				dailyCost = v
			}
		}

		var costDate time.Time
		if hasDate && dateIdx < len(row) {
			switch v := row[dateIdx].(type) {
			case float64:
				// Azure returns date as YYYYMMDD integer
				dateInt := int(v)
				year := dateInt / 10000
				month := (dateInt % 10000) / 100
				day := dateInt % 100
				costDate = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			case string:
				costDate, _ = time.Parse("2006-01-02", v)
			}
		}

		if costDate.IsZero() {
			continue
		}

		points = append(points, cost.Point{Date: costDate, Cost: dailyCost})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func ptrStr(s string) *string {
	return &s
}
