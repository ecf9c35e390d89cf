package providers

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/costwatch/costwatch/internal/domain/cost"
)

// FetchAWSDailyCosts retrieves daily cost totals from AWS Cost Explorer
// for the last days days. AWS Cost Explorer API is only accessible from
// us-east-1.
func FetchAWSDailyCosts(ctx context.Context, creds AWSCredentials, days int) ([]cost.Point, error) {
	var cfg aws.Config
	var err error

	// Cost Explorer is only available in us-east-1
	region := "us-east-1"

	if creds.AccessKeyID != "" && creds.SecretAccessKey != "" {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, "")),
		)
	} else {
		cfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	ceClient := costexplorer.NewFromConfig(cfg)

	now := time.Now().UTC()
	startDate := now.AddDate(0, 0, -days).Format("2006-01-02")
	endDate := now.Format("2006-01-02")

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(startDate),
			End:   aws.String(endDate),
		},
		Granularity: cetypes.GranularityDaily,
		Metrics:     []string{"UnblendedCost"},
	}

	result, err := ceClient.GetCostAndUsage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("AWS Cost Explorer API error: %w", err)
	}

	var points []cost.Point
	for _, resultByTime := range result.ResultsByTime {
		if resultByTime.TimePeriod == nil || resultByTime.TimePeriod.Start == nil {
			continue
		}
		costDate, err := time.Parse("2006-01-02", *resultByTime.TimePeriod.Start)
		if err != nil {
			continue
		}

		amount := 0.0
		if metric, ok := resultByTime.Total["UnblendedCost"]; ok && metric.Amount != nil {
			amount, _ = strconv.ParseFloat(*metric.Amount, 64)
		}

		points = append(points, cost.Point{Date: costDate, Cost: amount})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}
