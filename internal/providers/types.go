// Package providers loads daily cost series from cloud billing APIs,
// local files, or a deterministic sample generator.
package providers

// AWSCredentials holds AWS API credentials
type AWSCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// AzureCredentials holds Azure service principal credentials
type AzureCredentials struct {
	TenantID       string
	ClientID       string
	ClientSecret   string
	SubscriptionID string
}

// GCPBillingCredentials holds credentials for GCP billing data access via BigQuery.
type GCPBillingCredentials struct {
	ProjectID          string
	ServiceAccountJSON string
	BillingDataset     string // e.g. "my_project.my_billing_dataset.gcp_billing_export_v1_XXXXXX"
}
