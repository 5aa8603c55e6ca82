package events

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewPubsubClient connects to Google Pub/Sub. An empty project id means
// the broker is not configured; the caller keeps a nil client.
func NewPubsubClient(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, nil
	}
	return pubsub.NewClient(ctx, projectID)
}

// NewServiceBusClient connects to Azure Service Bus using the default
// credential chain. An empty namespace means not configured.
func NewServiceBusClient(namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, nil
	}
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	return azservicebus.NewClient(namespace, credential, nil)
}
