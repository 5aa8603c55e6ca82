package events

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"dev-pulse/domain/model"
	"dev-pulse/infrastructure/logger"
)

// SyncCompletedEvent is emitted after a connection finishes a sync,
// successfully or not. Downstream consumers (notifications, analytics)
// subscribe to these.
type SyncCompletedEvent struct {
	UserID       int64          `json:"user_id"`
	ConnectionID int64          `json:"connection_id"`
	Platform     model.Platform `json:"platform"`
	Success      bool           `json:"success"`
	Error        string         `json:"error,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

type ISyncEventPublisher interface {
	PublishSyncCompleted(ctx context.Context, event *SyncCompletedEvent)
}

// Publisher fans the event out to whichever brokers are configured.
// Either client may be nil; publishing is best-effort and never blocks
// the sync result.
type Publisher struct {
	pubsubClient     *pubsub.Client
	pubsubTopic      string
	serviceBusClient *azservicebus.Client
	serviceBusQueue  string
}

func NewPublisher(pubsubClient *pubsub.Client, pubsubTopic string, serviceBusClient *azservicebus.Client, serviceBusQueue string) ISyncEventPublisher {
	return &Publisher{
		pubsubClient:     pubsubClient,
		pubsubTopic:      pubsubTopic,
		serviceBusClient: serviceBusClient,
		serviceBusQueue:  serviceBusQueue,
	}
}

func (p *Publisher) PublishSyncCompleted(ctx context.Context, event *SyncCompletedEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while encoding sync event")
		return
	}
	p.publishPubsub(ctx, payload)
	p.publishServiceBus(payload)
}

func (p *Publisher) publishPubsub(ctx context.Context, payload []byte) {
	if p.pubsubClient == nil || p.pubsubTopic == "" {
		return
	}
	topic := p.pubsubClient.Topic(p.pubsubTopic)
	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while publishing sync event to pubsub")
		return
	}
	logger.GetLogger().WithField("server ID", serverID).Debug("Sync event published")
}

func (p *Publisher) publishServiceBus(payload []byte) {
	if p.serviceBusClient == nil || p.serviceBusQueue == "" {
		return
	}
	sender, err := p.serviceBusClient.NewSender(p.serviceBusQueue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender, context.Background())

	if err := sender.SendMessage(context.Background(), &azservicebus.Message{Body: payload}, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
	}
}
