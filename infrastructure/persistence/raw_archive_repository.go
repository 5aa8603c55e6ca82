package persistence

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"dev-pulse/domain/model"
	"dev-pulse/infrastructure/logger"
)

// RawArchiveRepository keeps the raw adapter payload per (connection, day)
// in MongoDB for debugging and replay. The client may be nil when Mongo is
// not configured; writes then become no-ops.
type RawArchiveRepository struct {
	mongoDb *mongo.Client
}

func NewRawArchiveRepository(mongoDb *mongo.Client) *RawArchiveRepository {
	return &RawArchiveRepository{mongoDb: mongoDb}
}

func (r *RawArchiveRepository) Store(ctx context.Context, connectionID int64, platform model.Platform, day string, payload []byte) error {
	if r.mongoDb == nil {
		logger.GetLogger().Debug("Mongo client is nil - skipping raw payload archive")
		return nil
	}
	collection := r.mongoDb.Database("dev_pulse").Collection("raw_payloads")
	filter := bson.D{
		{Key: "connection_id", Value: connectionID},
		{Key: "day", Value: day},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "connection_id", Value: connectionID},
		{Key: "platform", Value: string(platform)},
		{Key: "day", Value: day},
		{Key: "payload", Value: payload},
		{Key: "archived_at", Value: time.Now().UTC()},
	}}}
	_, err := collection.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while archiving raw payload")
	}
	return err
}
