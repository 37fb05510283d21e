package historyRepo

import (
	"context"
	"fmt"
	"time"

	"servicedesk/apperrors"
	"servicedesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHistoryRepo implements HistoryRepository using MongoDB.
type MongoHistoryRepo struct {
	coll *mongo.Collection
}

// NewMongoHistoryRepo creates the repository over the order_history collection
// of db and makes sure its indexes exist.
func NewMongoHistoryRepo(db *mongo.Database) (*MongoHistoryRepo, error) {
	repo := &MongoHistoryRepo{coll: db.Collection("order_history")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

// newContext creates a context with the given timeout.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (r *MongoHistoryRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create history indexes: %w", err)
	}
	return nil
}

func (r *MongoHistoryRepo) Record(ctx context.Context, entry models.StatusChange) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return apperrors.NewUpstreamError("failed to record status change", err)
	}
	return nil
}

func (r *MongoHistoryRepo) ListByOrder(ctx context.Context, orderID string) ([]models.StatusChange, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "version", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, apperrors.NewUpstreamError("failed to query order history", err)
	}
	defer cursor.Close(ctx)

	var entries []models.StatusChange
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, apperrors.NewUpstreamError("failed to decode order history", err)
	}
	return entries, nil
}
