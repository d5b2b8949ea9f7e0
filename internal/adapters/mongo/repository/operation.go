package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lucasvieira/inventory/internal/adapters/mongo/document"
	"github.com/lucasvieira/inventory/internal/adapters/outbox"
	"github.com/lucasvieira/inventory/internal/core/domain"
	"github.com/lucasvieira/inventory/internal/core/logger"
	"github.com/lucasvieira/inventory/internal/core/port"
)

type OperationRepository struct {
	*BaseRepository[document.OperationDocument]
	collection *mongo.Collection
	outbox     outbox.Repository
}

func NewOperationRepository(db *mongo.Database, outbox outbox.Repository) port.OperationPort {
	repo := &OperationRepository{
		BaseRepository: NewBaseRepository[document.OperationDocument](db, "operations"),
		collection:     db.Collection("operations"),
		outbox:         outbox,
	}

	if err := repo.createIndexes(context.Background()); err != nil {
		logger.Error(context.Background(), "failed to create indexes", err, map[string]any{
			"collection": "operations",
		})
	}

	return repo
}

func (r *OperationRepository) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "product_id", Value: 1},
				{Key: "timestamp", Value: 1},
			},
			Options: options.Index().SetUnique(false),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// AppendWithOutbox expects ctx to carry the caller's transaction session, so
// the operation record and outbox entries commit with the product update.
func (r *OperationRepository) AppendWithOutbox(ctx context.Context, operation *domain.Operation, events ...domain.Event) error {
	if operation.ID != "" {
		return errors.New("cannot append operation with existing ID")
	}

	doc := document.ToOperationDocument(operation)
	doc.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return parseError(err)
	}

	operation.ID = domain.ID(result.InsertedID.(primitive.ObjectID).Hex())
	operation.CreatedAt = doc.CreatedAt

	for _, event := range events {
		eventData, err := json.Marshal(event)
		if err != nil {
			return err
		}

		entry := outbox.Entry{
			EventName:  event.GetName(),
			EntityName: event.GetEntityName(),
			EventData:  eventData,
		}
		if err := r.outbox.Insert(ctx, entry); err != nil {
			return err
		}
	}

	return nil
}

func (r *OperationRepository) ListByProduct(ctx context.Context, productID domain.ID) ([]*domain.Operation, error) {
	objectID, err := primitive.ObjectIDFromHex(string(productID))
	if err != nil {
		return nil, parseError(err)
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "timestamp", Value: 1},
		{Key: "created_at", Value: 1},
	})

	docs, err := r.Find(ctx, bson.M{"product_id": objectID}, opts)
	if err != nil {
		return nil, err
	}

	operations := make([]*domain.Operation, len(docs))
	for i, doc := range docs {
		operations[i] = doc.ToDomain()
	}

	return operations, nil
}
