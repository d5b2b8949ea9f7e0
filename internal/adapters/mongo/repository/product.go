package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lucasvieira/inventory/internal/adapters/mongo/document"
	"github.com/lucasvieira/inventory/internal/core/domain"
	"github.com/lucasvieira/inventory/internal/core/logger"
	"github.com/lucasvieira/inventory/internal/core/port"
	"github.com/lucasvieira/inventory/internal/core/serviceerrors"
)

type ProductRepository struct {
	*BaseRepository[document.ProductDocument]
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) port.ProductPort {
	repo := &ProductRepository{
		BaseRepository: NewBaseRepository[document.ProductDocument](db, "products"),
		collection:     db.Collection("products"),
	}

	if err := repo.createIndexes(context.Background()); err != nil {
		logger.Error(context.Background(), "failed to create indexes", err, map[string]any{
			"collection": "products",
		})
	}

	return repo
}

func (r *ProductRepository) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "active", Value: 1}},
			Options: options.Index().SetUnique(false),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID != "" {
		return errors.New("cannot create product with existing ID")
	}

	doc := document.ToProductDocument(product)
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return parseError(err)
	}

	product.ID = domain.ID(result.InsertedID.(primitive.ObjectID).Hex())
	product.CreatedAt = doc.CreatedAt
	product.UpdatedAt = doc.UpdatedAt

	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id domain.ID) (*domain.Product, error) {
	doc, err := r.FindByID(ctx, string(id))
	if err != nil {
		return nil, err
	}

	return doc.ToDomain(), nil
}

func (r *ProductRepository) GetAllActive(ctx context.Context) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	docs, err := r.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, err
	}

	products := make([]*domain.Product, len(docs))
	for i, doc := range docs {
		products[i] = doc.ToDomain()
	}

	return products, nil
}

func (r *ProductRepository) UpdateDetails(ctx context.Context, id domain.ID, patch domain.ProductPatch) (*domain.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return nil, parseError(err)
	}

	set := bson.M{"updated_at": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}

	return r.findOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
}

func (r *ProductRepository) SetActive(ctx context.Context, id domain.ID, active bool) (*domain.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return nil, parseError(err)
	}

	update := bson.M{"$set": bson.M{
		"active":     active,
		"updated_at": time.Now(),
	}}

	return r.findOneAndUpdate(ctx, bson.M{"_id": objectID}, update)
}

// SwapStockState only matches when the stored stock state is still exactly
// the one the caller read. A concurrent transaction that committed first
// changes one of the filtered fields, so this update matches nothing and the
// caller gets a conflict to retry on.
func (r *ProductRepository) SwapStockState(ctx context.Context, id domain.ID, expected, next domain.StockState) error {
	objectID, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return parseError(err)
	}

	filter := bson.M{
		"_id":            objectID,
		"active":         true,
		"quantity":       expected.Quantity,
		"purchase_price": int64(expected.PurchasePrice),
		"sale_price":     int64(expected.SalePrice),
	}
	update := bson.M{"$set": bson.M{
		"quantity":       next.Quantity,
		"purchase_price": int64(next.PurchasePrice),
		"sale_price":     int64(next.SalePrice),
		"updated_at":     time.Now(),
	}}

	result := r.collection.FindOneAndUpdate(ctx, filter, update)
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return serviceerrors.NewConflictError("product stock state changed concurrently")
		}
		return result.Err()
	}

	return nil
}

func (r *ProductRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc document.ProductDocument
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, parseError(err)
	}

	return doc.ToDomain(), nil
}
