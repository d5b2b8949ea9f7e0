package document

import (
	"time"

	"github.com/lucasvieira/inventory/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OperationDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ProductID primitive.ObjectID `bson:"product_id"`
	Kind      string             `bson:"kind"`
	Quantity  int                `bson:"quantity"`
	UnitPrice int64              `bson:"unit_price"`
	Total     int64              `bson:"total"`
	Timestamp time.Time          `bson:"timestamp"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (doc OperationDocument) GetID() primitive.ObjectID {
	return doc.ID
}

func (doc *OperationDocument) ToDomain() *domain.Operation {
	return &domain.Operation{
		ID:        domain.ID(doc.ID.Hex()),
		ProductID: domain.ID(doc.ProductID.Hex()),
		Kind:      domain.OperationKind(doc.Kind),
		Quantity:  doc.Quantity,
		UnitPrice: domain.Amount(doc.UnitPrice),
		Total:     domain.Amount(doc.Total),
		Timestamp: doc.Timestamp,
		CreatedAt: doc.CreatedAt,
	}
}

func ToOperationDocument(op *domain.Operation) *OperationDocument {
	doc := &OperationDocument{
		Kind:      string(op.Kind),
		Quantity:  op.Quantity,
		UnitPrice: int64(op.UnitPrice),
		Total:     int64(op.Total),
		Timestamp: op.Timestamp,
		CreatedAt: op.CreatedAt,
	}

	if op.ID != "" {
		objectID, _ := primitive.ObjectIDFromHex(string(op.ID))
		doc.ID = objectID
	}

	if op.ProductID != "" {
		productID, _ := primitive.ObjectIDFromHex(string(op.ProductID))
		doc.ProductID = productID
	}

	return doc
}
