package document

import (
	"time"

	"github.com/lucasvieira/inventory/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Description   string             `bson:"description"`
	Quantity      int                `bson:"quantity"`
	PurchasePrice int64              `bson:"purchase_price"`
	SalePrice     int64              `bson:"sale_price"`
	Active        bool               `bson:"active"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (doc ProductDocument) GetID() primitive.ObjectID {
	return doc.ID
}

func (doc *ProductDocument) ToDomain() *domain.Product {
	return &domain.Product{
		ID:            domain.ID(doc.ID.Hex()),
		Name:          doc.Name,
		Description:   doc.Description,
		Quantity:      doc.Quantity,
		PurchasePrice: domain.Amount(doc.PurchasePrice),
		SalePrice:     domain.Amount(doc.SalePrice),
		Active:        doc.Active,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

func ToProductDocument(p *domain.Product) *ProductDocument {
	doc := &ProductDocument{
		Name:          p.Name,
		Description:   p.Description,
		Quantity:      p.Quantity,
		PurchasePrice: int64(p.PurchasePrice),
		SalePrice:     int64(p.SalePrice),
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}

	if p.ID != "" {
		objectID, _ := primitive.ObjectIDFromHex(string(p.ID))
		doc.ID = objectID
	}

	return doc
}
