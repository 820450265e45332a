// Package catalog exposes the product documents: storefront reads with a
// read-through cache, admin back-office writes, and the stock quantity the
// settlement flow decrements.
package catalog

import (
	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
)

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"` // cents
	ImageRef    string `json:"image"`
	Quantity    int64  `json:"quantity"` // units in stock
}

func (p Product) toDoc() docstore.Document {
	return docstore.Document{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"image":       p.ImageRef,
		"quantity":    p.Quantity,
	}
}

func productFromDoc(id string, doc docstore.Document) Product {
	return Product{
		ID:          id,
		Name:        doc.String("name"),
		Description: doc.String("description"),
		Price:       doc.Int64("price"),
		ImageRef:    doc.String("image"),
		Quantity:    doc.Int64("quantity"),
	}
}

func productPath(id string) string {
	return "products/" + id
}
