// Package cart owns the in-memory mirror of a user's shopping cart and its
// synchronization with the remote document store. Updates are optimistic:
// memory changes first, the remote write follows, and a remote failure is
// reported but never rolled back (last-writer-wins, no compensation).
package cart

import (
	"fmt"

	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
)

// Line is one product-quantity pairing within a cart. A line exists only
// while Quantity > 0; dropping to zero deletes it rather than storing zero.
type Line struct {
	ProductID string
	Name      string
	UnitPrice int64 // cents
	Quantity  int
	ImageRef  string
}

// Subtotal is the line's contribution to the cart total, in cents.
func (l Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

func (l Line) toDoc() docstore.Document {
	return docstore.Document{
		"product_id": l.ProductID,
		"name":       l.Name,
		"unit_price": l.UnitPrice,
		"quantity":   int64(l.Quantity),
		"image":      l.ImageRef,
	}
}

func lineFromDoc(productID string, doc docstore.Document) Line {
	return Line{
		ProductID: productID,
		Name:      doc.String("name"),
		UnitPrice: doc.Int64("unit_price"),
		Quantity:  int(doc.Int64("quantity")),
		ImageRef:  doc.String("image"),
	}
}

// linesCollection is the per-user remote mirror, one document per line.
func linesCollection(uid string) string {
	return fmt.Sprintf("carts/%s/lines", uid)
}

func linePath(uid, productID string) string {
	return fmt.Sprintf("carts/%s/lines/%s", uid, productID)
}
