// Package orders persists committed orders. An order is written once at
// settlement and never mutated; per-user history is append-only.
package orders

import (
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/cart"
	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
)

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentCash
}

// Order is the immutable settlement record. Lines are snapshots copied out
// of the cart at checkout time, not live references.
type Order struct {
	ID            string
	UserID        string
	Email         string
	CreatedAt     time.Time
	Lines         []cart.Line
	Subtotal      int64
	Commission    int64
	Total         int64
	PaymentMethod PaymentMethod
}

func (o Order) toDoc() docstore.Document {
	lines := make([]any, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = docstore.Document{
			"product_id": l.ProductID,
			"name":       l.Name,
			"unit_price": l.UnitPrice,
			"quantity":   int64(l.Quantity),
			"image":      l.ImageRef,
		}
	}
	return docstore.Document{
		"user_id":        o.UserID,
		"email":          o.Email,
		"created_at":     o.CreatedAt,
		"lines":          lines,
		"subtotal":       o.Subtotal,
		"commission":     o.Commission,
		"total":          o.Total,
		"payment_method": string(o.PaymentMethod),
	}
}

func orderFromDoc(id string, doc docstore.Document) Order {
	o := Order{
		ID:            id,
		UserID:        doc.String("user_id"),
		Email:         doc.String("email"),
		CreatedAt:     doc.Time("created_at"),
		Subtotal:      doc.Int64("subtotal"),
		Commission:    doc.Int64("commission"),
		Total:         doc.Int64("total"),
		PaymentMethod: PaymentMethod(doc.String("payment_method")),
	}

	rawLines, _ := doc["lines"].([]any)
	for _, raw := range rawLines {
		ld, ok := raw.(docstore.Document)
		if !ok {
			if m, isMap := raw.(map[string]any); isMap {
				ld = docstore.Document(m)
			} else {
				continue
			}
		}
		o.Lines = append(o.Lines, cart.Line{
			ProductID: ld.String("product_id"),
			Name:      ld.String("name"),
			UnitPrice: ld.Int64("unit_price"),
			Quantity:  int(ld.Int64("quantity")),
			ImageRef:  ld.String("image"),
		})
	}
	return o
}
