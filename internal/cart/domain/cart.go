package domain

import "github.com/shopspring/decimal"

// LineItem is one product-quantity pairing in the cart. Name, price and image
// are a snapshot taken when the product was first added; they are not refreshed
// if the catalog changes later. JSON field names define the persisted layout,
// so changing them breaks carts that are already stored.
type LineItem struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Cart is the ordered list of line items a visitor intends to purchase.
// Insertion order is preserved: new products append at the end. At most one
// line item exists per product id; the store's mutators enforce that.
type Cart struct {
	Items []LineItem
}

// Summary holds the aggregates derived from a cart at a given tax rate.
type Summary struct {
	ItemCount int
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
}

// ItemCount is the sum of quantities across all line items.
func (c Cart) ItemCount() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

// Subtotal is the sum of price x quantity over all line items.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Summarize computes all aggregates at once: subtotal, tax at the given rate,
// and their sum.
func (c Cart) Summarize(taxRate decimal.Decimal) Summary {
	subtotal := c.Subtotal()
	tax := subtotal.Mul(taxRate)
	return Summary{
		ItemCount: c.ItemCount(),
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     subtotal.Add(tax),
	}
}

// Find returns the index of the line item for the given product, or -1.
func (c Cart) Find(productID int) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
