package ledger

import "fmt"

// ValidationError reports a missing or malformed input field. The operation
// that returned it has not touched either table.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProductNotFoundError reports a sale against a product id that is not in
// the inventory table.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %q not found", e.ProductID)
}

// InsufficientStockError reports a sale quantity larger than the current
// stock level.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// IndexOutOfRangeError reports a sale deletion with a position that does not
// exist in the current sales table.
type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("sale index %d out of range (table has %d rows)", e.Index, e.Length)
}
