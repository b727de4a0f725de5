package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a row in the inventory table. ProductID is the unique key and
// is assigned by the operator, not generated.
type Product struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Category  string          `json:"category"`
}

// SaleRecord is a row in the sales table. ProductName and TotalPrice are
// snapshots taken at sale time; renaming or repricing the product later does
// not touch recorded sales.
type SaleRecord struct {
	Timestamp    time.Time       `json:"timestamp"`
	CustomerName string          `json:"customer_name"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// ProductRevenue is one group of the sales-by-product report: all sales that
// share a snapshotted product name, with their total prices summed.
type ProductRevenue struct {
	ProductName string          `json:"product_name"`
	Revenue     decimal.Decimal `json:"revenue"`
}
