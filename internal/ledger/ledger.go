package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Store is the persistence collaborator. Load is called once at startup,
// Save after every mutation. A Save error means the durable copy may not
// match memory, so the ledger rolls the in-memory mutation back before
// returning it.
type Store interface {
	Load(ctx context.Context) ([]Product, []SaleRecord, error)
	Save(ctx context.Context, products []Product, sales []SaleRecord) error
}

// Ledger owns the inventory and sales tables and keeps them mutually
// consistent. Every operation runs under one mutex spanning validate,
// mutate and persist, so two sales can never race past the stock check.
type Ledger struct {
	mu       sync.Mutex
	store    Store
	products []Product
	sales    []SaleRecord

	now func() time.Time
}

// New loads both tables from the store. A store with no prior state must
// return empty tables, not an error.
func New(ctx context.Context, store Store) (*Ledger, error) {
	products, sales, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger tables: %w", err)
	}
	return &Ledger{
		store:    store,
		products: products,
		sales:    sales,
		now:      time.Now,
	}, nil
}

// UpsertProduct inserts a new product or fully overwrites the existing row
// with the same id. A quantity of 0 on an existing product wipes its stock.
func (l *Ledger) UpsertProduct(ctx context.Context, productID, name string, price decimal.Decimal, quantity int, category string) (Product, error) {
	productID = strings.TrimSpace(productID)
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)

	if productID == "" {
		return Product{}, &ValidationError{Field: "product_id", Reason: "must not be empty"}
	}
	if name == "" {
		return Product{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if price.IsNegative() {
		return Product{}, &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if quantity < 0 {
		return Product{}, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}

	product := Product{
		ProductID: productID,
		Name:      name,
		Price:     price,
		Quantity:  quantity,
		Category:  category,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.findProduct(productID)
	if idx >= 0 {
		previous := l.products[idx]
		l.products[idx] = product
		if err := l.persist(ctx); err != nil {
			l.products[idx] = previous
			return Product{}, err
		}
		return product, nil
	}

	l.products = append(l.products, product)
	if err := l.persist(ctx); err != nil {
		l.products = l.products[:len(l.products)-1]
		return Product{}, err
	}
	return product, nil
}

// RecordSale appends a sale and decrements the product's stock in one
// logical transaction. The sale snapshots the product's current name and
// price; selling exactly the remaining stock is allowed and drains it to 0.
func (l *Ledger) RecordSale(ctx context.Context, customerName, productID string, quantitySold int) (SaleRecord, error) {
	customerName = strings.TrimSpace(customerName)
	productID = strings.TrimSpace(productID)

	if customerName == "" {
		return SaleRecord{}, &ValidationError{Field: "customer_name", Reason: "must not be empty"}
	}
	if productID == "" {
		return SaleRecord{}, &ValidationError{Field: "product_id", Reason: "must not be empty"}
	}
	if quantitySold <= 0 {
		return SaleRecord{}, &ValidationError{Field: "quantity_sold", Reason: "must be positive"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.findProduct(productID)
	if idx < 0 {
		return SaleRecord{}, &ProductNotFoundError{ProductID: productID}
	}
	product := &l.products[idx]

	if quantitySold > product.Quantity {
		return SaleRecord{}, &InsufficientStockError{
			ProductID: productID,
			Requested: quantitySold,
			Available: product.Quantity,
		}
	}

	sale := SaleRecord{
		Timestamp:    l.now().Truncate(time.Second),
		CustomerName: customerName,
		ProductID:    product.ProductID,
		ProductName:  product.Name,
		QuantitySold: quantitySold,
		TotalPrice:   product.Price.Mul(decimal.NewFromInt(int64(quantitySold))),
	}

	previousQuantity := product.Quantity
	product.Quantity -= quantitySold
	l.sales = append(l.sales, sale)

	if err := l.persist(ctx); err != nil {
		product.Quantity = previousQuantity
		l.sales = l.sales[:len(l.sales)-1]
		return SaleRecord{}, err
	}
	return sale, nil
}

// DeleteSale removes the sale at the given position (0-based, insertion
// order) and restores its quantity onto the referenced product. Later rows
// shift down by one. If the product no longer exists the stock restoration
// is skipped; only the quantity effect is reversed, never the historical
// price or name.
func (l *Ledger) DeleteSale(ctx context.Context, index int) (SaleRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.sales) {
		return SaleRecord{}, &IndexOutOfRangeError{Index: index, Length: len(l.sales)}
	}

	removed := l.sales[index]

	restoredIdx := l.findProduct(removed.ProductID)
	if restoredIdx >= 0 {
		l.products[restoredIdx].Quantity += removed.QuantitySold
	}

	remaining := make([]SaleRecord, 0, len(l.sales)-1)
	remaining = append(remaining, l.sales[:index]...)
	remaining = append(remaining, l.sales[index+1:]...)
	previousSales := l.sales
	l.sales = remaining

	if err := l.persist(ctx); err != nil {
		if restoredIdx >= 0 {
			l.products[restoredIdx].Quantity -= removed.QuantitySold
		}
		l.sales = previousSales
		return SaleRecord{}, err
	}
	return removed, nil
}

// Products returns a copy of the inventory table in insertion order.
func (l *Ledger) Products() []Product {
	l.mu.Lock()
	defer l.mu.Unlock()

	products := make([]Product, len(l.products))
	copy(products, l.products)
	return products
}

// Sales returns a copy of the sales table in insertion order.
func (l *Ledger) Sales() []SaleRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	sales := make([]SaleRecord, len(l.sales))
	copy(sales, l.sales)
	return sales
}

func (l *Ledger) findProduct(productID string) int {
	for i := range l.products {
		if l.products[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (l *Ledger) persist(ctx context.Context) error {
	if err := l.store.Save(ctx, l.products, l.sales); err != nil {
		return fmt.Errorf("failed to persist ledger tables: %w", err)
	}
	return nil
}
