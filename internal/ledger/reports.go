package ledger

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the wire and storage format for sale timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// TotalRevenue sums TotalPrice over all recorded sales. Empty table sums
// to 0.
func (l *Ledger) TotalRevenue() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := decimal.Zero
	for _, sale := range l.sales {
		total = total.Add(sale.TotalPrice)
	}
	return total
}

// SalesByProduct groups sales by snapshotted product name, summing total
// prices per group. Groups appear in order of each name's first sale, and
// the key is a case-sensitive exact match, so a renamed product keeps its
// historical sales in a separate group.
func (l *Ledger) SalesByProduct() []ProductRevenue {
	l.mu.Lock()
	defer l.mu.Unlock()

	groups := make([]ProductRevenue, 0)
	position := make(map[string]int)
	for _, sale := range l.sales {
		idx, ok := position[sale.ProductName]
		if !ok {
			idx = len(groups)
			position[sale.ProductName] = idx
			groups = append(groups, ProductRevenue{ProductName: sale.ProductName, Revenue: decimal.Zero})
		}
		groups[idx].Revenue = groups[idx].Revenue.Add(sale.TotalPrice)
	}
	return groups
}

// SearchInventory returns every product with at least one field whose
// string form contains query, case-insensitively.
func (l *Ledger) SearchInventory(query string) []Product {
	l.mu.Lock()
	defer l.mu.Unlock()

	query = strings.ToLower(query)
	matches := make([]Product, 0)
	for _, product := range l.products {
		if rowContains(productFields(product), query) {
			matches = append(matches, product)
		}
	}
	return matches
}

// SearchSales returns every sale with at least one field whose string form
// contains query, case-insensitively.
func (l *Ledger) SearchSales(query string) []SaleRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	query = strings.ToLower(query)
	matches := make([]SaleRecord, 0)
	for _, sale := range l.sales {
		if rowContains(saleFields(sale), query) {
			matches = append(matches, sale)
		}
	}
	return matches
}

// SearchCustomers returns every sale whose customer name contains query,
// case-insensitively.
func (l *Ledger) SearchCustomers(query string) []SaleRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	query = strings.ToLower(query)
	matches := make([]SaleRecord, 0)
	for _, sale := range l.sales {
		if strings.Contains(strings.ToLower(sale.CustomerName), query) {
			matches = append(matches, sale)
		}
	}
	return matches
}

// CustomerHistory returns all sales for an exactly matching customer name,
// in insertion order.
func (l *Ledger) CustomerHistory(customerName string) []SaleRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	history := make([]SaleRecord, 0)
	for _, sale := range l.sales {
		if sale.CustomerName == customerName {
			history = append(history, sale)
		}
	}
	return history
}

// CustomerNames returns the distinct customer names present in the sales
// table, in order of first purchase.
func (l *Ledger) CustomerNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0)
	seen := make(map[string]bool)
	for _, sale := range l.sales {
		if !seen[sale.CustomerName] {
			seen[sale.CustomerName] = true
			names = append(names, sale.CustomerName)
		}
	}
	return names
}

func rowContains(fields []string, loweredQuery string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), loweredQuery) {
			return true
		}
	}
	return false
}

func productFields(p Product) []string {
	return []string{
		p.ProductID,
		p.Name,
		p.Price.String(),
		strconv.Itoa(p.Quantity),
		p.Category,
	}
}

func saleFields(s SaleRecord) []string {
	return []string{
		s.Timestamp.Format(TimestampLayout),
		s.CustomerName,
		s.ProductID,
		s.ProductName,
		strconv.Itoa(s.QuantitySold),
		s.TotalPrice.String(),
	}
}
