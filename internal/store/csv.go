// Package store provides the durable backends for the ledger tables: a
// CSV-file store matching the original two-file layout, and a GORM-backed
// store for sqlite or postgres.
package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"shopledger/internal/ledger"
)

const (
	InventoryFileName = "inventory_data.csv"
	SalesFileName     = "sales_data.csv"
)

var inventoryHeader = []string{"Product ID", "Product Name", "Price", "Quantity", "Category"}
var salesHeader = []string{"Date", "Customer Name", "Product ID", "Product Name", "Quantity Sold", "Total Price"}

// CSVStore persists both tables as two CSV files in a data directory.
// Writes go through a temp file and rename so a crash mid-save never leaves
// a truncated table behind.
type CSVStore struct {
	inventoryPath string
	salesPath     string
}

func NewCSVStore(dataDir string) *CSVStore {
	return &CSVStore{
		inventoryPath: filepath.Join(dataDir, InventoryFileName),
		salesPath:     filepath.Join(dataDir, SalesFileName),
	}
}

func (s *CSVStore) Load(ctx context.Context) ([]ledger.Product, []ledger.SaleRecord, error) {
	products, err := loadInventoryFile(s.inventoryPath)
	if err != nil {
		return nil, nil, err
	}
	sales, err := loadSalesFile(s.salesPath)
	if err != nil {
		return nil, nil, err
	}
	return products, sales, nil
}

func (s *CSVStore) Save(ctx context.Context, products []ledger.Product, sales []ledger.SaleRecord) error {
	if err := writeFileAtomic(s.inventoryPath, func(w io.Writer) error {
		return WriteInventoryCSV(w, products)
	}); err != nil {
		return fmt.Errorf("failed to save inventory table: %w", err)
	}
	if err := writeFileAtomic(s.salesPath, func(w io.Writer) error {
		return WriteSalesCSV(w, sales)
	}); err != nil {
		return fmt.Errorf("failed to save sales table: %w", err)
	}
	return nil
}

// WriteInventoryCSV writes the inventory table with its header row. It is
// shared by the CSV store and the export endpoints.
func WriteInventoryCSV(w io.Writer, products []ledger.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(inventoryHeader); err != nil {
		return err
	}
	for _, p := range products {
		record := []string{
			p.ProductID,
			p.Name,
			p.Price.String(),
			strconv.Itoa(p.Quantity),
			p.Category,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSalesCSV writes a sales table with its header row.
func WriteSalesCSV(w io.Writer, sales []ledger.SaleRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(salesHeader); err != nil {
		return err
	}
	for _, s := range sales {
		record := []string{
			s.Timestamp.Format(ledger.TimestampLayout),
			s.CustomerName,
			s.ProductID,
			s.ProductName,
			strconv.Itoa(s.QuantitySold),
			s.TotalPrice.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func loadInventoryFile(path string) ([]ledger.Product, error) {
	rows, err := readCSVFile(path, len(inventoryHeader))
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory table: %w", err)
	}

	products := make([]ledger.Product, 0, len(rows))
	for i, row := range rows {
		price, err := decimal.NewFromString(row[2])
		if err != nil {
			return nil, fmt.Errorf("inventory row %d: invalid price %q: %w", i, row[2], err)
		}
		quantity, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("inventory row %d: invalid quantity %q: %w", i, row[3], err)
		}
		products = append(products, ledger.Product{
			ProductID: row[0],
			Name:      row[1],
			Price:     price,
			Quantity:  quantity,
			Category:  row[4],
		})
	}
	return products, nil
}

func loadSalesFile(path string) ([]ledger.SaleRecord, error) {
	rows, err := readCSVFile(path, len(salesHeader))
	if err != nil {
		return nil, fmt.Errorf("failed to load sales table: %w", err)
	}

	sales := make([]ledger.SaleRecord, 0, len(rows))
	for i, row := range rows {
		timestamp, err := time.ParseInLocation(ledger.TimestampLayout, row[0], time.Local)
		if err != nil {
			return nil, fmt.Errorf("sales row %d: invalid date %q: %w", i, row[0], err)
		}
		quantity, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, fmt.Errorf("sales row %d: invalid quantity %q: %w", i, row[4], err)
		}
		total, err := decimal.NewFromString(row[5])
		if err != nil {
			return nil, fmt.Errorf("sales row %d: invalid total price %q: %w", i, row[5], err)
		}
		sales = append(sales, ledger.SaleRecord{
			Timestamp:    timestamp,
			CustomerName: row[1],
			ProductID:    row[2],
			ProductName:  row[3],
			QuantitySold: quantity,
			TotalPrice:   total,
		})
	}
	return sales, nil
}

// readCSVFile returns the data rows of a CSV file, skipping the header.
// A missing file is an empty table.
func readCSVFile(path string, fields int) ([][]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
