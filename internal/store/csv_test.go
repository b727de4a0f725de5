package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shopledger/internal/ledger"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func fixtureTables(t *testing.T) ([]ledger.Product, []ledger.SaleRecord) {
	t.Helper()
	products := []ledger.Product{
		{ProductID: "P1", Name: "Widget", Price: mustDecimal(t, "10.5"), Quantity: 5, Category: "Tools"},
		{ProductID: "P2", Name: "Gadget, deluxe", Price: mustDecimal(t, "3.99"), Quantity: 0, Category: ""},
	}
	sales := []ledger.SaleRecord{
		{
			Timestamp:    time.Date(2024, 6, 1, 10, 30, 0, 0, time.Local),
			CustomerName: "Alice",
			ProductID:    "P1",
			ProductName:  "Widget",
			QuantitySold: 3,
			TotalPrice:   mustDecimal(t, "31.5"),
		},
	}
	return products, sales
}

func TestCSVStoreLoadWithoutPriorState(t *testing.T) {
	st := NewCSVStore(t.TempDir())

	products, sales, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, products)
	require.Empty(t, sales)
}

func TestCSVStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	st := NewCSVStore(dir)
	products, sales := fixtureTables(t)

	require.NoError(t, st.Save(context.Background(), products, sales))

	loadedProducts, loadedSales, err := NewCSVStore(dir).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, products, loadedProducts)
	require.Equal(t, sales, loadedSales)
}

func TestCSVStoreWritesOriginalHeaders(t *testing.T) {
	dir := t.TempDir()
	st := NewCSVStore(dir)
	products, sales := fixtureTables(t)

	require.NoError(t, st.Save(context.Background(), products, sales))

	inventory, err := os.ReadFile(filepath.Join(dir, InventoryFileName))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(inventory), "Product ID,Product Name,Price,Quantity,Category\n"))

	salesFile, err := os.ReadFile(filepath.Join(dir, SalesFileName))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(salesFile), "Date,Customer Name,Product ID,Product Name,Quantity Sold,Total Price\n"))
}

func TestCSVStoreSaveReplacesPreviousContents(t *testing.T) {
	dir := t.TempDir()
	st := NewCSVStore(dir)
	products, sales := fixtureTables(t)

	require.NoError(t, st.Save(context.Background(), products, sales))
	require.NoError(t, st.Save(context.Background(), products[:1], nil))

	loadedProducts, loadedSales, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loadedProducts, 1)
	require.Empty(t, loadedSales)
}

func TestCSVStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	st := NewCSVStore(dir)
	products, sales := fixtureTables(t)

	require.NoError(t, st.Save(context.Background(), products, sales))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestCSVStoreRejectsCorruptRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, InventoryFileName)
	content := "Product ID,Product Name,Price,Quantity,Category\nP1,Widget,not-a-price,5,Tools\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, _, err := NewCSVStore(dir).Load(context.Background())
	require.ErrorContains(t, err, "invalid price")
}
