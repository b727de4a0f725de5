package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"shopledger/internal/ledger"
)

// InventoryRow is the relational shape of a ledger product. Prices are
// stored as strings, which round-trip decimals exactly.
type InventoryRow struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Position  int    `gorm:"index;not null"`
	ProductID string `gorm:"size:100;uniqueIndex;not null"`
	Name      string `gorm:"size:255;not null"`
	Price     string `gorm:"type:varchar(32);not null"`
	Quantity  int    `gorm:"not null"`
	Category  string `gorm:"size:100"`
}

func (InventoryRow) TableName() string { return "inventory_products" }

// SaleRow is the relational shape of a ledger sale record. Position keeps
// insertion order, which is what the delete-by-index operation addresses.
type SaleRow struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Position     int       `gorm:"index;not null"`
	SoldAt       time.Time `gorm:"not null"`
	CustomerName string    `gorm:"size:255;not null"`
	ProductID    string    `gorm:"size:100;not null"`
	ProductName  string    `gorm:"size:255;not null"`
	QuantitySold int       `gorm:"not null"`
	TotalPrice   string    `gorm:"type:varchar(32);not null"`
}

func (SaleRow) TableName() string { return "sales_records" }

// GormStore persists both tables in a relational database. Save replaces
// the full contents of both tables in one transaction, mirroring the
// whole-table save contract of the CSV store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&InventoryRow{}, &SaleRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger tables: %w", err)
	}
	return &GormStore{db: db}, nil
}

// OpenDB opens a gorm connection for the configured driver. Supported
// drivers are "sqlite" (dsn is a file path or :memory:) and "postgres".
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	return db, nil
}

func (s *GormStore) Load(ctx context.Context) ([]ledger.Product, []ledger.SaleRecord, error) {
	var inventoryRows []InventoryRow
	if err := s.db.WithContext(ctx).Order("position asc").Find(&inventoryRows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load inventory table: %w", err)
	}

	var saleRows []SaleRow
	if err := s.db.WithContext(ctx).Order("position asc").Find(&saleRows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load sales table: %w", err)
	}

	products := make([]ledger.Product, 0, len(inventoryRows))
	for _, row := range inventoryRows {
		price, err := decimal.NewFromString(row.Price)
		if err != nil {
			return nil, nil, fmt.Errorf("inventory row %d: invalid price %q: %w", row.Position, row.Price, err)
		}
		products = append(products, ledger.Product{
			ProductID: row.ProductID,
			Name:      row.Name,
			Price:     price,
			Quantity:  row.Quantity,
			Category:  row.Category,
		})
	}

	sales := make([]ledger.SaleRecord, 0, len(saleRows))
	for _, row := range saleRows {
		total, err := decimal.NewFromString(row.TotalPrice)
		if err != nil {
			return nil, nil, fmt.Errorf("sales row %d: invalid total price %q: %w", row.Position, row.TotalPrice, err)
		}
		sales = append(sales, ledger.SaleRecord{
			Timestamp:    row.SoldAt.Truncate(time.Second),
			CustomerName: row.CustomerName,
			ProductID:    row.ProductID,
			ProductName:  row.ProductName,
			QuantitySold: row.QuantitySold,
			TotalPrice:   total,
		})
	}

	return products, sales, nil
}

func (s *GormStore) Save(ctx context.Context, products []ledger.Product, sales []ledger.SaleRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&InventoryRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear inventory table: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&SaleRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear sales table: %w", err)
		}

		for i, p := range products {
			row := InventoryRow{
				Position:  i,
				ProductID: p.ProductID,
				Name:      p.Name,
				Price:     p.Price.String(),
				Quantity:  p.Quantity,
				Category:  p.Category,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to save inventory row %d: %w", i, err)
			}
		}

		for i, sale := range sales {
			row := SaleRow{
				Position:     i,
				SoldAt:       sale.Timestamp,
				CustomerName: sale.CustomerName,
				ProductID:    sale.ProductID,
				ProductName:  sale.ProductName,
				QuantitySold: sale.QuantitySold,
				TotalPrice:   sale.TotalPrice.String(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to save sales row %d: %w", i, err)
			}
		}
		return nil
	})
}
