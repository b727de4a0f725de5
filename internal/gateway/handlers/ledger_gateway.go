package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	"shopledger/internal/events"
	"shopledger/internal/ledger"
	"shopledger/internal/store"
)

// LedgerHTTPHandler serves the mutating half of the API plus the raw table
// listings and CSV exports.
type LedgerHTTPHandler struct {
	ledger    *ledger.Ledger
	redis     *redis.Client
	publisher *events.Publisher
}

func NewLedgerHTTPHandler(l *ledger.Ledger, redisClient *redis.Client, publisher *events.Publisher) *LedgerHTTPHandler {
	return &LedgerHTTPHandler{
		ledger:    l,
		redis:     redisClient,
		publisher: publisher,
	}
}

// Helper functions
func (s *LedgerHTTPHandler) success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func (s *LedgerHTTPHandler) error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   message,
	})
}

// ledgerError maps the ledger's typed errors onto HTTP statuses. Anything
// unrecognized is a persistence failure and surfaces as a 500.
func (s *LedgerHTTPHandler) ledgerError(c *gin.Context, err error) {
	var validationErr *ledger.ValidationError
	var notFoundErr *ledger.ProductNotFoundError
	var stockErr *ledger.InsufficientStockError
	var indexErr *ledger.IndexOutOfRangeError

	switch {
	case errors.As(err, &validationErr):
		s.error(c, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		s.error(c, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &stockErr):
		s.error(c, http.StatusConflict, stockErr.Error())
	case errors.As(err, &indexErr):
		s.error(c, http.StatusNotFound, indexErr.Error())
	default:
		s.error(c, http.StatusInternalServerError, "Failed to persist ledger data: "+err.Error())
	}
}

func (s *LedgerHTTPHandler) afterMutation(c *gin.Context, event events.LedgerEvent) {
	ctx := c.Request.Context()
	InvalidateReportCaches(ctx, s.redis)

	event.Timestamp = time.Now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event.EventType, err)
	}
}

type upsertProductRequest struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Category  string          `json:"category"`
}

type recordSaleRequest struct {
	CustomerName string `json:"customer_name"`
	ProductID    string `json:"product_id"`
	QuantitySold int    `json:"quantity_sold"`
}

// Inventory endpoints

func (s *LedgerHTTPHandler) UpsertProduct(c *gin.Context) {
	var req upsertProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := s.ledger.UpsertProduct(c.Request.Context(), req.ProductID, req.Name, req.Price, req.Quantity, req.Category)
	if err != nil {
		s.ledgerError(c, err)
		return
	}

	s.afterMutation(c, events.LedgerEvent{
		EventType: events.EventProductUpserted,
		ProductID: product.ProductID,
		Data:      product,
	})
	s.success(c, product)
}

func (s *LedgerHTTPHandler) ListInventory(c *gin.Context) {
	s.success(c, s.ledger.Products())
}

func (s *LedgerHTTPHandler) ExportInventory(c *gin.Context) {
	var buf bytes.Buffer
	if err := store.WriteInventoryCSV(&buf, s.ledger.Products()); err != nil {
		s.error(c, http.StatusInternalServerError, "Failed to export inventory: "+err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="inventory_data.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// Sales endpoints

func (s *LedgerHTTPHandler) RecordSale(c *gin.Context) {
	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sale, err := s.ledger.RecordSale(c.Request.Context(), req.CustomerName, req.ProductID, req.QuantitySold)
	if err != nil {
		s.ledgerError(c, err)
		return
	}

	s.afterMutation(c, events.LedgerEvent{
		EventType:    events.EventSaleRecorded,
		ProductID:    sale.ProductID,
		CustomerName: sale.CustomerName,
		Data:         sale,
	})
	s.success(c, sale)
}

func (s *LedgerHTTPHandler) ListSales(c *gin.Context) {
	s.success(c, s.ledger.Sales())
}

// DeleteSale removes a sale by its current row index. The removed record is
// returned so the caller can show a confirmation.
func (s *LedgerHTTPHandler) DeleteSale(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		s.error(c, http.StatusBadRequest, "Invalid sale index")
		return
	}

	sale, err := s.ledger.DeleteSale(c.Request.Context(), index)
	if err != nil {
		s.ledgerError(c, err)
		return
	}

	s.afterMutation(c, events.LedgerEvent{
		EventType:    events.EventSaleDeleted,
		ProductID:    sale.ProductID,
		CustomerName: sale.CustomerName,
		Data:         sale,
	})
	s.success(c, sale)
}

func (s *LedgerHTTPHandler) ExportSales(c *gin.Context) {
	var buf bytes.Buffer
	if err := store.WriteSalesCSV(&buf, s.ledger.Sales()); err != nil {
		s.error(c, http.StatusInternalServerError, "Failed to export sales: "+err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sales_data.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
