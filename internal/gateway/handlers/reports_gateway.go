package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"shopledger/internal/ledger"
	"shopledger/internal/store"
)

const (
	REPORTS_CACHE_PREFIX       = "reports:"
	DASHBOARD_CACHE_KEY        = "reports:dashboard"
	SALES_BY_PRODUCT_CACHE_KEY = "reports:sales-by-product"
	CACHE_TTL_SHORT            = 5 * time.Minute
)

// InvalidateReportCaches drops the cached report payloads. Called after
// every mutation; a nil client makes it a no-op.
func InvalidateReportCaches(ctx context.Context, redisClient *redis.Client) {
	if redisClient == nil {
		return
	}
	_ = redisClient.Del(ctx, DASHBOARD_CACHE_KEY, SALES_BY_PRODUCT_CACHE_KEY)
}

// ReportsHTTPHandler serves the read-only derived views: dashboard metrics,
// revenue reports, search and customer purchase history.
type ReportsHTTPHandler struct {
	ledger *ledger.Ledger
	redis  *redis.Client
}

func NewReportsHTTPHandler(l *ledger.Ledger, redisClient *redis.Client) *ReportsHTTPHandler {
	return &ReportsHTTPHandler{
		ledger: l,
		redis:  redisClient,
	}
}

func (s *ReportsHTTPHandler) success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func (s *ReportsHTTPHandler) error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   message,
	})
}

func (s *ReportsHTTPHandler) cached(c *gin.Context, key string) bool {
	if s.redis == nil {
		return false
	}
	payload, err := s.redis.Get(c.Request.Context(), key).Result()
	if err != nil {
		return false
	}
	s.success(c, json.RawMessage(payload))
	return true
}

func (s *ReportsHTTPHandler) cache(c *gin.Context, key string, payload interface{}) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = s.redis.Set(c.Request.Context(), key, data, CACHE_TTL_SHORT)
}

type dashboardPayload struct {
	TotalProducts int    `json:"total_products"`
	TotalSales    int    `json:"total_sales"`
	TotalRevenue  string `json:"total_revenue"`
}

// Dashboard returns the overview metrics: row counts for both tables and
// the revenue total.
func (s *ReportsHTTPHandler) Dashboard(c *gin.Context) {
	if s.cached(c, DASHBOARD_CACHE_KEY) {
		return
	}

	payload := dashboardPayload{
		TotalProducts: len(s.ledger.Products()),
		TotalSales:    len(s.ledger.Sales()),
		TotalRevenue:  s.ledger.TotalRevenue().StringFixed(2),
	}

	s.cache(c, DASHBOARD_CACHE_KEY, payload)
	s.success(c, payload)
}

func (s *ReportsHTTPHandler) TotalRevenue(c *gin.Context) {
	s.success(c, gin.H{
		"total_revenue": s.ledger.TotalRevenue().StringFixed(2),
	})
}

// SalesByProduct returns the per-product revenue groups that back the
// report chart, in order of each product name's first sale.
func (s *ReportsHTTPHandler) SalesByProduct(c *gin.Context) {
	if s.cached(c, SALES_BY_PRODUCT_CACHE_KEY) {
		return
	}

	payload := s.ledger.SalesByProduct()

	s.cache(c, SALES_BY_PRODUCT_CACHE_KEY, payload)
	s.success(c, payload)
}

// Search runs a case-insensitive substring match over one of the three
// searchable tables. An empty result is a valid outcome and returns an
// empty list, not an error.
func (s *ReportsHTTPHandler) Search(c *gin.Context) {
	query, ok := c.GetQuery("q")
	if !ok {
		s.error(c, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	switch c.DefaultQuery("type", "inventory") {
	case "inventory":
		s.success(c, s.ledger.SearchInventory(query))
	case "sales":
		s.success(c, s.ledger.SearchSales(query))
	case "customer":
		s.success(c, s.ledger.SearchCustomers(query))
	default:
		s.error(c, http.StatusBadRequest, "Search type must be one of: inventory, sales, customer")
	}
}

func (s *ReportsHTTPHandler) ListCustomers(c *gin.Context) {
	s.success(c, s.ledger.CustomerNames())
}

// CustomerHistory returns all purchases for one exactly named customer, in
// insertion order.
func (s *ReportsHTTPHandler) CustomerHistory(c *gin.Context) {
	name := c.Param("name")
	history := s.ledger.CustomerHistory(name)
	if len(history) == 0 {
		s.error(c, http.StatusNotFound, fmt.Sprintf("No purchases recorded for customer %q", name))
		return
	}
	s.success(c, history)
}

func (s *ReportsHTTPHandler) ExportCustomerHistory(c *gin.Context) {
	name := c.Param("name")
	history := s.ledger.CustomerHistory(name)
	if len(history) == 0 {
		s.error(c, http.StatusNotFound, fmt.Sprintf("No purchases recorded for customer %q", name))
		return
	}

	var buf bytes.Buffer
	if err := store.WriteSalesCSV(&buf, history); err != nil {
		s.error(c, http.StatusInternalServerError, "Failed to export customer history: "+err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"_purchases.csv"))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
