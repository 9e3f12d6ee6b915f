package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/invoiceo/invoiceo/internal/auth"
	"github.com/invoiceo/invoiceo/internal/httpx"
	"github.com/invoiceo/invoiceo/internal/models"
	"github.com/invoiceo/invoiceo/internal/store"
)

type DashboardHandler struct {
	Store *store.Store
}

func NewDashboardHandler(st *store.Store) *DashboardHandler {
	return &DashboardHandler{Store: st}
}

type dashboardStats struct {
	Clients          int64            `json:"clients"`
	Products         int64            `json:"products"`
	Invoices         int64            `json:"invoices"`
	PaidTotal        float64          `json:"paidTotal"`
	OutstandingTotal float64          `json:"outstandingTotal"`
	Recent           []models.Invoice `json:"recentInvoices"`
}

// Stats: GET /api/dashboard
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	db := h.Store.DB()

	var stats dashboardStats
	db.Model(&models.Client{}).Where("owner_id = ?", id.ID).Count(&stats.Clients)
	db.Model(&models.Product{}).Where("owner_id = ?", id.ID).Count(&stats.Products)
	db.Model(&models.Invoice{}).Where("owner_id = ?", id.ID).Count(&stats.Invoices)

	db.Model(&models.Invoice{}).
		Where("owner_id = ? AND status = ?", id.ID, models.StatusPaid).
		Select("COALESCE(SUM(total), 0)").Scan(&stats.PaidTotal)
	db.Model(&models.Invoice{}).
		Where("owner_id = ? AND status IN ?", id.ID, []string{models.StatusPending, models.StatusOverdue}).
		Select("COALESCE(SUM(total), 0)").Scan(&stats.OutstandingTotal)

	err := db.Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("owner_id = ?", id.ID).
		Order("invoice_number desc").
		Limit(5).
		Find(&stats.Recent).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_dashboard", nil)
		return
	}
	if stats.Recent == nil {
		stats.Recent = []models.Invoice{}
	}
	httpx.JSON(w, http.StatusOK, stats)
}
