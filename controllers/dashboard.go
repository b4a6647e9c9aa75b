package controllers

import (
	"net/http"
	"time"
	"tradestack-backend/config"
	"tradestack-backend/models"
	"tradestack-backend/money"

	"github.com/gin-gonic/gin"
)

type DashboardOverview struct {
	TotalLeads         int64         `json:"totalLeads"`
	OpenLeads          int64         `json:"openLeads"`
	MonthlyRevenue     money.Cents   `json:"monthlyRevenueCents"`
	OutstandingAmount  money.Cents   `json:"outstandingAmountCents"`
	TotalInvoices      int64         `json:"totalInvoices"`
	OverdueInvoices    int64         `json:"overdueInvoices"`
	RecentLeads        []models.Lead `json:"recentLeads"`
	PipelineByStatus   []StatusCount `json:"pipelineByStatus"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func GetDashboardOverview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var overview DashboardOverview

	config.DB.Model(&models.Lead{}).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Count(&overview.TotalLeads)

	config.DB.Model(&models.Lead{}).
		Where("user_id = ? AND status NOT IN ? AND deleted_at IS NULL",
			userID, []string{models.LeadStatusWon, models.LeadStatusLost}).
		Count(&overview.OpenLeads)

	// This month's collected revenue (paid invoices only)
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	config.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ? AND paid_date >= ? AND deleted_at IS NULL",
			userID, models.InvoiceStatusPaid, firstOfMonth).
		Select("COALESCE(SUM(total_amount_cents), 0)").
		Scan(&overview.MonthlyRevenue)

	// Money still on the table: sent + overdue invoices
	config.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND status IN ? AND deleted_at IS NULL",
			userID, []string{models.InvoiceStatusSent, models.InvoiceStatusOverdue}).
		Select("COALESCE(SUM(total_amount_cents), 0)").
		Scan(&overview.OutstandingAmount)

	config.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Count(&overview.TotalInvoices)

	config.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ? AND deleted_at IS NULL",
			userID, models.InvoiceStatusOverdue).
		Count(&overview.OverdueInvoices)

	config.DB.
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Order("created_at DESC").
		Limit(5).
		Find(&overview.RecentLeads)

	config.DB.Model(&models.Lead{}).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&overview.PipelineByStatus)

	c.JSON(http.StatusOK, overview)
}
