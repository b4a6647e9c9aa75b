// controllers/report.go
package controllers

import (
	"net/http"
	"time"
	"tradestack-backend/config"
	"tradestack-backend/models"
	"tradestack-backend/money"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportController handles all reporting functions
type ReportController struct{}

// AnalyticsSummary represents the analytics data. All amounts are in
// cents of the merchant's currency.
type AnalyticsSummary struct {
	CurrentMonthRevenue   money.Cents     `json:"currentMonthRevenueCents"`
	MonthGrowth           float64         `json:"monthGrowth"`
	CurrentQuarterRevenue money.Cents     `json:"currentQuarterRevenueCents"`
	CurrentYearRevenue    money.Cents     `json:"currentYearRevenueCents"`
	TopClients            []ClientSummary `json:"topClients"`
	QuickStats            QuickStatistics `json:"quickStats"`
}

type ClientSummary struct {
	Name     string      `json:"name"`
	Invoices int64       `json:"invoices"`
	Revenue  money.Cents `json:"revenueCents"`
}

type QuickStatistics struct {
	TotalLeads      int64       `json:"totalLeads"`
	WonLeads        int64       `json:"wonLeads"`
	TotalInvoices   int64       `json:"totalInvoices"`
	PaidInvoices    int64       `json:"paidInvoices"`
	AvgInvoiceValue money.Cents `json:"avgInvoiceValueCents"`
}

// GetReportAnalytics returns the revenue and pipeline summary
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	firstOfPrevMonth := firstOfMonth.AddDate(0, -1, 0)
	quarterMonth := time.Month(((int(now.Month())-1)/3)*3 + 1)
	firstOfQuarter := time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, now.Location())
	firstOfYear := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	summary := AnalyticsSummary{
		CurrentMonthRevenue:   paidRevenueSince(userID, firstOfMonth),
		CurrentQuarterRevenue: paidRevenueSince(userID, firstOfQuarter),
		CurrentYearRevenue:    paidRevenueSince(userID, firstOfYear),
	}

	prevMonthRevenue := paidRevenueBetween(userID, firstOfPrevMonth, firstOfMonth)
	if prevMonthRevenue > 0 {
		summary.MonthGrowth = (float64(summary.CurrentMonthRevenue) - float64(prevMonthRevenue)) /
			float64(prevMonthRevenue) * 100
	}

	config.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ? AND deleted_at IS NULL", userID, models.InvoiceStatusPaid).
		Select("client_name as name, COUNT(*) as invoices, SUM(total_amount_cents) as revenue").
		Group("client_name").
		Order("revenue DESC").
		Limit(5).
		Scan(&summary.TopClients)

	config.DB.Model(&models.Lead{}).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Count(&summary.QuickStats.TotalLeads)
	config.DB.Model(&models.Lead{}).
		Where("user_id = ? AND status = ? AND deleted_at IS NULL", userID, models.LeadStatusWon).
		Count(&summary.QuickStats.WonLeads)
	config.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Count(&summary.QuickStats.TotalInvoices)
	config.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ? AND deleted_at IS NULL", userID, models.InvoiceStatusPaid).
		Count(&summary.QuickStats.PaidInvoices)

	if summary.QuickStats.PaidInvoices > 0 {
		summary.QuickStats.AvgInvoiceValue = money.Cents(
			int64(summary.CurrentYearRevenue) / summary.QuickStats.PaidInvoices)
	}

	c.JSON(http.StatusOK, summary)
}

func paidRevenueSince(userID uuid.UUID, since time.Time) money.Cents {
	var total money.Cents
	config.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ? AND paid_date >= ? AND deleted_at IS NULL",
			userID, models.InvoiceStatusPaid, since).
		Select("COALESCE(SUM(total_amount_cents), 0)").
		Scan(&total)
	return total
}

func paidRevenueBetween(userID uuid.UUID, from, to time.Time) money.Cents {
	var total money.Cents
	config.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ? AND paid_date >= ? AND paid_date < ? AND deleted_at IS NULL",
			userID, models.InvoiceStatusPaid, from, to).
		Select("COALESCE(SUM(total_amount_cents), 0)").
		Scan(&total)
	return total
}
