package services

import (
	"time"

	"tradestack-backend/config"
	"tradestack-backend/models"
	"tradestack-backend/utils"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// OverdueService flips sent invoices to overdue once their due date
// has passed without payment.
type OverdueService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewOverdueService(db *gorm.DB) *OverdueService {
	return &OverdueService{
		db:  db,
		log: config.Logger.With().Str("component", "overdue_service").Logger(),
	}
}

// StartScheduler runs a sweep every hour and once at startup.
func (s *OverdueService) StartScheduler() {
	c := cron.New()

	c.AddFunc("@hourly", s.SweepOverdue)
	s.SweepOverdue()

	c.Start()
	s.log.Info().Msg("overdue scheduler started")
}

// SweepOverdue is a single bulk transition: sent -> overdue for every
// invoice whose due date is in the past. paid and cancelled invoices
// are terminal and never touched.
func (s *OverdueService) SweepOverdue() {
	res := s.db.Model(&models.Invoice{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?",
			models.InvoiceStatusSent, utils.BeginningOfDay(time.Now())).
		Update("status", models.InvoiceStatusOverdue)
	if res.Error != nil {
		s.log.Error().Err(res.Error).Msg("overdue sweep failed")
		return
	}
	if res.RowsAffected > 0 {
		s.log.Info().Int64("invoices", res.RowsAffected).Msg("invoices marked overdue")
	}
}
