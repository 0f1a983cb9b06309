package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/conference-api/internal/auth"
	"github.com/gdg-garage/conference-api/internal/dashboard"
	"github.com/gdg-garage/conference-api/internal/models"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewDashboardHandler(db *gorm.DB, authHandler *auth.AuthHandler) *DashboardHandler {
	return &DashboardHandler{db: db, authHandler: authHandler}
}

type DashboardResponse struct {
	Body dashboard.Report
}

// HandleDashboard reports over finalized registrations only. Drafts are
// still being edited and would skew the fees.
func (h *DashboardHandler) HandleDashboard(ctx context.Context, _ *struct{}) (*DashboardResponse, error) {
	participant, _, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}
	if !participant.IsStaff {
		return nil, huma.Error403Forbidden("Staff only")
	}

	var participants []models.Participant
	err = h.db.WithContext(ctx).
		Preload("Registrations", func(db *gorm.DB) *gorm.DB {
			return db.Where("finalized_at IS NOT NULL").Order("id")
		}).
		Preload("Registrations.Adults", orderByID).
		Preload("Registrations.Children", orderByID).
		Order("id").
		Find(&participants).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Database error")
	}

	return &DashboardResponse{Body: dashboard.Build(participants)}, nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
