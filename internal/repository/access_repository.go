package repository

import (
	"context"
	"fmt"

	"github.com/otcheredev/dicomweb-store/internal/database"
	"github.com/otcheredev/dicomweb-store/internal/models"
)

// AccessLogRepository persists audit rows.
type AccessLogRepository struct{}

// NewAccessLogRepository creates a new access log repository
func NewAccessLogRepository() *AccessLogRepository {
	return &AccessLogRepository{}
}

// Create writes one access log event.
func (r *AccessLogRepository) Create(ctx context.Context, event *models.AccessLogEvent) error {
	if err := database.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("%w: create access log: %v", ErrDatabase, err)
	}
	return nil
}

// GetByTenantID retrieves recent access logs for a tenant.
func (r *AccessLogRepository) GetByTenantID(ctx context.Context, tenantID string, limit, offset int) ([]models.AccessLogEvent, error) {
	var events []models.AccessLogEvent
	query := database.DB.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("timestamp DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("%w: get access logs: %v", ErrDatabase, err)
	}
	return events, nil
}
