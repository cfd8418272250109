package repository

import (
	"context"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, profile *entity.UserProfile) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.UserProfile, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error)
}
