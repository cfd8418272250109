package repository

import (
	"context"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountRepository interface {
	Create(ctx context.Context, db *gorm.DB, account *entity.Account) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Account, error)
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Account, error)
}
