package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/service"
	"go-medical-booking/pkg/validator"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound = errors.New("profile not found")

	ErrInvalidName  = invalidField("name", "Name must be at least 2 characters")
	ErrInvalidPhone = invalidField("phone", "Phone must be 10 digits")
)

type ProfileUsecase interface {
	GetProfile(ctx context.Context) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
}

type profileUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	profileRepo  repository.ProfileRepository
	auditService service.AuditService
}

func NewProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	auditService service.AuditService,
) ProfileUsecase {
	return &profileUsecase{
		db:           db,
		log:          log,
		profileRepo:  profileRepo,
		auditService: auditService,
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context) (*dto.ProfileResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	profile, err := u.profileRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find profile %s: %+v", userID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	return converter.ProfileToResponse(profile), nil
}

// UpdateProfile changes name and phone. Email is never written after sign-up.
func (u *profileUsecase) UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	if !validator.IsValidName(req.Name) {
		return nil, ErrInvalidName
	}
	phone := normalizePhone(req.Phone)
	if phone != "" && !validator.IsValidPhone(phone) {
		return nil, ErrInvalidPhone
	}

	before, err := u.profileRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find profile %s: %+v", userID, err)
		return nil, err
	}
	if before == nil {
		return nil, ErrProfileNotFound
	}

	fields := map[string]interface{}{
		"name":       strings.TrimSpace(req.Name),
		"phone":      phone,
		"updated_at": time.Now().UnixMilli(),
	}
	if _, err := u.profileRepo.UpdateFields(ctx, u.db, userID, fields); err != nil {
		u.log.Warnf("Failed to update profile %s: %+v", userID, err)
		return nil, err
	}

	after, err := u.profileRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find profile %s: %+v", userID, err)
		return nil, err
	}
	if after == nil {
		return nil, ErrProfileNotFound
	}

	_ = u.auditService.LogUpdate(ctx, &userID, entity.AuditActionProfileUpdate, "user", userID.String(),
		converter.ProfileToResponse(before), converter.ProfileToResponse(after))

	return converter.ProfileToResponse(after), nil
}

func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)
}
