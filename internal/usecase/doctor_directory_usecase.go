package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/realtime"
	"go-medical-booking/internal/service"
	"go-medical-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidFees       = invalidField("fees", "Please enter a valid consultation fee")
	ErrInvalidExperience = invalidField("experience", "Experience must be a positive number of years")
)

var errDoctorsUnavailable = errors.New("failed to load doctors")

type DoctorDirectoryUsecase interface {
	ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error)
	SearchDoctors(ctx context.Context, query string) *dto.DoctorListResponse
	SubscribeDoctors(ctx context.Context, sink realtime.Sink[*dto.DoctorListResponse]) *realtime.Subscription
	UpdateMyProfile(ctx context.Context, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error)
}

type doctorDirectoryUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	doctorRepo   repository.DoctorRepository
	auditService service.AuditService
	broker       realtime.Broker
	notifier     *realtime.Notifier
}

func NewDoctorDirectoryUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
	broker realtime.Broker,
	notifier *realtime.Notifier,
) DoctorDirectoryUsecase {
	return &doctorDirectoryUsecase{
		db:           db,
		log:          log,
		doctorRepo:   doctorRepo,
		auditService: auditService,
		broker:       broker,
		notifier:     notifier,
	}
}

func (u *doctorDirectoryUsecase) ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find doctors: %+v", err)
		return nil, errDoctorsUnavailable
	}
	if len(doctors) == 0 {
		u.log.Warn("No doctors found, the doctors table may need seeding")
	}

	return converter.DoctorsToListResponse(doctors), nil
}

func (u *doctorDirectoryUsecase) GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", id, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorToResponse(doctor), nil
}

// SearchDoctors is a one-shot, case-insensitive substring match over name and specialty.
// A blank query returns everyone. Search never fails: an unreadable table reads as empty.
func (u *doctorDirectoryUsecase) SearchDoctors(ctx context.Context, query string) *dto.DoctorListResponse {
	doctors, err := u.doctorRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to search doctors: %+v", err)
		return converter.DoctorsToListResponse(nil)
	}

	return converter.DoctorsToListResponse(filterDoctors(doctors, query))
}

func filterDoctors(doctors []entity.Doctor, query string) []entity.Doctor {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return doctors
	}

	matches := make([]entity.Doctor, 0, len(doctors))
	for _, doctor := range doctors {
		if strings.Contains(strings.ToLower(doctor.Name), needle) ||
			strings.Contains(strings.ToLower(doctor.Specialty), needle) {
			matches = append(matches, doctor)
		}
	}
	return matches
}

// SubscribeDoctors opens a snapshot stream of the whole directory.
func (u *doctorDirectoryUsecase) SubscribeDoctors(ctx context.Context, sink realtime.Sink[*dto.DoctorListResponse]) *realtime.Subscription {
	fetch := func(ctx context.Context) (*dto.DoctorListResponse, error) {
		doctors, err := u.doctorRepo.FindAll(ctx, u.db)
		if err != nil {
			u.log.Warnf("Failed to refresh doctors: %+v", err)
			return nil, errDoctorsUnavailable
		}
		return converter.DoctorsToListResponse(doctors), nil
	}

	return realtime.Open(ctx, u.broker, realtime.DoctorsTopic, fetch, sink)
}

// UpdateMyProfile edits the signed-in doctor's own about, fees and experience.
func (u *doctorDirectoryUsecase) UpdateMyProfile(ctx context.Context, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error) {
	sess, err := doctorSession(ctx)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.About != nil {
		fields["about"] = strings.TrimSpace(*req.About)
	}
	if req.Fees != nil {
		if !validator.IsValidFees(*req.Fees) {
			return nil, ErrInvalidFees
		}
		fees, err := decimal.NewFromString(strings.TrimSpace(*req.Fees))
		if err != nil {
			return nil, ErrInvalidFees
		}
		fields["fees"] = fees.Round(2)
	}
	if req.Experience != nil {
		if *req.Experience < 0 {
			return nil, ErrInvalidExperience
		}
		fields["experience"] = *req.Experience
	}

	before, err := u.doctorRepo.FindByID(ctx, u.db, sess.UserID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", sess.UserID, err)
		return nil, err
	}
	if before == nil {
		return nil, ErrDoctorNotFound
	}
	if len(fields) == 0 {
		return converter.DoctorToResponse(before), nil
	}

	fields["updated_at"] = time.Now().UnixMilli()
	if _, err := u.doctorRepo.UpdateFields(ctx, u.db, sess.UserID, fields); err != nil {
		u.log.Warnf("Failed to update doctor %s: %+v", sess.UserID, err)
		return nil, err
	}

	after, err := u.doctorRepo.FindByID(ctx, u.db, sess.UserID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", sess.UserID, err)
		return nil, err
	}
	if after == nil {
		return nil, ErrDoctorNotFound
	}

	u.notifier.DoctorsChanged(ctx)
	_ = u.auditService.LogUpdate(ctx, &sess.UserID, entity.AuditActionDoctorUpdate, "doctor", after.ID.String(),
		converter.DoctorToResponse(before), converter.DoctorToResponse(after))

	return converter.DoctorToResponse(after), nil
}
