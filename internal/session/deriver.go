package session

import (
	"context"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deriver classifies an identity as doctor or patient from the doctors table.
type Deriver struct {
	db         *gorm.DB
	log        *logrus.Logger
	doctorRepo repository.DoctorRepository
}

func NewDeriver(db *gorm.DB, log *logrus.Logger, doctorRepo repository.DoctorRepository) *Deriver {
	return &Deriver{
		db:         db,
		log:        log,
		doctorRepo: doctorRepo,
	}
}

// Derive performs exactly one doctor lookup. A failed lookup yields RolePatient.
func (d *Deriver) Derive(ctx context.Context, identity entity.Identity) entity.Role {
	doctor, err := d.doctorRepo.FindByID(ctx, d.db, identity.ID)
	if err != nil {
		d.log.Warnf("Failed to look up doctor record for %s, treating as patient: %+v", identity.ID, err)
		return entity.RolePatient
	}
	if doctor == nil {
		return entity.RolePatient
	}
	return entity.RoleDoctor
}
