package main

import (
	"context"
	"time"

	"go-medical-booking/config"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/infrastructure/database"
	"go-medical-booking/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	testUserEmail    = "test@doctor.com"
	testUserPassword = "password123"
	testUserName     = "Test User"
)

// seedDoctorID keeps directory ids stable across runs so reseeding updates in place.
func seedDoctorID(key string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("go-medical-booking/doctors/"+key))
}

var doctors = []entity.Doctor{
	{
		ID:         seedDoctorID("1"),
		Name:       "Dr. John Doe",
		Specialty:  "Cardiologist",
		Rating:     4.8,
		Reviews:    120,
		About:      "Expert cardiologist with over 15 years of experience in treating heart conditions.",
		Experience: 15,
		Fees:       decimal.NewFromInt(150),
	},
	{
		ID:         seedDoctorID("2"),
		Name:       "Dr. Jane Smith",
		Specialty:  "General Physician",
		Rating:     4.9,
		Reviews:    80,
		About:      "Compassionate general physician specializing in family medicine.",
		Experience: 10,
		Fees:       decimal.NewFromInt(100),
	},
	{
		ID:         seedDoctorID("3"),
		Name:       "Dr. Mike Ross",
		Specialty:  "Dentist",
		Rating:     4.5,
		Reviews:    45,
		About:      "Skilled dentist focused on cosmetic and restorative dentistry.",
		Experience: 8,
		Fees:       decimal.NewFromInt(120),
	},
	{
		ID:         seedDoctorID("4"),
		Name:       "Dr. Sarah Johnson",
		Specialty:  "Pediatrician",
		Rating:     4.7,
		Reviews:    95,
		About:      "Caring pediatrician with expertise in child healthcare.",
		Experience: 12,
		Fees:       decimal.NewFromInt(110),
	},
}

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seedTestUser(ctx, db); err != nil {
		logrus.Errorf("Failed to create test user: %v", err)
	}

	doctorRepo := repository.NewDoctorRepository()
	seeded := 0
	for i := range doctors {
		doctor := doctors[i]
		if err := doctorRepo.Save(ctx, db, &doctor); err != nil {
			logrus.WithField("doctor", doctor.Name).Errorf("Failed to seed doctor: %v", err)
			continue
		}
		logrus.WithFields(logrus.Fields{"doctor": doctor.Name, "specialty": doctor.Specialty}).Info("Seeded doctor")
		seeded++
	}

	logrus.WithFields(logrus.Fields{
		"doctors": seeded,
		"failed":  len(doctors) - seeded,
		"email":   testUserEmail,
	}).Info("Seeding complete")

	if seeded == 0 {
		logrus.Fatal("No doctors were seeded")
	}
}

// seedTestUser provisions the shared test credential as a patient. An existing account is left alone.
func seedTestUser(ctx context.Context, db *gorm.DB) error {
	accountRepo := repository.NewAccountRepository()
	profileRepo := repository.NewProfileRepository()

	existing, err := accountRepo.FindByEmail(ctx, db, testUserEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		logrus.WithField("email", testUserEmail).Info("Test user already exists, skipping")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(testUserPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account := &entity.Account{
			ID:       uuid.New(),
			Email:    testUserEmail,
			Password: string(hashedPassword),
		}
		if err := accountRepo.Create(ctx, tx, account); err != nil {
			return err
		}
		logrus.WithField("email", testUserEmail).Info("Created test user")
		return profileRepo.Create(ctx, tx, &entity.UserProfile{
			ID:    account.ID,
			Name:  testUserName,
			Email: testUserEmail,
		})
	})
}
