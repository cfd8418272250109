package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultConsultationFee applies when a doctor has not set fees yet.
var DefaultConsultationFee = decimal.NewFromInt(100)

// Doctor is a bookable practitioner. Registered doctors share the id of their account.
type Doctor struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Email      string          `gorm:"type:varchar(255)" json:"email,omitempty"`
	Specialty  string          `gorm:"type:varchar(100);not null;index" json:"specialty"`
	License    string          `gorm:"type:varchar(20)" json:"license,omitempty"`
	Rating     float64         `gorm:"not null;default:0" json:"rating"`
	Reviews    int             `gorm:"not null;default:0" json:"reviews"`
	About      string          `gorm:"type:text" json:"about,omitempty"`
	Experience int             `gorm:"not null;default:0" json:"experience"`
	Fees       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"fees"`
	CreatedAt  int64           `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt  int64           `gorm:"autoUpdateTime:milli" json:"updatedAt"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// ConsultationFee is what checkout charges for one appointment.
func (d *Doctor) ConsultationFee() decimal.Decimal {
	if d.Fees.IsPositive() {
		return d.Fees
	}
	return DefaultConsultationFee
}
