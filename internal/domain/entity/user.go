package entity

import (
	"github.com/google/uuid"
)

// Account is the credential record owned by the auth provider
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	CreatedAt int64     `gorm:"autoCreateTime:milli" json:"createdAt"`
}

func (Account) TableName() string {
	return "accounts"
}

// UserProfile holds patient-facing profile data, keyed by account id.
// Email is copied from the account at sign-up and never changed afterwards.
type UserProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`
	Email     string    `gorm:"type:varchar(255);not null" json:"email"`
	CreatedAt int64     `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt int64     `gorm:"autoUpdateTime:milli" json:"updatedAt"`
}

func (UserProfile) TableName() string {
	return "users"
}

// Identity is the authenticated principal delivered by the auth provider.
type Identity struct {
	ID    uuid.UUID
	Email string
}
