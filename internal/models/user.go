// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username        string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email           string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string     `json:"-" gorm:"size:255;not null"`
	UserType        UserType   `json:"user_type" gorm:"type:varchar(20);not null"`
	Status          UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProfileData     JSONB      `json:"profile_data" gorm:"type:jsonb"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLoginAt     *time.Time `json:"last_login_at"`

	// Relationships
	OriginalWorks   []OriginalWork     `json:"original_works,omitempty" gorm:"foreignKey:OwnerID"`
	DerivativeWorks []DerivativeWork   `json:"derivative_works,omitempty" gorm:"foreignKey:OwnerID"`
	Requests        []ClearanceRequest `json:"requests,omitempty" gorm:"foreignKey:RequesterID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// MergeProfileData overlays the given fields onto the stored profile,
// keeping keys the update does not mention.
func (u *User) MergeProfileData(data map[string]interface{}) {
	if len(data) == 0 {
		return
	}
	if u.ProfileData == nil {
		u.ProfileData = make(JSONB)
	}
	for key, value := range data {
		u.ProfileData[key] = value
	}
}
