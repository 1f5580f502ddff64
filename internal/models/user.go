package models

import (
	"database/sql/driver"
	"time"
)

type Contact struct {
	Phone         string `json:"phone"`
	CountryCode   string `json:"countryCode"`
	PhoneVerified bool   `json:"phoneVerified"`
	EmailVerified bool   `json:"emailVerified"`
}

func (c Contact) Value() (driver.Value, error) { return jsonColumnValue(c) }
func (c *Contact) Scan(src any) error          { return scanJSONColumn(src, c) }

// Role flags. Professional is granted only by profile completion.
type Role struct {
	Client       bool `json:"client"`
	Professional bool `json:"professional"`
}

func (r Role) Value() (driver.Value, error) { return jsonColumnValue(r) }
func (r *Role) Scan(src any) error          { return scanJSONColumn(src, r) }

type User struct {
	UID              string     `gorm:"primaryKey;type:varchar(64)" json:"uid"`
	Email            string     `gorm:"uniqueIndex;not null;type:varchar(255)" json:"email"`
	DisplayName      string     `json:"displayName"`
	PhotoURL         *string    `json:"photoURL"`
	ProfilePictureID *string    `json:"profilePictureId"`
	Contact          Contact    `gorm:"type:json" json:"contact"`
	Role             Role       `gorm:"type:json" json:"role"`
	IsSetupCompleted bool       `gorm:"not null;default:false" json:"isSetupCompleted"`
	GoogleID         string     `gorm:"index;type:varchar(64)" json:"-"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	SoftDelete
}

func (User) TableName() string { return "users" }

// NewUser returns an account with the default client role.
func NewUser(uid, email, displayName string) *User {
	now := time.Now()
	return &User{
		UID:         uid,
		Email:       email,
		DisplayName: displayName,
		Role:        Role{Client: true},
		LastLogin:   &now,
	}
}
