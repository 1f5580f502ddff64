package models

import "time"

// EmailNotification is a marketing-mail preference keyed by address. It
// exists independently of any account.
type EmailNotification struct {
	Email             string    `gorm:"primaryKey;type:varchar(254)" json:"email"`
	Name              string    `gorm:"type:varchar(80)" json:"name"`
	NewsLetterProduct bool      `gorm:"not null;default:false" json:"newsLetterProduct"`
	IsActive          bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (EmailNotification) TableName() string { return "email_notifications" }

func NewEmailNotification(email, name string) *EmailNotification {
	return &EmailNotification{
		Email:             email,
		Name:              name,
		NewsLetterProduct: true,
		IsActive:          true,
	}
}
