package models

import (
	"database/sql/driver"
	"time"
)

type ClientUsageStats struct {
	MoneySpent         float64 `json:"moneySpent"`
	CompletedOrders    int     `json:"completedOrders"`
	ReviewsGiven       int     `json:"reviewsGiven"`
	AverageRatingGiven float64 `json:"averageRatingGiven"`
}

func (s ClientUsageStats) Value() (driver.Value, error) { return jsonColumnValue(s) }
func (s *ClientUsageStats) Scan(src any) error          { return scanJSONColumn(src, s) }

type ClientProfile struct {
	UID              string           `gorm:"primaryKey;type:varchar(64)" json:"uid"`
	UsageStats       ClientUsageStats `gorm:"type:json" json:"usageStats"`
	Ranking          Ranking          `gorm:"type:json" json:"ranking"`
	IsSetupCompleted bool             `gorm:"not null;default:false" json:"isSetupCompleted"`
	CreatedAt        time.Time        `json:"createdAt"`
	SoftDelete
}

func (ClientProfile) TableName() string { return "client_profiles" }

func NewClientProfile(uid string) *ClientProfile {
	return &ClientProfile{
		UID:     uid,
		Ranking: Ranking{Level: RankingBronze},
	}
}
