package models

import (
	"time"

	"github.com/lib/pq"
)

// Profile is the gamified passport of one userKey.
type Profile struct {
	ID             string    `json:"id"`
	UserKey        string    `json:"userKey"`
	UserID         *string   `json:"userId"`
	Nickname       string    `json:"nickname,omitempty"`
	HomeCity       string    `json:"homeCity,omitempty"`
	Points         int       `json:"points"`
	Streak         int       `json:"streak"`
	BestStreak     int       `json:"bestStreak"`
	LastActiveDate string    `json:"lastActiveDate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Exposure is one logged air-quality sample attributed to a profile.
// Timestamp is Unix epoch milliseconds.
type Exposure struct {
	ID           string         `json:"id"`
	ProfileID    string         `json:"profileId"`
	Lat          float64        `json:"lat"`
	Lon          float64        `json:"lon"`
	LocationName string         `json:"locationName"`
	Timestamp    int64          `json:"timestamp"`
	PM25         *float64       `json:"pm25"`
	NO2          *float64       `json:"no2"`
	CO           *float64       `json:"co"`
	Mode         string         `json:"mode,omitempty"`
	RiskLevel    string         `json:"riskLevel"`
	Tips         pq.StringArray `json:"tips"`
	Score        int            `json:"score"`
	CreatedAt    time.Time      `json:"createdAt"`
}
