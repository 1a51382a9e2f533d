package models

import "time"

// ExposureSummary is the result of logging one exposure.
type ExposureSummary struct {
	ExposureID string   `json:"exposureId"`
	Points     int      `json:"points"`
	Streak     int      `json:"streak"`
	BestStreak int      `json:"bestStreak"`
	Score      int      `json:"score"`
	RiskLevel  string   `json:"riskLevel"`
	Tips       []string `json:"tips"`
}

// PassportView is a profile with its most recent exposures.
// AverageScore and Latest are nil when there are no exposures.
type PassportView struct {
	Profile      *Profile    `json:"profile"`
	Exposures    []*Exposure `json:"exposures"`
	AverageScore *int        `json:"averageScore"`
	Latest       *Exposure   `json:"latest"`
}

// TrendPoint is the mean score of one UTC day.
type TrendPoint struct {
	Day     string `json:"day"`
	Average int    `json:"average"`
	Samples int    `json:"samples"`
}

// InsightsView summarises recent exposures by day.
type InsightsView struct {
	Profile     *Profile     `json:"profile"`
	Trend       []TrendPoint `json:"trend"`
	CleanStreak int          `json:"cleanStreak"`
	SampleCount int          `json:"sampleCount"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserKey   string    `json:"userKey"`
	User      *User     `json:"user"`
}

// SessionInfo describes a live session.
type SessionInfo struct {
	User      *User     `json:"user"`
	UserKey   string    `json:"userKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}
