package models

import (
	"time"

	"github.com/lib/pq"
)

// HealthProfile carries the self-reported health context of a userKey.
type HealthProfile struct {
	UserKey         string         `json:"userKey"`
	Age             *int           `json:"age"`
	Gender          string         `json:"gender,omitempty"`
	ActivityLevel   string         `json:"activityLevel,omitempty"`
	OutdoorExposure string         `json:"outdoorExposure,omitempty"`
	Conditions      pq.StringArray `json:"conditions"`
	Sensitivity     string         `json:"sensitivity,omitempty"`
	IsComplete      bool           `json:"isComplete"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// Complete reports whether the fields needed for personalised advice are set.
func (h *HealthProfile) Complete() bool {
	return h.Age != nil && h.ActivityLevel != "" && h.OutdoorExposure != ""
}
