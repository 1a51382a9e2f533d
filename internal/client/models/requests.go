package models

// ExposureRequest is the body of POST /api/v1/passport/exposures. UserKey is
// left empty by the CLI; the server fills it from the session.
type ExposureRequest struct {
	UserKey      string   `json:"userKey,omitempty"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	LocationName string   `json:"locationName"`
	PM25         *float64 `json:"pm25,omitempty"`
	NO2          *float64 `json:"no2,omitempty"`
	CO           *float64 `json:"co,omitempty"`
	Mode         string   `json:"mode,omitempty"`
	Timestamp    *int64   `json:"timestamp,omitempty"`
}

type HealthProfileRequest struct {
	Age             *int     `json:"age"`
	Gender          string   `json:"gender,omitempty"`
	ActivityLevel   string   `json:"activityLevel,omitempty"`
	OutdoorExposure string   `json:"outdoorExposure,omitempty"`
	Conditions      []string `json:"conditions"`
	Sensitivity     string   `json:"sensitivity,omitempty"`
}
