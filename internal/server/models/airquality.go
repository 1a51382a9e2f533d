package models

import "time"

// AirQualityReading is a raw AQ sample in a user's history, independent of
// the passport. Timestamp is Unix epoch milliseconds and Date its UTC day.
type AirQualityReading struct {
	ID           string    `json:"id"`
	UserKey      string    `json:"userKey"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	LocationName string    `json:"locationName"`
	AQI          int       `json:"aqi"`
	PM25         *float64  `json:"pm25"`
	PM10         *float64  `json:"pm10"`
	NO2          *float64  `json:"no2"`
	O3           *float64  `json:"o3"`
	CO           *float64  `json:"co"`
	SO2          *float64  `json:"so2"`
	Source       string    `json:"source"`
	RiskLevel    string    `json:"riskLevel"`
	Timestamp    int64     `json:"timestamp"`
	Date         string    `json:"date"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DaySummary aggregates the readings of one UTC day.
type DaySummary struct {
	Date       string `json:"date"`
	AverageAQI int    `json:"averageAqi"`
	MaxAQI     int    `json:"maxAqi"`
	Samples    int    `json:"samples"`
}

// Export upload states.
const (
	ExportPending   = "pending"
	ExportCompleted = "completed"
)

// HistoryExport is a CSV snapshot of a user's history in object storage.
// URL and ExpiresAt describe a presigned download link and are not stored.
type HistoryExport struct {
	ID         string     `json:"id"`
	UserKey    string     `json:"userKey"`
	StorageKey string     `json:"key"`
	Rows       int        `json:"rows"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	URL        string     `json:"url,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}
