package fields

import (
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

// Render records one rendered impulse response. Rows are written by the
// render service after a synthesis completes and read back by the dashboard.
type Render struct {
	gorm.Model
	Site       string  `json:"site" gorm:"index"`
	Region     string  `json:"region"`
	SampleRate int     `json:"sample_rate_hz"`
	DurationS  float64 `json:"duration_s"`
	DurationMS int64   `json:"duration_ms"` // wall time spent synthesising
	Seed       int64   `json:"seed"`
	Bytes      int     `json:"bytes"`
	RequestID  string  `json:"request_id"`
	ClientIP   string  `json:"client_ip"`
}

// LastRender is the per-site record kept in redis alongside the render
// counters. It rides the binary marshaler so redis can store it directly.
type LastRender struct {
	Site       string    `json:"site"`
	SampleRate int       `json:"sample_rate_hz"`
	DurationS  float64   `json:"duration_s"`
	Seed       int64     `json:"seed"`
	At         time.Time `json:"at"`
}

func (l *LastRender) MarshalBinary() (data []byte, err error) {
	d, err := json.Marshal(l)
	return d, err
}

func (l *LastRender) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, l)
}
