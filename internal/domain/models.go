package domain

import "time"

// Category is one of the three conditions reported for every URL.
type Category int

const (
	Availability Category = iota
	ResponseTime
	SSL
)

// Categories lists the conditions in report order.
var Categories = []Category{Availability, ResponseTime, SSL}

func (c Category) String() string {
	switch c {
	case Availability:
		return "Availability"
	case ResponseTime:
		return "Response Time"
	case SSL:
		return "SSL"
	default:
		return "Unknown"
	}
}

// CheckResult is the outcome of one pass over one URL.
//
// An empty *Err string means no error was recorded for that condition.
// ResponseTimeErr always mirrors AvailabilityErr.
type CheckResult struct {
	URL string `json:"url"`

	AvailabilityOK  bool   `json:"availability_ok"`
	AvailabilityErr string `json:"availability_error,omitempty"`

	ResponseTimeOK  bool   `json:"response_time_ok"`
	ResponseTimeErr string `json:"response_time_error,omitempty"`

	SSLOK  bool   `json:"ssl_ok"`
	SSLErr string `json:"ssl_error,omitempty"`

	HTTPStatus    int       `json:"http_status,omitempty"`
	LatencyMS     *float64  `json:"latency_ms"`     // nil when the request failed
	DaysRemaining *int      `json:"days_remaining"` // nil when the TLS check failed
	CheckedAt     time.Time `json:"checked_at"`
}

// Outcome returns the ok flag and error text recorded for c.
func (r CheckResult) Outcome(c Category) (bool, string) {
	switch c {
	case Availability:
		return r.AvailabilityOK, r.AvailabilityErr
	case ResponseTime:
		return r.ResponseTimeOK, r.ResponseTimeErr
	case SSL:
		return r.SSLOK, r.SSLErr
	default:
		return false, ""
	}
}
