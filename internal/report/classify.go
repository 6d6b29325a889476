// Package report sorts check results into GREEN, RED and EXCEPTION buckets
// and renders them as text tables.
package report

import (
	"fmt"

	"github.com/hamed0406/sitecheck/internal/domain"
)

// Row is one (URL, condition) entry in a bucket. Error is only set for
// EXCEPTION rows.
type Row struct {
	URL       string `json:"url"`
	Condition string `json:"condition"`
	Error     string `json:"error,omitempty"`
}

type Buckets struct {
	Green     []Row `json:"green"`
	Red       []Row `json:"red"`
	Exception []Row `json:"exception"`
}

// Classify places every condition of every result in exactly one bucket.
// A recorded error wins over the ok flag. Rows keep URL order, then
// category order.
func Classify(results []domain.CheckResult) Buckets {
	var b Buckets
	for _, r := range results {
		for _, c := range domain.Categories {
			ok, errText := r.Outcome(c)
			switch {
			case errText != "":
				b.Exception = append(b.Exception, Row{URL: r.URL, Condition: c.String(), Error: errText})
			case ok:
				b.Green = append(b.Green, Row{URL: r.URL, Condition: c.String()})
			default:
				b.Red = append(b.Red, Row{URL: r.URL, Condition: c.String()})
			}
		}
	}
	return b
}

// Healthy reports whether every condition landed in GREEN.
func (b Buckets) Healthy() bool {
	return len(b.Red) == 0 && len(b.Exception) == 0
}

func (b Buckets) Summary() string {
	return fmt.Sprintf("%d green, %d red, %d exception", len(b.Green), len(b.Red), len(b.Exception))
}
