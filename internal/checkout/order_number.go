package checkout

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NewOrderNumber returns YYYYMMDD-NNNN with NNNN in [1000, 9999]. Numbers are
// not unique; collisions are retried by the submitter.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s-%d", now.Format("20060102"), 1000+rand.IntN(9000))
}
