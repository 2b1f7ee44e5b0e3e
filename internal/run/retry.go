package run

import (
	"math/rand"
	"time"

	"github.com/CaioVictorMota/whitedwarf/internal/constants"
)

// maxBackoffShift bounds the exponent so the shift cannot overflow on long
// retry sequences.
const maxBackoffShift = 6

// Backoff returns a wait duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > constants.MaxRetryBackoffSeconds*time.Second {
		base = constants.MaxRetryBackoffSeconds * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}
