package realtime

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// newBackoff: экспоненциальная задержка от min с потолком max.
// Сбрасывается созданием нового экземпляра после успешного открытия.
func newBackoff(minDelay, maxDelay time.Duration) retry.Backoff {
	if minDelay <= 0 {
		minDelay = time.Second
	}

	if maxDelay < minDelay {
		maxDelay = minDelay
	}

	return retry.WithCappedDuration(maxDelay, retry.NewExponential(minDelay))
}
