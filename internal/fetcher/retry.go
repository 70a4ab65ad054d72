package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/config"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

// Policy describes the shared retry behavior for origin fetches. Two
// distinct regimes apply:
//
//   - Transport errors and HTTP failures consume the bounded attempt
//     budget, with a randomized gap from the backoff window between
//     attempts.
//   - HTTP 429 never consumes the budget. The fetch waits a randomized gap
//     from the rate-limit window (or the origin's Retry-After, whichever is
//     longer) and tries again indefinitely; rate limiting is expected to be
//     transient and eventually lift.
type Policy struct {
	MaxAttempts  int
	BackoffMin   time.Duration
	BackoffMax   time.Duration
	RateLimitMin time.Duration
	RateLimitMax time.Duration
}

// PolicyFromConfig builds a Policy from the retry configuration.
func PolicyFromConfig(cfg *config.Retry) Policy {
	return Policy{
		MaxAttempts:  cfg.MaxAttempts,
		BackoffMin:   cfg.BackoffMin,
		BackoffMax:   cfg.BackoffMax,
		RateLimitMin: cfg.RateLimitMin,
		RateLimitMax: cfg.RateLimitMax,
	}
}

// FetchWithRetry runs the request through the fetcher under the policy.
// It returns the first successful (2xx) response, or the last failure once
// the attempt budget is spent. Cancelling the context interrupts both the
// fetch and any backoff sleep.
func FetchWithRetry(ctx context.Context, f Fetcher, req *types.Request, p Policy, logger *slog.Logger) (*types.Response, error) {
	attempts := 0
	var lastErr error

	for {
		resp, err := f.Fetch(ctx, req)

		switch {
		case err == nil && resp.IsSuccess():
			return resp, nil

		case err == nil && resp.IsRateLimited():
			// Some fetchers hand a 429 back as a plain response rather
			// than a FetchError; it gets the same unbounded wait.
			wait := randDuration(p.RateLimitMin, p.RateLimitMax)
			if ra := parseRetryAfter(resp.Headers.Get("Retry-After")); ra > wait {
				wait = ra
			}
			logger.Warn("rate limited, waiting",
				"url", req.URLString(),
				"wait", wait,
			)
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue

		case err == nil:
			// Well-formed non-2xx response.
			lastErr = &types.FetchError{
				URL:        req.URLString(),
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("HTTP %d", resp.StatusCode),
				Retryable:  true,
			}

		default:
			var fe *types.FetchError
			if errors.As(err, &fe) {
				if fe.IsRateLimited() {
					wait := randDuration(p.RateLimitMin, p.RateLimitMax)
					if fe.RetryAfter > wait {
						wait = fe.RetryAfter
					}
					logger.Warn("rate limited, waiting",
						"url", req.URLString(),
						"wait", wait,
					)
					if err := sleep(ctx, wait); err != nil {
						return nil, err
					}
					continue // does not consume the attempt budget
				}
				if !fe.Retryable {
					return nil, err
				}
			}
			lastErr = err
		}

		attempts++
		if attempts >= p.MaxAttempts {
			logRetryExhausted(logger, req, lastErr)
			return nil, fmt.Errorf("%w after %d attempts: %w", types.ErrMaxRetries, attempts, lastErr)
		}

		gap := randDuration(p.BackoffMin, p.BackoffMax)
		logger.Debug("fetch failed, backing off",
			"url", req.URLString(),
			"attempt", attempts,
			"max_attempts", p.MaxAttempts,
			"gap", gap,
			"error", lastErr,
		)
		if err := sleep(ctx, gap); err != nil {
			return nil, err
		}
	}
}

// logRetryExhausted emits the failure-specific diagnostic: the status code
// for an HTTP failure, the underlying message for a transport error.
func logRetryExhausted(logger *slog.Logger, req *types.Request, err error) {
	var fe *types.FetchError
	if errors.As(err, &fe) && fe.StatusCode > 0 {
		logger.Error("retries exhausted", "url", req.URLString(), "status", fe.StatusCode)
		return
	}
	logger.Error("retries exhausted", "url", req.URLString(), "error", err)
}

// randDuration picks a uniform random duration from [min, max].
func randDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// sleep blocks for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
