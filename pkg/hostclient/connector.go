package hostclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// OpenFunc dials one connection-string candidate.
type OpenFunc func(ctx context.Context, url string) (Client, error)

// Connector establishes a Client from a fixed, bounded candidate list: the
// primary URL first, then each fallback once, in order. There is no retry
// beyond that list; on total failure the per-candidate errors are joined and
// returned together.
type Connector struct {
	URL          string
	FallbackURLs []string
	Open         OpenFunc
	Logger       *slog.Logger
}

// Connect tries each candidate once and returns the first Client that
// opens. The returned error satisfies errors.Is against ErrHostUnavailable
// when every candidate failed or no open function was provided.
func (c *Connector) Connect(ctx context.Context) (Client, error) {
	if c.Open == nil {
		return nil, fmt.Errorf("%w: no open function configured", ErrHostUnavailable)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	candidates := make([]string, 0, 1+len(c.FallbackURLs))
	candidates = append(candidates, c.URL)
	candidates = append(candidates, c.FallbackURLs...)

	var errs []error
	for i, url := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		client, err := c.Open(ctx, url)
		if err == nil {
			if i > 0 {
				logger.Debug("connected via fallback candidate", "candidate", i+1, "of", len(candidates))
			}
			return client, nil
		}
		logger.Debug("host candidate failed", "candidate", i+1, "of", len(candidates), "error", err)
		errs = append(errs, fmt.Errorf("candidate %d/%d: %w", i+1, len(candidates), err))
	}
	return nil, fmt.Errorf("%w: %w", ErrHostUnavailable, errors.Join(errs...))
}
