package media

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/fetcher"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

// ProfileCache holds creator profile-picture and banner bytes, keyed by
// creator URL. It is owned by the caller and passed by reference wherever
// profile imagery is needed; entries are populated on first access and never
// silently invalidated.
type ProfileCache struct {
	fetcher fetcher.Fetcher
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string][]byte
}

// NewProfileCache creates an empty cache backed by the given fetcher.
func NewProfileCache(f fetcher.Fetcher, logger *slog.Logger) *ProfileCache {
	return &ProfileCache{
		fetcher: f,
		logger:  logger.With("component", "profile_cache"),
		entries: make(map[string][]byte),
	}
}

// ProfilePicture returns the creator's profile-picture bytes, fetching on
// first access.
func (c *ProfileCache) ProfilePicture(ctx context.Context, creator *types.Creator) ([]byte, error) {
	if creator.ProfilePictureURL == "" {
		return nil, fmt.Errorf("creator %s has no profile picture", creator.URL)
	}
	return c.get(ctx, creator.URL+"#icon", creator.ProfilePictureURL)
}

// Banner returns the creator's banner bytes, fetching on first access.
func (c *ProfileCache) Banner(ctx context.Context, creator *types.Creator) ([]byte, error) {
	if creator.BannerURL == "" {
		return nil, fmt.Errorf("creator %s has no banner", creator.URL)
	}
	return c.get(ctx, creator.URL+"#banner", creator.BannerURL)
}

func (c *ProfileCache) get(ctx context.Context, key, imageURL string) ([]byte, error) {
	c.mu.Lock()
	if data, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	req, err := types.NewRequest(imageURL)
	if err != nil {
		return nil, err
	}
	req.Tag = "binary"

	resp, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch profile image: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch profile image: HTTP %d", resp.StatusCode)
	}

	c.mu.Lock()
	c.entries[key] = resp.Body
	c.mu.Unlock()

	c.logger.Debug("profile image cached", "key", key, "size", len(resp.Body))
	return resp.Body, nil
}
