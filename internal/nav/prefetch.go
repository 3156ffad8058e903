package nav

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// prefetchTimeout bounds the background warmup; a slow CDN must never pin
// goroutines past the point anyone cares about the result.
const prefetchTimeout = 30 * time.Second

// prefetchNeighbors warms the images of every node reachable from the
// committed location so the next transition's preload is usually a cache
// hit. Failures are logged and swallowed: warmup is an optimization, never
// a navigation outcome.
func (c *Controller) prefetchNeighbors(locationID string) {
	ctx, cancel := context.WithTimeout(context.Background(), prefetchTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Prefetch)

	for _, neighborID := range c.store.Neighbors(locationID) {
		neighbor := c.store.Get(neighborID)
		if neighbor == nil || neighbor.ImageURL == "" {
			continue
		}
		url := neighbor.ImageURL
		id := neighbor.ID
		g.Go(func() error {
			if err := c.loader.Load(ctx, url); err != nil {
				c.logger.Debug("neighbor prefetch failed", "location", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
