// Package nav owns the per-session navigation state and is the only
// component that mutates it. All other packages in the engine are pure.
package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nkoval/virtualcampus/backend/internal/domain"
	"github.com/nkoval/virtualcampus/backend/internal/heading"
	"github.com/nkoval/virtualcampus/backend/internal/orientation"
	"github.com/nkoval/virtualcampus/backend/internal/pathfind"
	"github.com/nkoval/virtualcampus/backend/internal/store"
)

var (
	// ErrTransitionPending is returned while a previous transition's
	// preload is still in flight. First intent wins; the new call
	// mutates nothing.
	ErrTransitionPending = errors.New("a transition is already in progress")
	// ErrNoEdge is returned when the current location has no edge for
	// the requested direction.
	ErrNoEdge = errors.New("no edge in that direction")
	// ErrUnknownLocation is returned for ids absent from the graph.
	ErrUnknownLocation = errors.New("unknown location")
	// ErrNoRoute is returned when no path connects the endpoints.
	ErrNoRoute = errors.New("no route between locations")
	// ErrAlreadyThere is returned by JumpTo for the current location.
	ErrAlreadyThere = errors.New("already at that location")
)

// ImageLoader is the asset-layer contract: attempt to load the panorama
// behind the URL and report success or failure. The controller awaits the
// load before committing any state.
type ImageLoader interface {
	Load(ctx context.Context, url string) error
}

// State is the session-scoped navigation state published to consumers.
type State struct {
	LocationID    string
	Heading       float64
	Transitioning bool
}

// Listener receives the state after every committed change.
type Listener func(State)

// Options configures a Controller.
type Options struct {
	EntryID       string
	SecondsPerHop int
	Prefetch      int // neighbor images warmed after each commit; 0 disables
}

// Controller orchestrates navigation intents: edge resolution, orientation
// continuity, image preloading, and state commits.
type Controller struct {
	store    *store.Store
	headings *heading.Resolver
	orient   *orientation.Resolver
	finder   *pathfind.Finder
	loader   ImageLoader
	logger   *slog.Logger
	opts     Options

	mu       sync.Mutex
	state    State
	token    uint64
	listener Listener
}

// NewController builds a Controller positioned at the entry location.
func NewController(s *store.Store, h *heading.Resolver, o *orientation.Resolver, f *pathfind.Finder, loader ImageLoader, logger *slog.Logger, opts Options) (*Controller, error) {
	entryID := opts.EntryID
	if entryID == "" {
		entryID = s.EntryID()
	}
	entry := s.Get(entryID)
	if entry == nil {
		return nil, fmt.Errorf("%w: entry %q", ErrUnknownLocation, entryID)
	}
	return &Controller{
		store:    s,
		headings: h,
		orient:   o,
		finder:   f,
		loader:   loader,
		logger:   logger,
		opts:     opts,
		state: State{
			LocationID: entry.ID,
			Heading:    heading.Normalize(entry.BaseHeading),
		},
	}, nil
}

// SetListener registers the consumer notified after each committed state
// change. Dependency injection replaces any ambient global lookup: the
// renderer or UI layer passes its callback in directly.
func (c *Controller) SetListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = l
}

// State returns a snapshot of the current navigation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetHeading applies a raw camera adjustment (user drag/scroll) to the
// current heading. It does not count as a transition.
func (c *Controller) SetHeading(angle float64) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Heading = heading.Normalize(angle)
	return c.state
}

// Navigate moves along the named direction from the current location.
// List-valued edges resolve to their first listed target. The destination
// image is preloaded before any state commits; on failure the session
// stays where it was.
func (c *Controller) Navigate(ctx context.Context, dir domain.Direction) (State, error) {
	c.mu.Lock()
	if c.state.Transitioning {
		state := c.state
		c.mu.Unlock()
		return state, ErrTransitionPending
	}

	src := c.store.Get(c.state.LocationID)
	edge, ok := src.Edge(dir)
	if !ok || edge.IsEmpty() {
		state := c.state
		c.mu.Unlock()
		return state, fmt.Errorf("%w: %s from %s", ErrNoEdge, dir, src.ID)
	}

	dst := c.store.Get(edge.Primary())
	if dst == nil {
		state := c.state
		c.mu.Unlock()
		return state, fmt.Errorf("%w: %s", ErrUnknownLocation, edge.Primary())
	}

	newHeading, navType := c.orient.Resolve(c.state.Heading, src, dst, dir)
	c.logger.Debug("navigation resolved",
		"from", src.ID,
		"to", dst.ID,
		"direction", dir,
		"type", navType,
		"heading", newHeading,
	)

	return c.transition(ctx, dst, newHeading)
}

// NavigateToFloor moves through a hub's floor connection.
func (c *Controller) NavigateToFloor(ctx context.Context, floor int) (State, error) {
	c.mu.Lock()
	if c.state.Transitioning {
		state := c.state
		c.mu.Unlock()
		return state, ErrTransitionPending
	}

	src := c.store.Get(c.state.LocationID)
	targetID, ok := src.FloorConnections[floor]
	if !ok {
		state := c.state
		c.mu.Unlock()
		return state, fmt.Errorf("%w: floor %d from %s", ErrNoEdge, floor, src.ID)
	}
	dst := c.store.Get(targetID)
	if dst == nil {
		state := c.state
		c.mu.Unlock()
		return state, fmt.Errorf("%w: %s", ErrUnknownLocation, targetID)
	}

	newHeading, _ := c.orient.Resolve(c.state.Heading, src, dst, domain.DirFloorSelect)
	return c.transition(ctx, dst, newHeading)
}

// JumpTo teleports directly to a location. Jumps are discontinuous by
// nature (menu selection, assistant-directed relocation), so the camera
// takes the destination's base heading and no path is computed.
func (c *Controller) JumpTo(ctx context.Context, locationID string) (State, error) {
	c.mu.Lock()
	if c.state.Transitioning {
		state := c.state
		c.mu.Unlock()
		return state, ErrTransitionPending
	}
	if c.state.LocationID == locationID {
		state := c.state
		c.mu.Unlock()
		return state, ErrAlreadyThere
	}

	dst := c.store.Get(locationID)
	if dst == nil {
		state := c.state
		c.mu.Unlock()
		return state, fmt.Errorf("%w: %s", ErrUnknownLocation, locationID)
	}

	return c.transition(ctx, dst, heading.Normalize(dst.BaseHeading))
}

// PlanRouteTo runs the path finder from the current location and decorates
// the result with a narration and a time estimate. It never mutates
// navigation state; stepping animations call Navigate/JumpTo themselves.
func (c *Controller) PlanRouteTo(locationID string) (domain.Route, error) {
	current := c.State().LocationID
	result := c.finder.FindPath(current, locationID)
	if result == nil {
		if c.store.Get(locationID) == nil {
			return domain.Route{}, fmt.Errorf("%w: %s", ErrUnknownLocation, locationID)
		}
		return domain.Route{}, fmt.Errorf("%w: %s to %s", ErrNoRoute, current, locationID)
	}
	return domain.Route{
		PathResult:    *result,
		Description:   c.finder.Describe(result),
		EstimatedTime: pathfind.Estimate(result, c.opts.SecondsPerHop),
	}, nil
}

// transition preloads the destination image and commits the new state.
// Caller holds the mutex; transition releases it around the blocking load.
// The request token guards against a stale slow load committing after a
// newer navigation superseded it.
func (c *Controller) transition(ctx context.Context, dst *domain.Location, newHeading float64) (State, error) {
	c.state.Transitioning = true
	c.token++
	token := c.token
	c.notifyLocked()
	c.mu.Unlock()

	err := c.loader.Load(ctx, dst.ImageURL)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.token {
		// Superseded; whoever superseded owns the state now.
		return c.state, nil
	}
	c.state.Transitioning = false

	if err != nil {
		c.notifyLocked()
		c.logger.Warn("image preload failed", "location", dst.ID, "url", dst.ImageURL, "error", err)
		return c.state, fmt.Errorf("load %s: %w", dst.ID, err)
	}

	c.state.LocationID = dst.ID
	c.state.Heading = newHeading
	c.notifyLocked()

	if c.opts.Prefetch > 0 {
		go c.prefetchNeighbors(dst.ID)
	}
	return c.state, nil
}

func (c *Controller) notifyLocked() {
	if c.listener != nil {
		c.listener(c.state)
	}
}
