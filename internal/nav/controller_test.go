package nav

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkoval/virtualcampus/backend/internal/domain"
	"github.com/nkoval/virtualcampus/backend/internal/heading"
	"github.com/nkoval/virtualcampus/backend/internal/orientation"
	"github.com/nkoval/virtualcampus/backend/internal/pathfind"
	"github.com/nkoval/virtualcampus/backend/internal/store"
)

// stubLoader records load calls and can fail or block on demand.
type stubLoader struct {
	mu      sync.Mutex
	loaded  []string
	failFor map[string]error
	gate    chan struct{} // when set, Load blocks until the gate closes
}

func (l *stubLoader) Load(_ context.Context, url string) error {
	l.mu.Lock()
	gate := l.gate
	l.loaded = append(l.loaded, url)
	err := l.failFor[url]
	l.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (l *stubLoader) loadedURLs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.loaded...)
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	locations := []domain.Location{
		{
			ID: "lib-1-c0", Building: "lib", Floor: 1, ImageURL: "panos/lib-1-c0.jpg", BaseHeading: 0,
			Edges: map[domain.Direction]domain.Edge{
				domain.DirForward: domain.SingleEdge("lib-1-c1"),
			},
		},
		{
			ID: "lib-1-c1", Building: "lib", Floor: 1, ImageURL: "panos/lib-1-c1.jpg", BaseHeading: 180,
			Edges: map[domain.Direction]domain.Edge{
				domain.DirBack:     domain.SingleEdge("lib-1-c0"),
				domain.DirElevator: domain.SingleEdge("lib-1-elevator"),
			},
		},
		{
			ID: "lib-1-elevator", Building: "lib", Floor: 1, ImageURL: "panos/lib-1-elevator.jpg", BaseHeading: 90,
			Edges: map[domain.Direction]domain.Edge{
				domain.DirDoor: domain.SingleEdge("lib-1-c1"),
			},
			FloorConnections: map[int]string{1: "lib-1-elevator", 2: "lib-2-elevator"},
		},
		{
			ID: "lib-2-elevator", Building: "lib", Floor: 2, ImageURL: "panos/lib-2-elevator.jpg", BaseHeading: 270,
			FloorConnections: map[int]string{1: "lib-1-elevator", 2: "lib-2-elevator"},
		},
		{ID: "gym-1-floor", Building: "gym", Floor: 1, ImageURL: "panos/gym-1-floor.jpg", BaseHeading: 45},
	}
	s := store.New(locations, nil, "lib-1-c0")
	require.NoError(t, s.Validate())
	return s
}

func testController(t *testing.T, loader ImageLoader, opts Options) *Controller {
	t.Helper()
	s := testStore(t)
	h := heading.NewResolver(s.Overrides())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := NewController(s, h, orientation.New(h), pathfind.New(s), loader, logger, opts)
	require.NoError(t, err)
	return c
}

func TestNewControllerStartsAtEntry(t *testing.T) {
	c := testController(t, &stubLoader{}, Options{})
	state := c.State()
	assert.Equal(t, "lib-1-c0", state.LocationID)
	assert.Equal(t, float64(0), state.Heading)
	assert.False(t, state.Transitioning)
}

func TestNewControllerUnknownEntry(t *testing.T) {
	s := testStore(t)
	h := heading.NewResolver(nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewController(s, h, orientation.New(h), pathfind.New(s), &stubLoader{}, logger, Options{EntryID: "nowhere"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownLocation)
}

func TestNavigateCommits(t *testing.T) {
	loader := &stubLoader{}
	c := testController(t, loader, Options{})

	state, err := c.Navigate(context.Background(), domain.DirForward)
	require.NoError(t, err)
	assert.Equal(t, "lib-1-c1", state.LocationID)
	assert.False(t, state.Transitioning)
	assert.Equal(t, []string{"panos/lib-1-c1.jpg"}, loader.loadedURLs())
}

func TestNavigateNoEdge(t *testing.T) {
	c := testController(t, &stubLoader{}, Options{})

	state, err := c.Navigate(context.Background(), domain.DirLeft)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEdge)
	assert.Equal(t, "lib-1-c0", state.LocationID, "state unchanged after a rejected move")
}

func TestNavigateLoadFailureKeepsState(t *testing.T) {
	boom := errors.New("panorama fetch failed")
	loader := &stubLoader{failFor: map[string]error{"panos/lib-1-c1.jpg": boom}}
	c := testController(t, loader, Options{})

	state, err := c.Navigate(context.Background(), domain.DirForward)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "lib-1-c0", state.LocationID)
	assert.Equal(t, float64(0), state.Heading)
	assert.False(t, state.Transitioning)
}

func TestNavigateRejectsConcurrentIntent(t *testing.T) {
	gate := make(chan struct{})
	loader := &stubLoader{gate: gate}
	c := testController(t, loader, Options{})

	transitioning := make(chan struct{})
	var once sync.Once
	c.SetListener(func(s State) {
		if s.Transitioning {
			once.Do(func() { close(transitioning) })
		}
	})

	done := make(chan State, 1)
	go func() {
		state, err := c.Navigate(context.Background(), domain.DirForward)
		if err == nil {
			done <- state
		}
	}()

	select {
	case <-transitioning:
	case <-time.After(time.Second):
		t.Fatal("transition never started")
	}

	_, err := c.Navigate(context.Background(), domain.DirForward)
	assert.ErrorIs(t, err, ErrTransitionPending)
	_, err = c.JumpTo(context.Background(), "gym-1-floor")
	assert.ErrorIs(t, err, ErrTransitionPending)

	close(gate)
	select {
	case state := <-done:
		assert.Equal(t, "lib-1-c1", state.LocationID, "first intent wins")
	case <-time.After(time.Second):
		t.Fatal("transition never completed")
	}
}

func TestNavigateToFloor(t *testing.T) {
	loader := &stubLoader{}
	c := testController(t, loader, Options{})

	_, err := c.Navigate(context.Background(), domain.DirForward)
	require.NoError(t, err)
	_, err = c.Navigate(context.Background(), domain.DirElevator)
	require.NoError(t, err)
	require.Equal(t, "lib-1-elevator", c.State().LocationID)

	state, err := c.NavigateToFloor(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "lib-2-elevator", state.LocationID)

	_, err = c.NavigateToFloor(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNoEdge)
}

func TestNavigateToFloorFromNonHub(t *testing.T) {
	c := testController(t, &stubLoader{}, Options{})
	_, err := c.NavigateToFloor(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNoEdge)
}

func TestJumpTo(t *testing.T) {
	loader := &stubLoader{}
	c := testController(t, loader, Options{})

	state, err := c.JumpTo(context.Background(), "gym-1-floor")
	require.NoError(t, err)
	assert.Equal(t, "gym-1-floor", state.LocationID)
	assert.Equal(t, float64(45), state.Heading, "jumps adopt the destination base heading")

	_, err = c.JumpTo(context.Background(), "gym-1-floor")
	assert.ErrorIs(t, err, ErrAlreadyThere)

	_, err = c.JumpTo(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrUnknownLocation)
}

func TestSetHeadingNormalizes(t *testing.T) {
	c := testController(t, &stubLoader{}, Options{})
	state := c.SetHeading(-30)
	assert.Equal(t, float64(330), state.Heading)
	state = c.SetHeading(725)
	assert.Equal(t, float64(5), state.Heading)
}

func TestPlanRouteToDoesNotMutate(t *testing.T) {
	c := testController(t, &stubLoader{}, Options{SecondsPerHop: 10})

	route, err := c.PlanRouteTo("lib-2-elevator")
	require.NoError(t, err)
	assert.Equal(t, []string{"lib-1-c0", "lib-1-c1", "lib-1-elevator", "lib-2-elevator"}, route.Path)
	assert.Equal(t, 3, route.Distance)
	assert.Equal(t, 30*time.Second, route.EstimatedTime)
	assert.NotEmpty(t, route.Description)

	assert.Equal(t, "lib-1-c0", c.State().LocationID, "planning never moves the session")
}

func TestPlanRouteToErrors(t *testing.T) {
	c := testController(t, &stubLoader{}, Options{})

	_, err := c.PlanRouteTo("nowhere")
	assert.ErrorIs(t, err, ErrUnknownLocation)

	_, err = c.PlanRouteTo("gym-1-floor")
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestListenerObservesLifecycle(t *testing.T) {
	c := testController(t, &stubLoader{}, Options{})

	var mu sync.Mutex
	var states []State
	c.SetListener(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	_, err := c.Navigate(context.Background(), domain.DirForward)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 2)
	assert.True(t, states[0].Transitioning)
	assert.Equal(t, "lib-1-c0", states[0].LocationID, "transition start precedes the commit")
	assert.False(t, states[1].Transitioning)
	assert.Equal(t, "lib-1-c1", states[1].LocationID)
}

func TestPrefetchWarmsNeighbors(t *testing.T) {
	loader := &stubLoader{}
	c := testController(t, loader, Options{Prefetch: 2})

	_, err := c.Navigate(context.Background(), domain.DirForward)
	require.NoError(t, err)

	// Prefetch runs detached; poll until the neighbor images show up.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		urls := loader.loadedURLs()
		if contains(urls, "panos/lib-1-c0.jpg") && contains(urls, "panos/lib-1-elevator.jpg") {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("neighbor images were not prefetched; loaded: %v", loader.loadedURLs())
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
