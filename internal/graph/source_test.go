package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/nkoval/virtualcampus/backend/internal/domain"
	"github.com/nkoval/virtualcampus/backend/internal/store"
)

func sampleStore() *store.Store {
	locations := []domain.Location{
		{
			ID: "lib-1-c0", Name: "Library Corridor", Building: "lib", Floor: 1,
			ImageURL: "panos/lib-1-c0.jpg", BaseHeading: 0,
			Edges: map[domain.Direction]domain.Edge{
				domain.DirForward: domain.SingleEdge("lib-1-c1"),
			},
		},
		{
			ID: "lib-1-c1", Building: "lib", Floor: 1,
			ImageURL: "panos/lib-1-c1.jpg", BaseHeading: 180,
			Edges: map[domain.Direction]domain.Edge{
				domain.DirBack: domain.SingleEdge("lib-1-c0"),
				domain.DirDoor: domain.MultiEdge("lib-1-c0", "lib-1-elevator"),
			},
		},
		{
			ID: "lib-1-elevator", Building: "lib", Floor: 1,
			ImageURL: "panos/lib-1-elevator.jpg", BaseHeading: 90,
			FloorConnections: map[int]string{1: "lib-1-elevator", 2: "lib-1-c0"},
		},
	}
	overrides := []domain.AngleOverride{
		{LocationID: "lib-1-c1", Direction: domain.DirBack, Angle: 200},
	}
	return store.New(locations, overrides, "lib-1-c0")
}

func TestSaveStoreWritesNodesBeforeEdges(t *testing.T) {
	client := NewMemoryClient()

	if err := SaveStore(context.Background(), client, sampleStore()); err != nil {
		t.Fatalf("SaveStore failed: %v", err)
	}

	calls := client.WriteCalls()
	// 3 nodes + 4 edge rows (forward, back, two door ranks) + 2 floor
	// links + 1 override.
	if len(calls) != 10 {
		t.Fatalf("expected 10 write statements, got %d", len(calls))
	}

	firstEdge := -1
	lastNode := -1
	for i, call := range calls {
		switch call.Query {
		case upsertLocationCypher:
			lastNode = i
		case upsertEdgeCypher:
			if firstEdge == -1 {
				firstEdge = i
			}
		}
	}
	if lastNode == -1 || firstEdge == -1 || lastNode > firstEdge {
		t.Fatalf("expected all node upserts before the first edge upsert (last node %d, first edge %d)", lastNode, firstEdge)
	}
}

func TestSaveStoreMarksEntryAndRanks(t *testing.T) {
	client := NewMemoryClient()

	if err := SaveStore(context.Background(), client, sampleStore()); err != nil {
		t.Fatalf("SaveStore failed: %v", err)
	}

	entrySeen := false
	doorRanks := map[int]string{}
	for _, call := range client.WriteCalls() {
		switch call.Query {
		case upsertLocationCypher:
			if call.Params["id"] == "lib-1-c0" {
				if call.Params["entry"] != true {
					t.Fatalf("expected entry=true on lib-1-c0, got %v", call.Params["entry"])
				}
				entrySeen = true
			} else if call.Params["entry"] == true {
				t.Fatalf("unexpected entry flag on %v", call.Params["id"])
			}
		case upsertEdgeCypher:
			if call.Params["direction"] == "door" {
				doorRanks[call.Params["rank"].(int)] = call.Params["to"].(string)
			}
		}
	}
	if !entrySeen {
		t.Fatalf("entry node was never written")
	}
	if doorRanks[0] != "lib-1-c0" || doorRanks[1] != "lib-1-elevator" {
		t.Fatalf("door edge ranks do not preserve declaration order: %v", doorRanks)
	}
}

func TestSaveStorePropagatesErrors(t *testing.T) {
	boom := errors.New("connection reset")
	client := NewMemoryClient().WithError(boom)

	err := SaveStore(context.Background(), client, sampleStore())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}

func TestLoadStoreRebuildsGraph(t *testing.T) {
	client := NewMemoryClient()
	client.PushReadResult(Result{Records: []Record{
		{"id": "lib-1-c0", "name": "Library Corridor", "building": "lib", "floor": int64(1), "image": "panos/lib-1-c0.jpg", "baseHeading": float64(0), "entry": true},
		{"id": "lib-1-c1", "name": "", "building": "lib", "floor": int64(1), "image": "panos/lib-1-c1.jpg", "baseHeading": float64(180), "entry": false},
		{"id": "lib-1-elevator", "name": "", "building": "lib", "floor": int64(1), "image": "panos/lib-1-elevator.jpg", "baseHeading": float64(90), "entry": false},
	}})
	client.PushReadResult(Result{Records: []Record{
		{"from": "lib-1-c0", "direction": "forward", "rank": int64(0), "overrideAngle": nil, "to": "lib-1-c1"},
		{"from": "lib-1-c1", "direction": "back", "rank": int64(0), "overrideAngle": float64(200), "to": "lib-1-c0"},
		{"from": "lib-1-c1", "direction": "door", "rank": int64(0), "overrideAngle": nil, "to": "lib-1-c0"},
		{"from": "lib-1-c1", "direction": "door", "rank": int64(1), "overrideAngle": nil, "to": "lib-1-elevator"},
	}})
	client.PushReadResult(Result{Records: []Record{
		{"from": "lib-1-elevator", "floor": int64(1), "to": "lib-1-elevator"},
		{"from": "lib-1-elevator", "floor": int64(2), "to": "lib-1-c0"},
	}})

	s, err := LoadStore(context.Background(), client)
	if err != nil {
		t.Fatalf("LoadStore failed: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("rebuilt store is invalid: %v", err)
	}

	if s.EntryID() != "lib-1-c0" {
		t.Fatalf("expected entry lib-1-c0, got %s", s.EntryID())
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 locations, got %d", s.Len())
	}

	c1 := s.Get("lib-1-c1")
	door, ok := c1.Edge(domain.DirDoor)
	if !ok || !door.IsMulti() {
		t.Fatalf("expected a list-valued door edge, got %v", door)
	}
	targets := door.Targets()
	if targets[0] != "lib-1-c0" || targets[1] != "lib-1-elevator" {
		t.Fatalf("door targets out of order: %v", targets)
	}

	overrides := s.Overrides()
	if len(overrides) != 1 {
		t.Fatalf("expected 1 override, got %d", len(overrides))
	}
	if overrides[0].LocationID != "lib-1-c1" || overrides[0].Direction != domain.DirBack || overrides[0].Angle != 200 {
		t.Fatalf("unexpected override: %+v", overrides[0])
	}

	hub := s.Get("lib-1-elevator")
	if !hub.IsHub() {
		t.Fatalf("expected lib-1-elevator to be a hub")
	}
	if hub.FloorConnections[2] != "lib-1-c0" {
		t.Fatalf("unexpected floor link: %v", hub.FloorConnections)
	}
}

func TestLoadStoreSkipsMalformedRows(t *testing.T) {
	client := NewMemoryClient()
	client.PushReadResult(Result{Records: []Record{
		{"id": "lib-1-c0", "building": "lib", "floor": int64(1), "image": "x.jpg", "baseHeading": float64(0), "entry": true},
		{"id": "", "building": "lib"},
	}})
	client.PushReadResult(Result{Records: []Record{
		{"from": "ghost", "direction": "forward", "rank": int64(0), "to": "lib-1-c0"},
		{"from": "lib-1-c0", "direction": "forward", "rank": int64(0), "to": ""},
	}})
	client.PushReadResult(Result{})

	s, err := LoadStore(context.Background(), client)
	if err != nil {
		t.Fatalf("LoadStore failed: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 location, got %d", s.Len())
	}
	if len(s.Get("lib-1-c0").Edges) != 0 {
		t.Fatalf("malformed edge rows must be dropped, got %v", s.Get("lib-1-c0").Edges)
	}
}

func TestLoadStorePropagatesErrors(t *testing.T) {
	boom := errors.New("session expired")
	client := NewMemoryClient().WithError(boom)

	if _, err := LoadStore(context.Background(), client); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}
