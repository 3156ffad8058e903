package graph

import (
	"context"
	"fmt"

	"github.com/nkoval/virtualcampus/backend/internal/domain"
	"github.com/nkoval/virtualcampus/backend/internal/store"
)

// Cypher statements for mirroring the campus graph. Locations become
// (:Location) nodes; directional edges become CONNECTS_TO relationships
// carrying the direction name and, for list-valued edges, a rank; hub
// floor selections become FLOOR_LINK relationships.
const (
	upsertLocationCypher = `
MERGE (l:Location {id: $id})
SET l.name = $name,
    l.building = $building,
    l.floor = $floor,
    l.image = $image,
    l.base_heading = $baseHeading,
    l.entry = $entry`

	upsertEdgeCypher = `
MATCH (a:Location {id: $from})
MATCH (b:Location {id: $to})
MERGE (a)-[r:CONNECTS_TO {direction: $direction, rank: $rank}]->(b)`

	upsertFloorLinkCypher = `
MATCH (a:Location {id: $from})
MATCH (b:Location {id: $to})
MERGE (a)-[r:FLOOR_LINK {floor: $floor}]->(b)`

	setOverrideCypher = `
MATCH (a:Location {id: $from})-[r:CONNECTS_TO {direction: $direction}]->()
SET r.override_angle = $angle`

	readLocationsCypher = `
MATCH (l:Location)
RETURN l.id AS id, l.name AS name, l.building AS building, l.floor AS floor,
       l.image AS image, l.base_heading AS baseHeading, l.entry AS entry
ORDER BY id`

	readEdgesCypher = `
MATCH (a:Location)-[r:CONNECTS_TO]->(b:Location)
RETURN a.id AS from, r.direction AS direction, coalesce(r.rank, 0) AS rank,
       r.override_angle AS overrideAngle, b.id AS to
ORDER BY from, direction, rank`

	readFloorLinksCypher = `
MATCH (a:Location)-[r:FLOOR_LINK]->(b:Location)
RETURN a.id AS from, r.floor AS floor, b.id AS to
ORDER BY from, floor`
)

// SaveStore mirrors the whole in-memory graph into the database. Nodes are
// written before relationships so edge MATCH clauses always find both
// endpoints.
func SaveStore(ctx context.Context, client Client, s *store.Store) error {
	locations := s.All()

	for _, loc := range locations {
		params := map[string]any{
			"id":          loc.ID,
			"name":        loc.Name,
			"building":    loc.Building,
			"floor":       loc.Floor,
			"image":       loc.ImageURL,
			"baseHeading": loc.BaseHeading,
			"entry":       loc.ID == s.EntryID(),
		}
		if _, err := client.ExecuteWrite(ctx, upsertLocationCypher, params); err != nil {
			return fmt.Errorf("upsert location %s: %w", loc.ID, err)
		}
	}

	for _, loc := range locations {
		for dir, edge := range loc.Edges {
			for rank, target := range edge.Targets() {
				params := map[string]any{
					"from":      loc.ID,
					"to":        target,
					"direction": string(dir),
					"rank":      rank,
				}
				if _, err := client.ExecuteWrite(ctx, upsertEdgeCypher, params); err != nil {
					return fmt.Errorf("upsert edge %s-%s->%s: %w", loc.ID, dir, target, err)
				}
			}
		}
		for floor, target := range loc.FloorConnections {
			params := map[string]any{
				"from":  loc.ID,
				"to":    target,
				"floor": floor,
			}
			if _, err := client.ExecuteWrite(ctx, upsertFloorLinkCypher, params); err != nil {
				return fmt.Errorf("upsert floor link %s->%s: %w", loc.ID, target, err)
			}
		}
	}

	for _, o := range s.Overrides() {
		params := map[string]any{
			"from":      o.LocationID,
			"direction": string(o.Direction),
			"angle":     o.Angle,
		}
		if _, err := client.ExecuteWrite(ctx, setOverrideCypher, params); err != nil {
			return fmt.Errorf("set override %s/%s: %w", o.LocationID, o.Direction, err)
		}
	}

	return nil
}

// LoadStore reads the mirrored graph back into an in-memory store.
func LoadStore(ctx context.Context, client Client) (*store.Store, error) {
	nodesRes, err := client.ExecuteRead(ctx, readLocationsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("read locations: %w", err)
	}

	byID := make(map[string]*domain.Location, len(nodesRes.Records))
	order := make([]string, 0, len(nodesRes.Records))
	entryID := ""
	for _, rec := range nodesRes.Records {
		loc := &domain.Location{
			ID:          asString(rec["id"]),
			Name:        asString(rec["name"]),
			Building:    asString(rec["building"]),
			Floor:       asInt(rec["floor"]),
			ImageURL:    asString(rec["image"]),
			BaseHeading: asFloat(rec["baseHeading"]),
			Edges:       make(map[domain.Direction]domain.Edge),
		}
		if loc.ID == "" {
			continue
		}
		byID[loc.ID] = loc
		order = append(order, loc.ID)
		if asBool(rec["entry"]) {
			entryID = loc.ID
		}
	}

	edgesRes, err := client.ExecuteRead(ctx, readEdgesCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}

	var overrides []domain.AngleOverride
	// Edge rows arrive ordered by rank, so appending preserves the
	// declared target order of list-valued edges.
	targets := make(map[string]map[domain.Direction][]string)
	for _, rec := range edgesRes.Records {
		from := asString(rec["from"])
		dir := domain.Direction(asString(rec["direction"]))
		to := asString(rec["to"])
		if byID[from] == nil || to == "" {
			continue
		}
		if targets[from] == nil {
			targets[from] = make(map[domain.Direction][]string)
		}
		targets[from][dir] = append(targets[from][dir], to)

		// Overrides are per (location, direction); take the rank-0 row so
		// list-valued edges don't duplicate the entry.
		if rec["overrideAngle"] != nil && asInt(rec["rank"]) == 0 {
			overrides = append(overrides, domain.AngleOverride{
				LocationID: from,
				Direction:  dir,
				Angle:      asFloat(rec["overrideAngle"]),
			})
		}
	}
	for from, dirs := range targets {
		for dir, ids := range dirs {
			byID[from].Edges[dir] = domain.MultiEdge(ids...)
		}
	}

	floorsRes, err := client.ExecuteRead(ctx, readFloorLinksCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("read floor links: %w", err)
	}
	for _, rec := range floorsRes.Records {
		from := asString(rec["from"])
		loc := byID[from]
		if loc == nil {
			continue
		}
		if loc.FloorConnections == nil {
			loc.FloorConnections = make(map[int]string)
		}
		loc.FloorConnections[asInt(rec["floor"])] = asString(rec["to"])
	}

	locations := make([]domain.Location, 0, len(order))
	for _, id := range order {
		locations = append(locations, *byID[id])
	}
	return store.New(locations, overrides, entryID), nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
