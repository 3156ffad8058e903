// Package generator synthesises demo campus datasets for local
// development and load testing of the navigation engine.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/nkoval/virtualcampus/backend/internal/domain"
	"github.com/nkoval/virtualcampus/backend/internal/store"
)

var buildingNames = []string{
	"lib", "eng", "sci", "art", "med", "law", "gym", "dorm",
}

// Generator produces synthetic campus graphs aligned with the dataset
// schema the store loads.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.Buildings <= 0 {
		cfg.Buildings = def.Buildings
	}
	if cfg.Buildings > len(buildingNames) {
		cfg.Buildings = len(buildingNames)
	}
	if cfg.Floors <= 0 {
		cfg.Floors = def.Floors
	}
	if cfg.CorridorNodes < 2 {
		cfg.CorridorNodes = def.CorridorNodes
	}
	if cfg.WingChance <= 0 {
		cfg.WingChance = def.WingChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate synthesises a campus dataset. Each building gets one corridor
// per floor, random side wings, and an elevator hub; neighbouring
// buildings connect through ground-floor doors. Base headings vary per
// photo so the orientation engine is exercised with unrelated local
// frames. Respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (store.Dataset, error) {
	var ds store.Dataset

	for b := 0; b < g.cfg.Buildings; b++ {
		if err := ctx.Err(); err != nil {
			return store.Dataset{}, err
		}
		g.addBuilding(&ds, buildingNames[b])
	}

	// Ground-floor doors chain neighbouring buildings together. The
	// return door is deliberately shifted off-axis: cross-building
	// geometry is never straight in real tours.
	for b := 0; b+1 < g.cfg.Buildings; b++ {
		from := g.corridorID(buildingNames[b], 1, g.cfg.CorridorNodes-1)
		to := g.corridorID(buildingNames[b+1], 1, 0)
		g.linkDoor(&ds, from, to)
		g.linkDoor(&ds, to, from)
		ds.Overrides = append(ds.Overrides, store.OverrideEntry{
			Location:  from,
			Direction: domain.DirDoor,
			Angle:     g.randomHeading(),
		})
	}

	ds.Entry = g.corridorID(buildingNames[0], 1, 0)
	return ds, nil
}

func (g *Generator) addBuilding(ds *store.Dataset, building string) {
	hubFloors := make(map[int]string, g.cfg.Floors)

	for f := 1; f <= g.cfg.Floors; f++ {
		for i := 0; i < g.cfg.CorridorNodes; i++ {
			id := g.corridorID(building, f, i)
			edges := map[domain.Direction]store.EdgeValue{}
			if i+1 < g.cfg.CorridorNodes {
				edges[domain.DirForward] = store.EdgeTo(g.corridorID(building, f, i+1))
			}
			if i > 0 {
				edges[domain.DirBack] = store.EdgeTo(g.corridorID(building, f, i-1))
			}

			if i > 0 && i+1 < g.cfg.CorridorNodes && g.rand.Float64() < g.cfg.WingChance {
				wingID := fmt.Sprintf("%s-%d-wing%d", building, f, i)
				side := domain.DirRight
				if g.rand.Intn(2) == 0 {
					side = domain.DirLeft
				}
				edges[side] = store.EdgeTo(wingID)
				ds.Locations = append(ds.Locations, store.LocationEntry{
					ID:          wingID,
					Name:        fmt.Sprintf("%s wing %d, floor %d", building, i, f),
					Image:       g.imageURL(wingID),
					BaseHeading: g.randomHeading(),
					Edges: map[domain.Direction]store.EdgeValue{
						domain.DirBack: store.EdgeTo(id),
					},
				})
			}

			// The corridor end reaches the elevator hub.
			if i+1 == g.cfg.CorridorNodes {
				edges[domain.DirElevator] = store.EdgeTo(g.hubID(building, f))
			}

			ds.Locations = append(ds.Locations, store.LocationEntry{
				ID:          id,
				Name:        fmt.Sprintf("%s corridor %d, floor %d", building, i, f),
				Image:       g.imageURL(id),
				BaseHeading: g.randomHeading(),
				Edges:       edges,
			})
		}

		hubID := g.hubID(building, f)
		hubFloors[f] = hubID
		ds.Locations = append(ds.Locations, store.LocationEntry{
			ID:          hubID,
			Name:        fmt.Sprintf("%s elevator, floor %d", building, f),
			Image:       g.imageURL(hubID),
			BaseHeading: g.randomHeading(),
			Edges: map[domain.Direction]store.EdgeValue{
				domain.DirDoor: store.EdgeTo(g.corridorID(building, f, g.cfg.CorridorNodes-1)),
			},
		})
	}

	// Every hub links to its siblings on the other floors.
	for f := 1; f <= g.cfg.Floors; f++ {
		floors := make(map[int]string, g.cfg.Floors-1)
		for other, id := range hubFloors {
			if other != f {
				floors[other] = id
			}
		}
		for i := range ds.Locations {
			if ds.Locations[i].ID == hubFloors[f] {
				ds.Locations[i].Floors = floors
			}
		}
	}
}

func (g *Generator) linkDoor(ds *store.Dataset, from, to string) {
	for i := range ds.Locations {
		if ds.Locations[i].ID != from {
			continue
		}
		if existing, ok := ds.Locations[i].Edges[domain.DirDoor]; ok {
			ds.Locations[i].Edges[domain.DirDoor] = store.EdgeTo(append(existing.Targets(), to)...)
		} else {
			ds.Locations[i].Edges[domain.DirDoor] = store.EdgeTo(to)
		}
		return
	}
}

func (g *Generator) corridorID(building string, floor, index int) string {
	return fmt.Sprintf("%s-%d-c%d", building, floor, index)
}

func (g *Generator) hubID(building string, floor int) string {
	return fmt.Sprintf("%s-%d-elevator", building, floor)
}

func (g *Generator) imageURL(id string) string {
	return fmt.Sprintf("panos/%s.jpg", id)
}

// randomHeading snaps to 15° steps; real tour photos are roughly aligned
// by hand, not continuous.
func (g *Generator) randomHeading() float64 {
	return float64(g.rand.Intn(24) * 15)
}
