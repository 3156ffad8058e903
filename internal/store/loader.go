package store

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nkoval/virtualcampus/backend/internal/domain"
)

// Dataset is the on-disk YAML shape of a campus graph.
type Dataset struct {
	Entry     string          `yaml:"entry"`
	Locations []LocationEntry `yaml:"locations"`
	Overrides []OverrideEntry `yaml:"overrides"`
}

// LocationEntry is one location record in the dataset file. Building and
// Floor may be omitted, in which case they are derived from the id
// structure at load time (e.g. "lib-1-entrance" → building "lib", floor 1).
type LocationEntry struct {
	ID          string                         `yaml:"id"`
	Name        string                         `yaml:"name,omitempty"`
	Building    string                         `yaml:"building,omitempty"`
	Floor       *int                           `yaml:"floor,omitempty"`
	Image       string                         `yaml:"image"`
	BaseHeading float64                        `yaml:"base_heading,omitempty"`
	Edges       map[domain.Direction]EdgeValue `yaml:"edges,omitempty"`
	Floors      map[int]string                 `yaml:"floors,omitempty"`
}

// OverrideEntry pins an explicit control angle for one (location,
// direction) pair.
type OverrideEntry struct {
	Location  string           `yaml:"location"`
	Direction domain.Direction `yaml:"direction"`
	Angle     float64          `yaml:"angle"`
}

// EdgeValue accepts either a scalar target id or a sequence of ids, and
// round-trips back to the shortest form.
type EdgeValue struct {
	targets []string
}

// EdgeTo builds an EdgeValue for dataset construction (the generator and
// tests).
func EdgeTo(ids ...string) EdgeValue {
	return EdgeValue{targets: append([]string(nil), ids...)}
}

func (e *EdgeValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var id string
		if err := node.Decode(&id); err != nil {
			return err
		}
		e.targets = []string{id}
		return nil
	case yaml.SequenceNode:
		var ids []string
		if err := node.Decode(&ids); err != nil {
			return err
		}
		e.targets = ids
		return nil
	default:
		return fmt.Errorf("edge value must be an id or a list of ids (line %d)", node.Line)
	}
}

// Targets returns the edge's target ids in declaration order.
func (e EdgeValue) Targets() []string {
	return append([]string(nil), e.targets...)
}

func (e EdgeValue) MarshalYAML() (any, error) {
	if len(e.targets) == 1 {
		return e.targets[0], nil
	}
	return e.targets, nil
}

// LoadFile reads a YAML campus dataset and builds a Store. Structural
// validation (dangling edges etc.) is the caller's job via Validate.
func LoadFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return LoadBytes(raw)
}

// LoadBytes parses a YAML campus dataset from memory.
func LoadBytes(raw []byte) (*Store, error) {
	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return FromDataset(ds)
}

// FromDataset converts parsed dataset entries into a Store.
func FromDataset(ds Dataset) (*Store, error) {
	locations := make([]domain.Location, 0, len(ds.Locations))
	seen := make(map[string]struct{}, len(ds.Locations))

	for _, entry := range ds.Locations {
		if entry.ID == "" {
			return nil, fmt.Errorf("dataset contains a location without an id")
		}
		if _, dup := seen[entry.ID]; dup {
			return nil, fmt.Errorf("duplicate location id %q", entry.ID)
		}
		seen[entry.ID] = struct{}{}

		building, floor := deriveBuildingFloor(entry.ID)
		if entry.Building != "" {
			building = entry.Building
		}
		if entry.Floor != nil {
			floor = *entry.Floor
		}

		edges := make(map[domain.Direction]domain.Edge, len(entry.Edges))
		for dir, val := range entry.Edges {
			edges[dir] = domain.MultiEdge(val.targets...)
		}

		var floors map[int]string
		if len(entry.Floors) > 0 {
			floors = make(map[int]string, len(entry.Floors))
			for f, target := range entry.Floors {
				floors[f] = target
			}
		}

		locations = append(locations, domain.Location{
			ID:               entry.ID,
			Name:             entry.Name,
			Building:         building,
			Floor:            floor,
			ImageURL:         entry.Image,
			BaseHeading:      entry.BaseHeading,
			Edges:            edges,
			FloorConnections: floors,
		})
	}

	overrides := make([]domain.AngleOverride, 0, len(ds.Overrides))
	for _, o := range ds.Overrides {
		overrides = append(overrides, domain.AngleOverride{
			LocationID: o.Location,
			Direction:  o.Direction,
			Angle:      o.Angle,
		})
	}

	return New(locations, overrides, ds.Entry), nil
}

// deriveBuildingFloor parses "building tokens, floor number, label" ids.
// Tokens before the first numeric token form the building; the numeric
// token is the floor (1 when the id has none).
func deriveBuildingFloor(id string) (string, int) {
	tokens := strings.Split(id, "-")
	for i, tok := range tokens {
		if n, err := strconv.Atoi(tok); err == nil {
			return strings.Join(tokens[:i], "-"), n
		}
	}
	return tokens[0], 1
}
