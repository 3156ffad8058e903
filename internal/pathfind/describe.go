package pathfind

import (
	"fmt"
	"strings"
	"time"

	"github.com/nkoval/virtualcampus/backend/internal/domain"
)

// DefaultSecondsPerHop is the traversal estimate used when the caller does
// not configure one. Roughly the time a visitor spends looking around one
// panorama before moving on.
const DefaultSecondsPerHop = 12

// Describe formats a human-readable route summary from a path result:
// hop count plus the coarse building/floor waypoints the route passes
// through, with consecutive duplicates collapsed.
func (f *Finder) Describe(result *domain.PathResult) string {
	if result == nil || len(result.Path) == 0 {
		return ""
	}
	if result.Distance == 0 {
		return fmt.Sprintf("You are already at %s.", f.label(result.TargetID))
	}

	var waypoints []string
	for _, id := range result.Path {
		area := f.areaLabel(id)
		if len(waypoints) == 0 || waypoints[len(waypoints)-1] != area {
			waypoints = append(waypoints, area)
		}
	}

	stops := "stops"
	if result.Distance == 1 {
		stops = "stop"
	}
	return fmt.Sprintf("%d %s: %s", result.Distance, stops, strings.Join(waypoints, ", then "))
}

// Estimate converts hop count into an expected traversal time.
func Estimate(result *domain.PathResult, secondsPerHop int) time.Duration {
	if result == nil {
		return 0
	}
	if secondsPerHop <= 0 {
		secondsPerHop = DefaultSecondsPerHop
	}
	return time.Duration(result.Distance*secondsPerHop) * time.Second
}

// label names a single location: its display name when set, otherwise a
// humanized id.
func (f *Finder) label(id string) string {
	loc := f.store.Get(id)
	if loc == nil {
		return id
	}
	if loc.Name != "" {
		return loc.Name
	}
	return humanize(id)
}

// areaLabel names the building/floor area a location belongs to.
func (f *Finder) areaLabel(id string) string {
	loc := f.store.Get(id)
	if loc == nil {
		return id
	}
	building := loc.Building
	if building == "" {
		building = humanize(id)
	}
	return fmt.Sprintf("%s floor %d", humanize(building), loc.Floor)
}

func humanize(id string) string {
	words := strings.Split(strings.ReplaceAll(id, "_", "-"), "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
