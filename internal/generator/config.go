package generator

// Config drives the synthetic campus generator.
type Config struct {
	// Buildings is how many buildings the campus gets (capped by the
	// built-in name pool).
	Buildings int
	// Floors is the floor count per building.
	Floors int
	// CorridorNodes is how many panorama viewpoints line each corridor.
	CorridorNodes int
	// WingChance is the probability that a corridor node sprouts a
	// side wing (a corner turn).
	WingChance float64
	// Seed makes generation deterministic.
	Seed int64
}

// DefaultConfig returns a campus small enough to explore by hand but with
// every topology the navigation engine has to handle: straight corridors,
// corner wings, elevator hubs, and cross-building doors.
func DefaultConfig() Config {
	return Config{
		Buildings:     3,
		Floors:        2,
		CorridorNodes: 4,
		WingChance:    0.5,
		Seed:          42,
	}
}
