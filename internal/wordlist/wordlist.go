// Package wordlist holds the two fixed word lists job names are drawn from,
// per §4.1 step 4: "adj and state are random draws (with replacement) from
// two fixed word lists." Cardinality matches the original source's
// lagoon_names/lagoon_states lists (13 and 16 entries respectively), but
// the words themselves are generic rather than carried over verbatim.
package wordlist

import "math/rand"

// Adjectives is drawn from for the "{adj}" slot of a generated job name.
var Adjectives = []string{
	"quiet", "amber", "restless", "steady", "drifting", "hidden",
	"patient", "bright", "murky", "gentle", "roaming", "sudden", "still",
}

// States is drawn from for the "{state}" slot of a generated job name.
var States = []string{
	"searching", "watching", "diving", "surfacing", "circling", "holding",
	"tracking", "drifting", "resting", "scanning", "probing", "waiting",
	"charting", "mapping", "listening", "gliding",
}

// Draw picks one random adjective and one random state, with replacement.
func Draw() (adj, state string) {
	return Adjectives[rand.Intn(len(Adjectives))], States[rand.Intn(len(States))]
}
