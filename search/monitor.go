package search

import "time"

// Monitor observes searcher behavior. Implementations must be safe for
// concurrent use.
type Monitor interface {
	// LegCompleted is called once per retrieval leg with its outcome.
	// err is nil for successful legs.
	LegCompleted(vectorType string, hits int, elapsed time.Duration, err error)

	// SearchCompleted is called once per search with the final result
	// count and the number of dropped legs.
	SearchCompleted(results, droppedLegs int, elapsed time.Duration)
}

type noopMonitor struct{}

func (noopMonitor) LegCompleted(string, int, time.Duration, error) {}
func (noopMonitor) SearchCompleted(int, int, time.Duration)        {}
