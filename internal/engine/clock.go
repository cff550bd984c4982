package engine

import "time"

// Clock supplies the current instant to the evaluation loop.
//
// The Evaluator itself never reads a clock - "now" is always an explicit
// argument - so Clock only matters at the Watcher boundary. Production code
// uses SystemClock; tests inject a fixed clock to pin rule boundaries
// (midnight, 16:00, 18:00) to known instants.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
