package util

import "time"

// Now returns the current time in UTC. All ledger timestamps are stored
// and compared in UTC.
func Now() time.Time {
	return time.Now().UTC()
}
