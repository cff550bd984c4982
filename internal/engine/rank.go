package engine

import (
	"sort"

	"github.com/opsdeck/watchdesk/internal/alert"
)

// Rank orders alerts in place for triage: severity first (critical, high,
// medium), most recent timestamp first within a severity. The sort is stable,
// so alerts that tie on both keys keep their evaluation order. Ranking only
// affects order, never membership.
func Rank(alerts []alert.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Severity.Rank(), alerts[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return alerts[i].Timestamp.After(alerts[j].Timestamp)
	})
}
