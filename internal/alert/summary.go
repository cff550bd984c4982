package alert

// Summary holds aggregate counts over an alert set. It is derived on demand
// from an alert slice and carries no state of its own.
type Summary struct {
	Critical int          `json:"critical"`
	High     int          `json:"high"`
	Medium   int          `json:"medium"`
	Total    int          `json:"total"`
	ByKind   map[Kind]int `json:"by_kind"`
}

// Summarize counts alerts by severity and by kind.
func Summarize(alerts []Alert) Summary {
	s := Summary{ByKind: make(map[Kind]int, 4)}
	for _, a := range alerts {
		switch a.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityHigh:
			s.High++
		case SeverityMedium:
			s.Medium++
		}
		s.ByKind[a.Kind]++
		s.Total++
	}
	return s
}
