package orchestrator

import "time"

// Stats are point-in-time counters.
type Stats struct {
	State         State     `json:"state"`
	Cycles        int64     `json:"cycles"`
	Converted     int64     `json:"converted"`
	Duplicates    int64     `json:"duplicates"`
	Failures      int64     `json:"failures"`
	KeyedPixels   int64     `json:"keyed_pixels"`
	LastConverted time.Time `json:"last_converted,omitzero"`
	LastError     string    `json:"last_error,omitempty"`
}

// Stats returns a snapshot of the loop counters.
func (o *Orchestrator) Stats() Stats {
	s := Stats{
		State:       o.State(),
		Cycles:      o.cycles.Load(),
		Converted:   o.converted.Load(),
		Duplicates:  o.duplicates.Load(),
		Failures:    o.failures.Load(),
		KeyedPixels: o.keyedPixels.Load(),
	}
	if ns := o.lastAt.Load(); ns > 0 {
		s.LastConverted = time.Unix(0, ns)
	}
	if msg := o.lastErr.Load(); msg != nil {
		s.LastError = *msg
	}
	return s
}
