package session

// Stats is a read-only aggregate over current sessions, served to external
// monitoring. Taking it mutates nothing.
type Stats struct {
	TotalSessions      int `json:"totalSessions"`
	ActiveSessions     int `json:"activeSessions"`
	ScamSessions       int `json:"scamSessions"`
	ArtifactsExtracted int `json:"artifactsExtracted"`
}

// Snapshot walks the shards one at a time and tallies the aggregates.
func (s *Store) SnapshotStats() Stats {
	var st Stats
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, rec := range sh.records {
			st.TotalSessions++
			if !rec.Concluded {
				st.ActiveSessions++
			}
			if rec.ScamConfirmed {
				st.ScamSessions++
			}
			st.ArtifactsExtracted += rec.Intelligence.Count()
		}
		sh.mu.Unlock()
	}
	return st
}
