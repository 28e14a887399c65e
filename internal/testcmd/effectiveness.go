package testcmd

import "time"

// maxEffectivenessEntries bounds the per-repository history.
const maxEffectivenessEntries = 100

// EffectivenessEntry records how one classified command actually went.
type EffectivenessEntry struct {
	Command    string
	Category   Category
	Confidence float64
	Success    bool
	Timestamp  time.Time
}

// EffectivenessStats summarises a repository's history.
type EffectivenessStats struct {
	Total       int
	Successes   int
	SuccessRate float64
	ByCategory  map[Category]int
}

// RecordEffectiveness appends an outcome to the repository's history,
// evicting the oldest entry past the bound. When a store is attached the
// entry is persisted as well; store failures only warn.
func (a *Analyzer) RecordEffectiveness(repo string, analysis Analysis, success bool) {
	entry := EffectivenessEntry{
		Command:    analysis.Command,
		Category:   analysis.Category,
		Confidence: analysis.Confidence,
		Success:    success,
		Timestamp:  a.now(),
	}

	a.mu.Lock()
	hist := append(a.history[repo], entry)
	if len(hist) > maxEffectivenessEntries {
		hist = hist[len(hist)-maxEffectivenessEntries:]
	}
	a.history[repo] = hist
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Append(repo, entry); err != nil && a.logger != nil {
			a.logger.Printf("testcmd: effectiveness store append failed, keeping in memory: %v", err)
		}
	}
}

// Stats computes summary statistics over the bounded history for one repo.
func (a *Analyzer) Stats(repo string) EffectivenessStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	hist := a.history[repo]
	stats := EffectivenessStats{
		Total:      len(hist),
		ByCategory: make(map[Category]int),
	}
	for _, e := range hist {
		if e.Success {
			stats.Successes++
		}
		stats.ByCategory[e.Category]++
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Successes) / float64(stats.Total)
	}
	return stats
}

// History returns a copy of the bounded history for one repo.
func (a *Analyzer) History(repo string) []EffectivenessEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]EffectivenessEntry(nil), a.history[repo]...)
}
