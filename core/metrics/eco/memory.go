package eco

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore stores records in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[time.Time]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[time.Time]*Record{}}
}

// Add inserts or updates the record aggregated by day and site.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[r.Site] == nil {
		s.data[r.Site] = map[time.Time]*Record{}
	}
	d := Day(r.Date)
	rec := s.data[r.Site][d]
	if rec == nil {
		rec = &Record{Site: r.Site, Date: d}
		s.data[r.Site][d] = rec
	}
	rec.ImportedMWh += r.ImportedMWh
	rec.ExportedMWh += r.ExportedMWh
	rec.CarbonTonnes += r.CarbonTonnes
	rec.Runs += max(r.Runs, 1)
	return nil
}

// Query returns records between start and end inclusive.
func (s *MemoryStore) Query(site string, start, end time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start = Day(start)
	end = Day(end)
	var res []Record
	for d, r := range s.data[site] {
		if d.Before(start) || d.After(end) {
			continue
		}
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}
