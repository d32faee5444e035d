package manager

import "github.com/maskerad/stackmem/alloc"

// RegionStats is a snapshot of one region's usage.
type RegionStats struct {
	Used     int
	Capacity int
	Peak     int
	Live     int
}

func regionStats(r *alloc.Region) RegionStats {
	return RegionStats{Used: r.Used(), Capacity: r.Capacity(), Peak: r.Peak(), Live: r.Live()}
}

// Stats is a snapshot of allocator and registry usage.
type Stats struct {
	GlobalMain RegionStats
	GlobalCopy RegionStats
	LevelMain  RegionStats
	LevelCopy  RegionStats

	GlobalResources int
	LevelResources  int

	// Boundary is the global main offset recorded after global loading,
	// or -1 if none was recorded.
	Boundary int
}

// Stats returns current usage.
func (m *Manager) Stats() Stats {
	s := Stats{
		GlobalMain:      regionStats(m.pair.Global().Main()),
		GlobalCopy:      regionStats(m.pair.Global().Copy()),
		LevelMain:       regionStats(m.pair.Level().Main()),
		LevelCopy:       regionStats(m.pair.Level().Copy()),
		GlobalResources: m.global.Len(),
		LevelResources:  m.level.Len(),
		Boundary:        -1,
	}
	if b, ok := m.pair.Boundary(); ok {
		s.Boundary = b.Offset()
	}
	return s
}
