package pipeline

// RunStats tracks aggregate counters across a batch run.
type RunStats struct {
	Total     int
	Current   int
	Renamed   int // Moved to a new path.
	Copied    int // Copied to a new path.
	Updated   int // Path unchanged; sidecar metadata written.
	Unchanged int
	Skipped   int // Destination already existed.
	Failed    int
	Bytes     int64 // Size of every image moved or copied.
}

// Changed returns how many files were moved, copied, or had metadata written.
func (s *RunStats) Changed() int {
	return s.Renamed + s.Copied + s.Updated
}
