package domain

// TripStats summarises one user's journal.
type TripStats struct {
	TotalTrips        int
	TotalDestinations int
	TotalFavorites    int
	// TotalPhotos counts every media item, videos included.
	TotalPhotos int
}

// ComputeStats aggregates trips. Destinations are counted by exact string.
func ComputeStats(trips []Trip) TripStats {
	var s TripStats
	destinations := make(map[string]struct{})
	for _, t := range trips {
		s.TotalTrips++
		destinations[t.Destination] = struct{}{}
		if t.IsFavorite {
			s.TotalFavorites++
		}
		s.TotalPhotos += len(t.Media)
	}
	s.TotalDestinations = len(destinations)
	return s
}
