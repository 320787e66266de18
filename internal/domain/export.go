package domain

import "time"

// ExportRow is a single row in the journal export.
// It is a flat, denormalized view: one row per media item, with trip fields
// repeated for every item on that trip. Trips with no media yield one row
// with zero values for all media fields.
type ExportRow struct {
	// Trip fields, repeated for every media item on the trip.
	TripID      string
	Title       string
	Destination string
	StartDate   string // "2006-01-02"
	EndDate     string // "2006-01-02"
	IsFavorite  bool
	Views       int
	CreatedAt   time.Time

	// Location fields, nil coordinates when the trip has no location.
	Latitude  *float64
	Longitude *float64
	Address   string

	// Media fields, zero values when the trip has no media.
	MediaType    string
	MediaURL     string
	MediaCaption string

	// Tags of the trip in display order.
	Tags []string
}

// BuildExport flattens trips into export rows in the order given.
func BuildExport(trips []Trip) []ExportRow {
	rows := make([]ExportRow, 0, len(trips))
	for _, t := range trips {
		base := ExportRow{
			TripID:      t.ID.String(),
			Title:       t.Title,
			Destination: t.Destination,
			StartDate:   t.StartDate.Format(time.DateOnly),
			EndDate:     t.EndDate.Format(time.DateOnly),
			IsFavorite:  t.IsFavorite,
			Views:       t.Views,
			CreatedAt:   t.CreatedAt,
			Tags:        t.Tags,
		}
		if loc := t.Location; loc != nil {
			lat, lng := loc.Lat, loc.Lng
			base.Latitude, base.Longitude, base.Address = &lat, &lng, loc.Address
		}
		if len(t.Media) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, m := range t.Media {
			row := base
			row.MediaType = string(m.Type)
			row.MediaURL = m.URL
			row.MediaCaption = m.Caption
			rows = append(rows, row)
		}
	}
	return rows
}
