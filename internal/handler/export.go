package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/wanderlogue/backend/internal/auth"
	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/tripquery"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "title", "destination", "start_date", "end_date",
	"is_favorite", "views", "created_at",
	"latitude", "longitude", "address",
	"media_type", "media_url", "media_caption", "tags",
}

// exportRow is the JSON representation of domain.ExportRow.
type exportRow struct {
	TripID       uuid.UUID `json:"tripId"`
	Title        string    `json:"title"`
	Destination  string    `json:"destination"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	IsFavorite   bool      `json:"isFavorite"`
	Views        int       `json:"views"`
	CreatedAt    time.Time `json:"createdAt"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Address      string    `json:"address,omitempty"`
	MediaType    string    `json:"mediaType,omitempty"`
	MediaURL     string    `json:"mediaUrl,omitempty"`
	MediaCaption string    `json:"mediaCaption,omitempty"`
	Tags         []string  `json:"tags"`
}

// ExportTrips handles GET /api/trips/export.
// It accepts the same filter and sort parameters as ListTrips and returns one
// row per media item. Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportTrips(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	format := params.Get("format")
	if format != "" && format != "csv" && format != "json" {
		s.writeError(w, r, badRequest("Invalid format %q: must be csv or json", format))
		return
	}
	params.Del("format")

	q, err := tripquery.FromValues(params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.trips.Export(r.Context(), auth.UserIDFrom(r.Context()), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format == "csv" {
		s.writeCSV(w, r, rows)
		return
	}
	out := make([]exportRow, len(rows))
	for i, row := range rows {
		out[i] = rowToJSON(row)
	}
	writeJSON(w, http.StatusOK, envelope{"count": len(out), "rows": out})
}

// writeCSV streams rows as an attachment. Tags within a row are
// pipe-separated ("|") to keep each media item on a single CSV line.
func (s *Server) writeCSV(w http.ResponseWriter, r *http.Request, rows []domain.ExportRow) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="wanderlogue-trips.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeaders)
	for _, row := range rows {
		_ = cw.Write(rowToCSVRecord(row))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.log.WarnContext(r.Context(), "csv export truncated", "error", err)
	}
}

func rowToJSON(r domain.ExportRow) exportRow {
	id, _ := uuid.Parse(r.TripID)
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return exportRow{
		TripID:       id,
		Title:        r.Title,
		Destination:  r.Destination,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		IsFavorite:   r.IsFavorite,
		Views:        r.Views,
		CreatedAt:    r.CreatedAt,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Address:      r.Address,
		MediaType:    r.MediaType,
		MediaURL:     r.MediaURL,
		MediaCaption: r.MediaCaption,
		Tags:         tags,
	}
}

func rowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.TripID,
		r.Title,
		r.Destination,
		r.StartDate,
		r.EndDate,
		strconv.FormatBool(r.IsFavorite),
		strconv.Itoa(r.Views),
		r.CreatedAt.UTC().Format(time.RFC3339),
		formatCoord(r.Latitude),
		formatCoord(r.Longitude),
		r.Address,
		r.MediaType,
		r.MediaURL,
		r.MediaCaption,
		strings.Join(r.Tags, "|"),
	}
}

// formatCoord writes a coordinate in its shortest exact decimal form, or an
// empty cell when it is unset.
func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
