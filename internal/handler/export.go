package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/wayfarer/internal/domain"
)

// csvHeaders defines the column names written as the first row of a list export.
var csvHeaders = []string{
	"destination_id", "name", "country", "status",
	"date_planned", "date_visited", "image_count", "images", "notes",
}

// ExportList handles GET /lists/{listID}/export.
// It returns every destination on the list as a flat table, one row per
// destination. Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportList(w http.ResponseWriter, r *http.Request) {
	listID, userID, ok := s.pathAndActor(w, r, "listID")
	if !ok {
		return
	}
	dests, err := s.destinations.ListByList(r.Context(), listID, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		out := make([]Destination, len(dests))
		for i, d := range dests {
			out[i] = destinationToResponse(d)
		}
		writeJSON(w, http.StatusOK, out)
	case "csv":
		body := buildCSV(dests)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="list-`+listID.String()+`.csv"`)
		w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = body.WriteTo(w)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "format must be json or csv"))
	}
}

// buildCSV encodes destinations as CSV. Image URLs within a row are
// pipe-separated ("|") to keep each destination on a single CSV line.
func buildCSV(dests []domain.Destination) *bytes.Buffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, d := range dests {
		//nolint:errcheck
		w.Write(destinationToCSVRecord(d))
	}
	w.Flush()
	return &buf
}

// destinationToCSVRecord encodes a destination as a flat string slice.
// Nil dates are encoded as empty strings.
func destinationToCSVRecord(d domain.Destination) []string {
	return []string{
		d.ID.String(),
		d.Name,
		d.Country,
		string(d.Status),
		formatOptionalDate(d.DatePlanned),
		formatOptionalDate(d.DateVisited),
		strconv.Itoa(len(d.Images)),
		strings.Join(d.Images, "|"),
		d.Notes,
	}
}

// formatOptionalDate returns t as "2006-01-02", or "" if t is nil.
func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
