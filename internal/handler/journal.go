package handler

import (
	"net/http"

	"github.com/pkordes/wayfarer/internal/service"
)

// CreateJournalEntry handles POST /destinations/{destinationID}/journal.
func (s *Server) CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	destinationID, userID, ok := s.pathAndActor(w, r, "destinationID")
	if !ok {
		return
	}
	var body JournalRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	created, err := s.journal.Create(r.Context(), userID, destinationID, service.JournalInput{
		Title:   body.Title,
		Content: body.Content,
		Public:  body.Public,
		Photos:  body.Photos,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, journalToResponse(created))
}

// ListJournalEntries handles GET /destinations/{destinationID}/journal.
func (s *Server) ListJournalEntries(w http.ResponseWriter, r *http.Request) {
	destinationID, userID, ok := s.pathAndActor(w, r, "destinationID")
	if !ok {
		return
	}
	entries, err := s.journal.ListByDestination(r.Context(), destinationID, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]JournalEntry, len(entries))
	for i, e := range entries {
		out[i] = journalToResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetJournalEntry handles GET /journal/{entryID}.
func (s *Server) GetJournalEntry(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := s.pathAndActor(w, r, "entryID")
	if !ok {
		return
	}
	e, err := s.journal.Get(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journalToResponse(e))
}

// AddJournalPhoto handles POST /journal/{entryID}/photos.
func (s *Server) AddJournalPhoto(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := s.pathAndActor(w, r, "entryID")
	if !ok {
		return
	}
	var body ImageRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	e, err := s.journal.AddPhoto(r.Context(), id, userID, body.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journalToResponse(e))
}

// DeleteJournalEntry handles DELETE /journal/{entryID}.
func (s *Server) DeleteJournalEntry(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := s.pathAndActor(w, r, "entryID")
	if !ok {
		return
	}
	photos, err := s.journal.Delete(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeletedImages{ImageURLs: nonNil(photos)})
}
