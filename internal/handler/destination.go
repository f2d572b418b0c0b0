package handler

import "net/http"

// CreateDestination handles POST /lists/{listID}/destinations.
func (s *Server) CreateDestination(w http.ResponseWriter, r *http.Request) {
	listID, userID, ok := s.pathAndActor(w, r, "listID")
	if !ok {
		return
	}
	var body DestinationRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	created, err := s.destinations.Create(r.Context(), listID, userID, body.toInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, destinationToResponse(created))
}

// ListDestinations handles GET /lists/{listID}/destinations.
func (s *Server) ListDestinations(w http.ResponseWriter, r *http.Request) {
	listID, userID, ok := s.pathAndActor(w, r, "listID")
	if !ok {
		return
	}
	dests, err := s.destinations.ListByList(r.Context(), listID, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]Destination, len(dests))
	for i, d := range dests {
		out[i] = destinationToResponse(d)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetDestination handles GET /destinations/{destinationID}.
func (s *Server) GetDestination(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := s.pathAndActor(w, r, "destinationID")
	if !ok {
		return
	}
	d, err := s.destinations.Get(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, destinationToResponse(d))
}

// UpdateDestination handles PUT /destinations/{destinationID}.
func (s *Server) UpdateDestination(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := s.pathAndActor(w, r, "destinationID")
	if !ok {
		return
	}
	var body DestinationRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	updated, err := s.destinations.Update(r.Context(), id, userID, body.toInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, destinationToResponse(updated))
}

// AddDestinationImage handles POST /destinations/{destinationID}/images.
func (s *Server) AddDestinationImage(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := s.pathAndActor(w, r, "destinationID")
	if !ok {
		return
	}
	var body ImageRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	d, err := s.destinations.AddImage(r.Context(), id, userID, body.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, destinationToResponse(d))
}

// DeleteDestination handles DELETE /destinations/{destinationID}.
func (s *Server) DeleteDestination(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := s.pathAndActor(w, r, "destinationID")
	if !ok {
		return
	}
	urls, err := s.destinations.Delete(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeletedImages{ImageURLs: nonNil(urls)})
}
