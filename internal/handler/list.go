package handler

import (
	"net/http"

	"github.com/pkordes/wayfarer/internal/domain"
)

// CreateList handles POST /lists.
func (s *Server) CreateList(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.actor(w, r)
	if !ok {
		return
	}
	var body ListRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	created, err := s.lists.Create(r.Context(), userID, body.toInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, listToResponse(created, domain.LevelCoOwner))
}

// ListOwnedLists handles GET /lists.
func (s *Server) ListOwnedLists(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.actor(w, r)
	if !ok {
		return
	}
	lists, err := s.lists.ListOwned(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listsToResponse(lists))
}

// ListPublicLists handles GET /lists/public.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListPublicLists(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}

	params := domain.NewPaginationParams(page, limit)
	lists, total, err := s.lists.ListPublic(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListPage{
		Data: listsToResponse(lists),
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetList handles GET /lists/{listID}. The response carries the caller's
// resolved permission level.
func (s *Server) GetList(w http.ResponseWriter, r *http.Request) {
	listID, userID, ok := s.pathAndActor(w, r, "listID")
	if !ok {
		return
	}
	list, level, err := s.lists.Get(r.Context(), listID, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listToResponse(list, level))
}

// UpdateList handles PUT /lists/{listID}.
func (s *Server) UpdateList(w http.ResponseWriter, r *http.Request) {
	listID, userID, ok := s.pathAndActor(w, r, "listID")
	if !ok {
		return
	}
	var body ListRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	updated, err := s.lists.Update(r.Context(), listID, userID, body.toInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listToResponse(updated, domain.LevelNone))
}

// DeleteList handles DELETE /lists/{listID}. Only the owner may delete.
func (s *Server) DeleteList(w http.ResponseWriter, r *http.Request) {
	listID, userID, ok := s.pathAndActor(w, r, "listID")
	if !ok {
		return
	}
	urls, err := s.lists.Delete(r.Context(), listID, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeletedImages{ImageURLs: nonNil(urls)})
}
