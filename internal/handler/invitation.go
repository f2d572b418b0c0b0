package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/service"
)

// CreateInvitation handles POST /lists/{listID}/invitations.
func (s *Server) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	listID, userID, ok := s.pathAndActor(w, r, "listID")
	if !ok {
		return
	}
	var body InvitationRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	in := service.CreateInvitationInput{
		ListID:    listID,
		InviterID: userID,
		Level:     domain.PermissionLevel(body.Level),
		ExpiresAt: body.ExpiresAt,
	}
	if body.InviteeID != nil {
		in.InviteeID = *body.InviteeID
	}
	if body.InviteeEmail != nil {
		in.InviteeEmail = string(*body.InviteeEmail)
	}
	if body.TTLHours != nil {
		if *body.TTLHours <= 0 {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", "ttl_hours must be positive"))
			return
		}
		in.TTL = time.Duration(*body.TTLHours) * time.Hour
	}

	inv, err := s.invitations.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, invitationToResponse(inv))
}

// ListListInvitations handles GET /lists/{listID}/invitations.
func (s *Server) ListListInvitations(w http.ResponseWriter, r *http.Request) {
	listID, userID, ok := s.pathAndActor(w, r, "listID")
	if !ok {
		return
	}
	invs, err := s.invitations.ListForList(r.Context(), listID, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invitationsToResponse(invs))
}

// ListMyInvitations handles GET /invitations: the caller's pending invitations.
func (s *Server) ListMyInvitations(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.actor(w, r)
	if !ok {
		return
	}
	invs, err := s.invitations.ListForInvitee(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invitationsToResponse(invs))
}

// AcceptInvitation handles POST /invitations/{invitationID}/accept.
// An expired invitation answers 410, distinct from the 409 of one that was
// already answered.
func (s *Server) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.invitations.Accept)
}

// RejectInvitation handles POST /invitations/{invitationID}/reject.
func (s *Server) RejectInvitation(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.invitations.Reject)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, userID uuid.UUID) (domain.ListInvitation, error)) {
	id, userID, ok := s.pathAndActor(w, r, "invitationID")
	if !ok {
		return
	}
	inv, err := fn(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invitationToResponse(inv))
}

// CancelInvitation handles DELETE /invitations/{invitationID}. Only the
// inviter may cancel a pending invitation.
func (s *Server) CancelInvitation(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := s.pathAndActor(w, r, "invitationID")
	if !ok {
		return
	}
	if err := s.invitations.Cancel(r.Context(), id, userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RevokeCollaborator handles DELETE /lists/{listID}/collaborators/{userID}.
func (s *Server) RevokeCollaborator(w http.ResponseWriter, r *http.Request) {
	listID, actingUserID, ok := s.pathAndActor(w, r, "listID")
	if !ok {
		return
	}
	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}
	if err := s.invitations.Revoke(r.Context(), listID, actingUserID, userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
