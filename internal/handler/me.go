package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// GetMe handles GET /me.
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.actor(w, r)
	if !ok {
		return
	}
	u, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// GetEntitlement handles GET /me/entitlement: whether premium is active, the
// limit table that applies, and the caller's usage.
func (s *Server) GetEntitlement(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.actor(w, r)
	if !ok {
		return
	}
	sum, err := s.entitlements.Summary(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Entitlement{
		Active: sum.Active,
		Limits: sum.Limits,
		Usage:  Usage{Lists: sum.Lists, JournalEntries: sum.JournalEntries},
	})
}

// ListFriends handles GET /me/friends. Only accepted friendships are listed.
func (s *Server) ListFriends(w http.ResponseWriter, r *http.Request) {
	s.writeFriendIDs(w, r, s.users.ListFriends)
}

// ListFriendRequests handles GET /me/friend-requests.
func (s *Server) ListFriendRequests(w http.ResponseWriter, r *http.Request) {
	s.writeFriendIDs(w, r, s.users.ListFriendRequests)
}

// AddFriend handles POST /me/friends/{userID}. It sends a request, or
// accepts one the other user already sent.
func (s *Server) AddFriend(w http.ResponseWriter, r *http.Request) {
	friendID, userID, ok := s.pathAndActor(w, r, "userID")
	if !ok {
		return
	}
	status, err := s.users.AddFriend(r.Context(), userID, friendID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Friendship{UserID: friendID, Status: string(status)})
}

// RemoveFriend handles DELETE /me/friends/{userID}. It also withdraws or
// declines a pending request.
func (s *Server) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	friendID, userID, ok := s.pathAndActor(w, r, "userID")
	if !ok {
		return
	}
	if err := s.users.RemoveFriend(r.Context(), userID, friendID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeFriendIDs(w http.ResponseWriter, r *http.Request, list func(context.Context, uuid.UUID) ([]uuid.UUID, error)) {
	userID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, err := list(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	writeJSON(w, http.StatusOK, Friends{UserIDs: ids})
}
