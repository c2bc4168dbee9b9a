package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// registerFollowRoutes wires up following and unfollowing users.
func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/follower/follow/{user_id:[0-9]+}", s.handleFollow).Methods("POST")
	r.HandleFunc("/follower/unfollow/{user_id:[0-9]+}", s.handleUnfollow).Methods("POST")
}

// handleFollow handles the route "POST /follower/follow/{user_id}".
// It makes the authed user follow the user with the given id.
func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	followedID, err := parseIntParam(r, "user_id")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid user id."))
		return
	}
	follow := &domain.Follow{
		FollowerID: user.ID,
		FollowedID: followedID,
	}
	if err := s.fs.Create(r.Context(), follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, follow)
}

// handleUnfollow handles the route "POST /follower/unfollow/{user_id}".
// It makes the authed user unfollow the user with the given id.
func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	followedID, err := parseIntParam(r, "user_id")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid user id."))
		return
	}
	follow := &domain.Follow{
		FollowerID: user.ID,
		FollowedID: followedID,
	}
	if err := s.fs.Delete(r.Context(), follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unfollowed"})
}
