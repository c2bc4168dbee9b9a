package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// registerReactionRoutes wires up liking and retweeting posts.
func (s *Server) registerReactionRoutes(r *mux.Router) {
	r.HandleFunc("/reaction/{post_id:[0-9]+}", s.handleCreateReaction).Methods("POST")
	r.HandleFunc("/reaction/{post_id:[0-9]+}", s.handleDeleteReaction).Methods("DELETE")
}

// handleCreateReaction handles the route "POST /reaction/{post_id}?type=".
// It records a reaction of the authed user on the given post and bumps
// the denormalized counters.
func (s *Server) handleCreateReaction(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	postID, err := parseIntParam(r, "post_id")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post id."))
		return
	}
	reaction := &domain.Reaction{
		UserID: user.ID,
		PostID: postID,
		Type:   r.URL.Query().Get("type"),
	}
	if err := s.rs.Create(r.Context(), reaction); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reaction)
}

// handleDeleteReaction handles the route "DELETE /reaction/{post_id}?type=".
// It removes the authed user's reaction of the given type from the post.
func (s *Server) handleDeleteReaction(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	postID, err := parseIntParam(r, "post_id")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post id."))
		return
	}
	if err := s.rs.DeleteForPost(r.Context(), user.ID, postID, r.URL.Query().Get("type")); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
