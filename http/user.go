package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfSocial/errs"
)

// registerUserRoutes wires up the profile and account routes.
func (s *Server) registerUserRoutes(r *mux.Router) {
	r.HandleFunc("/user/me", s.handleMe).Methods("GET")
	r.HandleFunc("/user/search", s.handleUserSearch).Methods("GET")
	r.HandleFunc("/user/privacy", s.handleUpdatePrivacy).Methods("PUT")
	r.HandleFunc("/user/{user_id:[0-9]+}", s.handleUserProfile).Methods("GET")
	r.HandleFunc("/user", s.handleDeleteUser).Methods("DELETE")
}

// handleMe handles the route "GET /user/me".
// It returns the profile of the authed user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleUserProfile handles the route "GET /user/{user_id}".
// It returns the profile of the requested user along with the follow
// relationship between him and the authed user.
func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	id, err := parseIntParam(r, "user_id")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid user id."))
		return
	}
	profile, err := s.us.ByIDWithFollowInfo(r.Context(), user.ID, id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleUserSearch handles the route "GET /user/search?q=&limit=&before=&after=".
// It returns users whose username matches the search term.
func (s *Server) handleUserSearch(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	term := r.URL.Query().Get("q")
	if term == "" {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "A search term is required."))
		return
	}
	users, err := s.us.SearchByUsername(r.Context(), user.ID, term, parsePage(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type privacyRequest struct {
	IsPrivate bool `json:"is_private"`
}

// handleUpdatePrivacy handles the route "PUT /user/privacy".
// It toggles whether the authed user's content requires a follow to view.
func (s *Server) handleUpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	var req privacyRequest
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid request body."))
		return
	}
	if err := s.us.UpdatePrivacy(r.Context(), user.ID, req.IsPrivate); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user.IsPrivate = req.IsPrivate
	writeJSON(w, http.StatusOK, user)
}

// handleDeleteUser handles the route "DELETE /user".
// It soft-deletes the authed user's account.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	if err := s.us.Delete(r.Context(), user.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
