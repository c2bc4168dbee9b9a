package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// registerPostRoutes wires up posts, the feed, and comments.
func (s *Server) registerPostRoutes(r *mux.Router) {
	r.HandleFunc("/post/feed", s.handleFeed).Methods("GET")
	r.HandleFunc("/post/by_user/{user_id:[0-9]+}", s.handlePostsByUser).Methods("GET")
	r.HandleFunc("/post/{post_id:[0-9]+}/comments", s.handleComments).Methods("GET")
	r.HandleFunc("/post/{post_id:[0-9]+}/comment", s.handleCreateComment).Methods("POST")
	r.HandleFunc("/post/{post_id:[0-9]+}", s.handleGetPost).Methods("GET")
	r.HandleFunc("/post/{post_id:[0-9]+}", s.handleDeletePost).Methods("DELETE")
	r.HandleFunc("/post", s.handleCreatePost).Methods("POST")
}

type postRequest struct {
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

// handleCreatePost handles the route "POST /post".
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid request body."))
		return
	}
	post := &domain.Post{
		UserID:  user.ID,
		Content: req.Content,
		Images:  req.Images,
	}
	if err := s.ps.CreatePost(r.Context(), post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// handleCreateComment handles the route "POST /post/{post_id}/comment".
// The parent post must be visible to the authed user.
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	postID, err := parseIntParam(r, "post_id")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post id."))
		return
	}
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid request body."))
		return
	}
	comment := &domain.Post{
		UserID:   user.ID,
		Content:  req.Content,
		Images:   req.Images,
		ParentID: &postID,
	}
	if err := s.ps.CreateComment(r.Context(), comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// handleGetPost handles the route "GET /post/{post_id}".
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	postID, err := parseIntParam(r, "post_id")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post id."))
		return
	}
	post, err := s.ps.ByID(r.Context(), user.ID, postID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// handleFeed handles the route "GET /post/feed?limit=&before=&after=".
// It returns root posts from users visible to the authed user, newest first.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	posts, err := s.ps.Feed(r.Context(), user.ID, parsePage(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// handlePostsByUser handles the route "GET /post/by_user/{user_id}".
func (s *Server) handlePostsByUser(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	authorID, err := parseIntParam(r, "user_id")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid user id."))
		return
	}
	posts, err := s.ps.ByAuthor(r.Context(), user.ID, authorID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// handleComments handles the route "GET /post/{post_id}/comments?limit=&before=&after=".
func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	postID, err := parseIntParam(r, "post_id")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post id."))
		return
	}
	comments, err := s.ps.CommentsByPost(r.Context(), user.ID, postID, parsePage(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// handleDeletePost handles the route "DELETE /post/{post_id}".
// Only the author may delete his own post.
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	postID, err := parseIntParam(r, "post_id")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post id."))
		return
	}
	if err := s.ps.Delete(r.Context(), user.ID, postID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
