package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"wtfSocial/auth"
	"wtfSocial/domain"
	"wtfSocial/errs"
)

// registerAuthRoutes wires up signup and login. Both are write-heavy abuse
// targets, so they sit behind the per-IP limiter.
func (s *Server) registerAuthRoutes(r *mux.Router, limiter *IPRateLimiter) {
	r.HandleFunc("/auth/signup", limiter.Limit(s.handleSignup)).Methods("POST")
	r.HandleFunc("/auth/login", limiter.Limit(s.handleLogin)).Methods("POST")
}

// The authUser middleware checks for a bearer token and, if it verifies,
// fetches that user and puts him into the request context. Requests without
// a token pass through unauthenticated; requireAuth decides per route
// whether that's acceptable.
func (s *Server) authUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := s.tm.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		user, err := s.us.ByID(r.Context(), userID)
		if err != nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Invalid or expired token."))
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.SetUser(r.Context(), user)))
	})
}

// requireAuth returns the authed user, or writes a 401 and returns nil.
// Handlers must return immediately when they get nil back.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) *domain.User {
	user := auth.GetUser(r.Context())
	if user == nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You must be logged in."))
		return nil
	}
	return user
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// handleSignup handles the route "POST /auth/signup".
// It creates a new user and returns a signed token for him.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid request body."))
		return
	}
	user := &domain.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := s.us.Create(r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	token, err := s.tm.Issue(user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user.Password = ""
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin handles the route "POST /auth/login".
// It verifies the credentials and returns a signed token for the user.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid request body."))
		return
	}
	user, err := s.us.Authenticate(req.Email, req.Password)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	token, err := s.tm.Issue(user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}
