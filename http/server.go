package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"wtfSocial/auth"
	"wtfSocial/crud"
	"wtfSocial/domain"
	"wtfSocial/logger"
	"wtfSocial/ws"
)

// Server provides the http functionality of this app, namely routing,
// request handling, and middleware. It performs authentication and
// translates requests into calls on the crud services, which own all
// authorization and data access.
type Server struct {
	router  *mux.Router
	log     *logger.Logger
	tm      *auth.TokenManager
	hub     *ws.Hub
	limiter *IPRateLimiter
	us      domain.UserService
	ps      domain.PostService
	fs      domain.FollowService
	rs      domain.ReactionService
	ms      domain.MessageService
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(services *crud.Services, tm *auth.TokenManager, hub *ws.Hub) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		log:     logger.New(),
		tm:      tm,
		hub:     hub,
		limiter: NewIPRateLimiter(1, 5),
		us:      services.User,
		ps:      services.Post,
		fs:      services.Follow,
		rs:      services.Reaction,
		ms:      services.Message,
	}

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Signup and login get a per-IP rate limit on top of the globals.
	go s.limiter.Cleanup(10 * time.Minute)
	s.registerAuthRoutes(s.router, s.limiter)

	s.registerUserRoutes(s.router)
	s.registerPostRoutes(s.router)
	s.registerFollowRoutes(s.router)
	s.registerReactionRoutes(s.router)
	s.registerChatRoutes(s.router)

	// Middleware that runs on every request.
	s.router.Use(setContentTypeJSON, s.authUser)
	return s
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// handleHealth handles the route "GET /health".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run starts to listen and serve on the specified port. It blocks until
// SIGINT or SIGTERM, then shuts down gracefully with a short deadline.
func (s *Server) Run(port int) error {
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(port),
		Handler: s.router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		s.log.Info("http", "listening on "+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-quit:
	}

	s.log.Info("http", "shutting down")
	s.limiter.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// parsePage reads the cursor pagination parameters from the query string.
// A missing or malformed limit falls back to the default page size.
func parsePage(r *http.Request) domain.CursorPage {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return domain.CursorPage{
		Limit:  limit,
		Before: q.Get("before"),
		After:  q.Get("after"),
	}
}

// parseIntParam reads a numeric route parameter.
func parseIntParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}
