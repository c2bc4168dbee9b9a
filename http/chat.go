package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfSocial/domain"
	"wtfSocial/errs"
	"wtfSocial/ws"
)

// registerChatRoutes wires up direct messaging, both the rest endpoints
// and the websocket used for realtime delivery.
func (s *Server) registerChatRoutes(r *mux.Router) {
	r.HandleFunc("/chat/ws", s.handleChatWS).Methods("GET")
	r.HandleFunc("/chat/unread_count", s.handleUnreadCount).Methods("GET")
	r.HandleFunc("/chat/conversations", s.handleConversations).Methods("GET")
	r.HandleFunc("/chat/{user_id:[0-9]+}/read", s.handleMarkRead).Methods("PUT")
	r.HandleFunc("/chat/{user_id:[0-9]+}", s.handleConversation).Methods("GET")
	r.HandleFunc("/chat/{user_id:[0-9]+}", s.handleSendMessage).Methods("POST")
}

type messageRequest struct {
	Content string `json:"content"`
}

// handleSendMessage handles the route "POST /chat/{user_id}".
// It stores a message to the given user and pushes it to his open
// websocket connections.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	receiverID, err := parseIntParam(r, "user_id")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid user id."))
		return
	}
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid request body."))
		return
	}
	message := &domain.Message{
		SenderID:   user.ID,
		ReceiverID: receiverID,
		Content:    req.Content,
	}
	if err := s.ms.Send(r.Context(), message); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.hub.Deliver(message)
	writeJSON(w, http.StatusCreated, message)
}

// handleConversation handles the route "GET /chat/{user_id}?limit=&before=&after=".
// It returns the message history with the given user, newest first.
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	partnerID, err := parseIntParam(r, "user_id")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid user id."))
		return
	}
	messages, err := s.ms.Conversation(r.Context(), user.ID, partnerID, parsePage(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// handleConversations handles the route "GET /chat/conversations".
// It returns one summary per chat partner, most recently active first.
func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	conversations, err := s.ms.Conversations(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

// handleMarkRead handles the route "PUT /chat/{user_id}/read".
// It marks all messages from the given user to the authed user as read.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	partnerID, err := parseIntParam(r, "user_id")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid user id."))
		return
	}
	if err := s.ms.MarkRead(r.Context(), user.ID, partnerID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// handleUnreadCount handles the route "GET /chat/unread_count".
func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	user := s.requireAuth(w, r)
	if user == nil {
		return
	}
	count, err := s.ms.UnreadCount(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread_count": count})
}

// handleChatWS handles the route "GET /chat/ws?token=".
// Browsers can't set an Authorization header on a websocket request, so
// the token travels in the query string instead.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	userID, err := s.tm.Verify(r.URL.Query().Get("token"))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if _, err := s.us.ByID(r.Context(), userID); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Invalid or expired token."))
		return
	}
	if err := ws.ServeWS(s.hub, w, r, userID); err != nil {
		s.log.Error("ws", "websocket upgrade failed", err)
	}
}
