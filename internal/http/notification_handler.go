package http

import "net/http"

// Notifications drains the session's notification inbox.
func Notifications(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, NotificationsResponse{Notifications: sess.Inbox().Drain()})
}
