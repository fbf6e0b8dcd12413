package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"bizcore/internal/auth"
	"bizcore/internal/repository"
	"bizcore/internal/service"
)

func ListNotifications(svc *service.NotificationService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.List(r.Context(), auth.Subject(r.Context()), &repository.QueryOptions{
			Page:  intQuery(r, "page"),
			Limit: intQuery(r, "limit"),
		})
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, res)
	}
}

func UnreadNotificationCount(svc *service.NotificationService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.UnreadCount(r.Context(), auth.Subject(r.Context()))
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, map[string]any{"unread": n})
	}
}

func MarkNotificationRead(svc *service.NotificationService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		n, err := svc.MarkRead(r.Context(), auth.Subject(r.Context()), id)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, n)
	}
}

func MarkAllNotificationsRead(svc *service.NotificationService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.MarkAllRead(r.Context(), auth.Subject(r.Context()))
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, map[string]any{"marked": n})
	}
}
