package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"bizcore/internal/service"
)

func ListUsers(svc *service.UserService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.List(r.Context(), r.URL.Query().Get("role"), r.URL.Query().Get("status"), intQuery(r, "page"), intQuery(r, "limit"))
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, res)
	}
}

func CreateUser(svc *service.UserService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.CreateUserInput
		if !decodeBody(w, r, &in) {
			return
		}
		u, err := svc.Create(r.Context(), in)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusCreated, u)
	}
}

func GetUser(svc *service.UserService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		u, err := svc.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, u)
	}
}

func UpdateUser(svc *service.UserService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		var in service.UpdateUserInput
		if !decodeBody(w, r, &in) {
			return
		}
		u, err := svc.Update(r.Context(), id, in)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, u)
	}
}

func UpdateUserStatus(svc *service.UserService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		var in service.UpdateUserStatusInput
		if !decodeBody(w, r, &in) {
			return
		}
		u, err := svc.UpdateStatus(r.Context(), id, in)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, u)
	}
}

func BulkUpdateUserStatus(svc *service.UserService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			IDs    []uint `json:"ids"`
			Status string `json:"status"`
		}
		if !decodeBody(w, r, &in) {
			return
		}
		n, err := svc.BulkUpdateStatus(r.Context(), in.IDs, service.UpdateUserStatusInput{Status: in.Status})
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, map[string]any{"updated": n})
	}
}

func DeleteUser(svc *service.UserService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		// ?hard=1 removes the row; the default is the soft status flip.
		if r.URL.Query().Get("hard") == "1" {
			if err := svc.HardDelete(r.Context(), id); err != nil {
				respondError(w, lg, r, err)
				return
			}
			respondMessage(w, http.StatusOK, "user deleted")
			return
		}
		u, err := svc.SoftDelete(r.Context(), id)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, u)
	}
}
