package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"bizcore/internal/service"
)

func CreateProject(svc *service.ProjectService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.CreateProjectInput
		if !decodeBody(w, r, &in) {
			return
		}
		p, err := svc.Create(r.Context(), in)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusCreated, p)
	}
}

func ListProjects(svc *service.ProjectService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.List(r.Context(), uintQuery(r, "customer_id"), r.URL.Query().Get("status"), intQuery(r, "page"), intQuery(r, "limit"))
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, res)
	}
}

func GetProject(svc *service.ProjectService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		p, err := svc.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, p)
	}
}

func UpdateProject(svc *service.ProjectService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		var in service.UpdateProjectInput
		if !decodeBody(w, r, &in) {
			return
		}
		p, err := svc.Update(r.Context(), id, in)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, p)
	}
}

func DeleteProject(svc *service.ProjectService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondMessage(w, http.StatusOK, "project deleted")
	}
}
