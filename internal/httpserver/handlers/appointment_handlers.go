package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"bizcore/internal/service"
)

func timeQuery(r *http.Request, name string) *time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

func CreateAppointment(svc *service.AppointmentService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.CreateAppointmentInput
		if !decodeBody(w, r, &in) {
			return
		}
		a, err := svc.Create(r.Context(), in)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusCreated, a)
	}
}

func ListAppointments(svc *service.AppointmentService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.List(r.Context(),
			uintQuery(r, "customer_id"),
			r.URL.Query().Get("status"),
			timeQuery(r, "from"),
			timeQuery(r, "to"),
			intQuery(r, "page"),
			intQuery(r, "limit"))
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, res)
	}
}

func GetAppointment(svc *service.AppointmentService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		a, err := svc.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, a)
	}
}

func UpdateAppointment(svc *service.AppointmentService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		var in service.UpdateAppointmentInput
		if !decodeBody(w, r, &in) {
			return
		}
		a, err := svc.Update(r.Context(), id, in)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, a)
	}
}

func DeleteAppointment(svc *service.AppointmentService, lg *zap.SugaredLogger) http.HandlerFunc {
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
		respondMessage(w, http.StatusOK, "appointment deleted")
	}
}
