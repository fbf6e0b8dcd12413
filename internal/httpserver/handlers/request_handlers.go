package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"bizcore/internal/service"
)

// CreateContactRequest is the public intake endpoint; no authentication.
func CreateContactRequest(svc *service.ContactRequestService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.CreateContactRequestInput
		if !decodeBody(w, r, &in) {
			return
		}
		req, err := svc.Create(r.Context(), in)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusCreated, req)
	}
}

func ListContactRequests(svc *service.ContactRequestService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.List(r.Context(), r.URL.Query().Get("status"), uintQuery(r, "assigned_to"), intQuery(r, "page"), intQuery(r, "limit"))
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, res)
	}
}

func GetContactRequest(svc *service.ContactRequestService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		req, err := svc.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, req)
	}
}

func UpdateContactRequest(svc *service.ContactRequestService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		var in service.UpdateContactRequestInput
		if !decodeBody(w, r, &in) {
			return
		}
		req, err := svc.Update(r.Context(), id, in)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, req)
	}
}

// ConvertContactRequest books an appointment from a contact request and
// marks the request resolved.
func ConvertContactRequest(svc *service.ContactRequestService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		var in service.ConvertRequestInput
		if !decodeBody(w, r, &in) {
			return
		}
		appt, err := svc.ConvertToAppointment(r.Context(), id, in)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusCreated, appt)
	}
}

func DeleteContactRequest(svc *service.ContactRequestService, lg *zap.SugaredLogger) http.HandlerFunc {
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
		respondMessage(w, http.StatusOK, "contact request deleted")
	}
}
