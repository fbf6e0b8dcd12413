package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"bizcore/internal/service"
)

func CreateCustomer(svc *service.CustomerService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.CreateCustomerInput
		if !decodeBody(w, r, &in) {
			return
		}
		c, err := svc.Create(r.Context(), in)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusCreated, c)
	}
}

func ListCustomers(svc *service.CustomerService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.List(r.Context(), service.CustomerListFilter{
			Status: r.URL.Query().Get("status"),
			Search: r.URL.Query().Get("search"),
			Page:   intQuery(r, "page"),
			Limit:  intQuery(r, "limit"),
		})
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, res)
	}
}

func GetCustomer(svc *service.CustomerService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		c, err := svc.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, c)
	}
}

func UpdateCustomer(svc *service.CustomerService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid id"})
			return
		}
		var in service.UpdateCustomerInput
		if !decodeBody(w, r, &in) {
			return
		}
		c, err := svc.Update(r.Context(), id, in)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, c)
	}
}

func DeleteCustomer(svc *service.CustomerService, lg *zap.SugaredLogger) http.HandlerFunc {
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
		respondMessage(w, http.StatusOK, "customer deleted")
	}
}
