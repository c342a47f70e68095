package gateway

import (
	"net/http"
	"strings"

	"erpgate.dev/internal/audit"
	"erpgate.dev/internal/auth"
	"erpgate.dev/internal/erp"
	"erpgate.dev/internal/obs"
)

const customerListLimit = 100

type createCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (a *API) listCustomers(w http.ResponseWriter, r *http.Request, _ auth.Principal, tenantID string) {
	customers, err := a.store.ListCustomers(r.Context(), tenantID, customerListLimit)
	if err != nil {
		a.storeError(w, r, "list customers", err)
		return
	}
	if customers == nil {
		customers = []erp.Customer{}
	}
	writeData(w, http.StatusOK, customers)
}

func (a *API) createCustomer(w http.ResponseWriter, r *http.Request, _ auth.Principal, tenantID string) {
	var req createCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorToken(w, r, http.StatusBadRequest, tokenInvalidPayload)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeErrorToken(w, r, http.StatusBadRequest, tokenInvalidPayload)
		return
	}

	customer := erp.Customer{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Phone: strings.TrimSpace(req.Phone),
	}
	if err := a.store.CreateCustomer(r.Context(), tenantID, &customer); err != nil {
		a.storeError(w, r, "create customer", err)
		return
	}

	_ = audit.LogEvent(r.Context(), "crm.customer.create", map[string]any{
		"customer_id": customer.ID,
	})
	writeData(w, http.StatusCreated, customer)
}

// storeError hides persistence detail behind the opaque internal token.
func (a *API) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	obs.Error("store operation failed", map[string]any{
		"op":         op,
		"error":      err.Error(),
		"request_id": audit.RequestIDFromContext(r.Context()),
	})
	writeErrorToken(w, r, http.StatusInternalServerError, tokenInternal)
}
