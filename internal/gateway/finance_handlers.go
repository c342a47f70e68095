package gateway

import (
	"errors"
	"net/http"
	"strings"

	"erpgate.dev/internal/audit"
	"erpgate.dev/internal/auth"
	"erpgate.dev/internal/erp"
)

const invoiceListLimit = 100

type createPaymentRequest struct {
	InvoiceID string `json:"invoice_id"`
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
}

func (a *API) listInvoices(w http.ResponseWriter, r *http.Request, _ auth.Principal, tenantID string) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	invoices, err := a.store.ListInvoices(r.Context(), tenantID, status, invoiceListLimit)
	if err != nil {
		a.storeError(w, r, "list invoices", err)
		return
	}
	if invoices == nil {
		invoices = []erp.Invoice{}
	}
	writeData(w, http.StatusOK, invoices)
}

func (a *API) listPayments(w http.ResponseWriter, r *http.Request, _ auth.Principal, tenantID string) {
	payments, err := a.store.ListPayments(r.Context(), tenantID, invoiceListLimit)
	if err != nil {
		a.storeError(w, r, "list payments", err)
		return
	}
	if payments == nil {
		payments = []erp.Payment{}
	}
	writeData(w, http.StatusOK, payments)
}

func (a *API) createPayment(w http.ResponseWriter, r *http.Request, _ auth.Principal, tenantID string) {
	var req createPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorToken(w, r, http.StatusBadRequest, tokenInvalidPayload)
		return
	}
	if strings.TrimSpace(req.InvoiceID) == "" || req.Amount <= 0 {
		writeErrorToken(w, r, http.StatusBadRequest, tokenInvalidPayload)
		return
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = "manual"
	}

	payment := erp.Payment{
		InvoiceID: strings.TrimSpace(req.InvoiceID),
		Amount:    req.Amount,
		Method:    method,
	}
	if err := a.store.CreatePayment(r.Context(), tenantID, &payment); err != nil {
		if errors.Is(err, erp.ErrInvalidInput) {
			writeErrorToken(w, r, http.StatusBadRequest, tokenInvalidPayload)
			return
		}
		a.storeError(w, r, "create payment", err)
		return
	}

	_ = audit.LogEvent(r.Context(), "finance.payment.create", map[string]any{
		"payment_id": payment.ID,
		"invoice_id": payment.InvoiceID,
		"amount":     payment.Amount,
	})
	writeData(w, http.StatusCreated, payment)
}
