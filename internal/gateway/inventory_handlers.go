package gateway

import (
	"errors"
	"net/http"
	"strings"

	"erpgate.dev/internal/audit"
	"erpgate.dev/internal/auth"
	"erpgate.dev/internal/erp"
)

const itemListLimit = 200

type adjustItemRequest struct {
	ItemID string `json:"item_id"`
	Delta  int64  `json:"delta"`
}

func (a *API) listItems(w http.ResponseWriter, r *http.Request, _ auth.Principal, tenantID string) {
	items, err := a.store.ListItems(r.Context(), tenantID, itemListLimit)
	if err != nil {
		a.storeError(w, r, "list items", err)
		return
	}
	if items == nil {
		items = []erp.Item{}
	}
	writeData(w, http.StatusOK, items)
}

func (a *API) adjustItem(w http.ResponseWriter, r *http.Request, _ auth.Principal, tenantID string) {
	var req adjustItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorToken(w, r, http.StatusBadRequest, tokenInvalidPayload)
		return
	}
	itemID := strings.TrimSpace(req.ItemID)
	if itemID == "" {
		writeErrorToken(w, r, http.StatusBadRequest, tokenInvalidPayload)
		return
	}

	item, err := a.store.AdjustItem(r.Context(), tenantID, itemID, req.Delta)
	if err != nil {
		if errors.Is(err, erp.ErrNotFound) {
			writeErrorToken(w, r, http.StatusNotFound, tokenItemNotFound)
			return
		}
		a.storeError(w, r, "adjust item", err)
		return
	}

	_ = audit.LogEvent(r.Context(), "inventory.item.adjust", map[string]any{
		"item_id":  item.ID,
		"delta":    req.Delta,
		"quantity": item.Quantity,
	})
	writeData(w, http.StatusOK, item)
}
