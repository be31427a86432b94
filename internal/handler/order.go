package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/p2pmarket/order-service/internal/order"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	store *order.Store
	svc   *order.Service
	guard *order.Guard
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store *order.Store, svc *order.Service, guard *order.Guard) *OrderHandler {
	return &OrderHandler{store: store, svc: svc, guard: guard}
}

// CreateOrder handles the creation of a new order.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req order.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil || o.Empty() {
		log.Info().Err(err).Msg("Failed to create order")
		http.Error(w, "failed to create order", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, o)
}

// GetOrderByID handles retrieving an order by its ID.
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	o, err := h.store.Find(r.Context(), id)
	if err != nil {
		log.Info().Msgf("Failed to get order by id: %v", err)
		http.Error(w, "failed to get order", http.StatusInternalServerError)
		return
	}
	if o.Empty() {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// ListOrders returns every order known to the index.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.FindAll(r.Context())
	if err != nil {
		log.Info().Msgf("Failed to list orders: %v", err)
		http.Error(w, "failed to list orders", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// ListCustomerOrders returns all orders belonging to one customer.
func (h *OrderHandler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")
	if customerID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	orders, err := h.store.FindAllForCustomer(r.Context(), customerID)
	if err != nil {
		log.Info().Msgf("Failed to list customer orders: %v", err)
		http.Error(w, "failed to list orders", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// ModifyOrder handles administrative correction of an order.
func (h *OrderHandler) ModifyOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	var updated order.Order
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.store.Replace(r.Context(), id, updated)
	if err != nil {
		log.Info().Msgf("Failed to modify order: %v", err)
		http.Error(w, "failed to modify order", http.StatusInternalServerError)
		return
	}
	if o.Empty() {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

type submitPaymentRequest struct {
	TxDataHex string `json:"tx_data_hex"`
}

// SubmitPayment signs and submits a multisig transaction for an order.
func (h *OrderHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	var req submitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.svc.SignAndSubmitPayment(r.Context(), id, req.TxDataHex)
	if err != nil {
		log.Info().Msgf("Failed to submit payment: %v", err)
		http.Error(w, "failed to submit payment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RetrieveOrder discloses an order to the buyer who signed its id. A denied
// or missing order produces the same not-found response.
func (h *OrderHandler) RetrieveOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	signature := chi.URLParam(r, "signature")
	if id == "" || signature == "" {
		http.Error(w, "id and signature are required", http.StatusBadRequest)
		return
	}

	o, err := h.guard.RetrieveOrder(r.Context(), id, signature)
	if err != nil {
		log.Info().Msgf("Failed to retrieve order: %v", err)
		http.Error(w, "failed to retrieve order", http.StatusInternalServerError)
		return
	}
	if o.Empty() {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// ValidateShipment reports whether an order may advance toward shipment.
func (h *OrderHandler) ValidateShipment(w http.ResponseWriter, r *http.Request) {
	eligible := h.svc.ValidateForShipment(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"eligible": eligible})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Info().Msgf("Failed to encode response: %v", err)
	}
}
