package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/p2pmarket/order-service/internal/handler"
	"github.com/p2pmarket/order-service/internal/order"
)

func NewRouter(store *order.Store, svc *order.Service, guard *order.Guard) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	h := handler.NewOrderHandler(store, svc, guard)

	r.Post("/orders", h.CreateOrder)
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/{id}", h.GetOrderByID)
	r.Put("/orders/{id}", h.ModifyOrder)
	r.Post("/orders/{id}/submit", h.SubmitPayment)
	r.Get("/orders/{id}/retrieve/{signature}", h.RetrieveOrder)
	r.Get("/customers/{id}/orders", h.ListCustomerOrders)
	r.Post("/orders/validate-shipment", h.ValidateShipment)

	return r
}
