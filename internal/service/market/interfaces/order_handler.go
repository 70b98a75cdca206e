package interfaces

import (
	"net/http"

	"storefront/internal/service/market/application"
)

type OrderHandler struct {
	service *application.OrderApplicationService
}

func NewOrderHandler(service *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	handle(mux, http.MethodPost, "/order/add", h.create)
	handle(mux, http.MethodPost, "/order/pay", h.pay)
	handle(mux, http.MethodGet, "/order/getByShopOrderStatus", h.byBrandAndStatus)
	handle(mux, http.MethodGet, "/order/by-brand", h.byBrand)
	handle(mux, http.MethodGet, "/order/by-customer-id", h.byCustomer)
	handle(mux, http.MethodGet, "/order/get/{id}", h.get)
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var req application.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Order created successfully", "order", order)
}

func (h *OrderHandler) pay(w http.ResponseWriter, r *http.Request) {
	var req application.PayOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.service.PayOrder(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success":          true,
		"message":          "Payment successful",
		"order":            res.Order,
		"remainingBalance": res.RemainingBalance,
	})
}

func (h *OrderHandler) byBrandAndStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, err := h.service.ByBrandAndStatus(r.Context(), q.Get("brand"), q.Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "orders", orders)
}

func (h *OrderHandler) byBrand(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ByBrand(r.Context(), r.URL.Query().Get("brand"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "orders", orders)
}

func (h *OrderHandler) byCustomer(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ByCustomer(r.Context(), r.URL.Query().Get("customerID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "orders", orders)
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "order", order)
}
