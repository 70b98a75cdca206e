package interfaces

import (
	"net/http"

	"storefront/internal/service/market/application"
)

type CartHandler struct {
	service *application.CartApplicationService
}

func NewCartHandler(service *application.CartApplicationService) *CartHandler {
	return &CartHandler{service: service}
}

func (h *CartHandler) RegisterRoutes(mux *http.ServeMux) {
	handle(mux, http.MethodPost, "/buyerCart/add", h.add)
	handle(mux, http.MethodGet, "/buyerCart/items", h.items)
	handle(mux, http.MethodGet, "/buyerCart/items/count", h.count)
	handle(mux, http.MethodDelete, "/buyerCart/delete/{userID}/item/{productID}", h.remove)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req application.AddCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cart, err := h.service.AddItem(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Product added to cart", "cart", cart)
}

func (h *CartHandler) items(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Items(r.Context(), r.URL.Query().Get("userID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "cart", cart)
}

func (h *CartHandler) count(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.ItemCount(r.Context(), r.URL.Query().Get("userID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "itemCount", n)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.RemoveItem(r.Context(), r.PathValue("userID"), r.PathValue("productID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Product removed from cart", "cart", cart)
}
