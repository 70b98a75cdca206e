package interfaces

import (
	"net/http"

	"storefront/internal/service/market/application"
)

type ProductHandler struct {
	service *application.ProductApplicationService
}

func NewProductHandler(service *application.ProductApplicationService) *ProductHandler {
	return &ProductHandler{service: service}
}

func (h *ProductHandler) RegisterRoutes(mux *http.ServeMux) {
	handle(mux, http.MethodPost, "/product/add", h.add)
	handle(mux, http.MethodGet, "/product/all", h.all)
	handle(mux, http.MethodGet, "/product/on-sale", h.onSale)
	handle(mux, http.MethodGet, "/product/get/{id}", h.get)
	handle(mux, http.MethodGet, "/product/stocked-products-by-shop", h.stockedByShop)
	handle(mux, http.MethodGet, "/product/best-sellers-by-shop", h.bestSellers)
	handle(mux, http.MethodGet, "/product/platform/all", h.platformTotals)
}

func (h *ProductHandler) add(w http.ResponseWriter, r *http.Request) {
	var req application.AddProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.service.Add(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Product added successfully", "product", product)
}

func (h *ProductHandler) all(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.All(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "products", products)
}

func (h *ProductHandler) onSale(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.OnSale(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "products", products)
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "product", product)
}

func (h *ProductHandler) stockedByShop(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.StockedByShop(r.Context(), r.URL.Query().Get("shopName"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "products", products)
}

func (h *ProductHandler) bestSellers(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.BestSellersByShop(r.Context(), r.URL.Query().Get("brand"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "products", products)
}

func (h *ProductHandler) platformTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.PlatformTotals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "totals", totals)
}
