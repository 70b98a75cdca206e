package interfaces

import (
	"net/http"
	"strconv"

	"storefront/internal/service/market/application"
	"storefront/internal/service/market/domain"
)

// ShopHandler 的常客统计依赖订单服务。
type ShopHandler struct {
	service *application.ShopApplicationService
	orders  *application.OrderApplicationService
}

func NewShopHandler(service *application.ShopApplicationService, orders *application.OrderApplicationService) *ShopHandler {
	return &ShopHandler{service: service, orders: orders}
}

func (h *ShopHandler) RegisterRoutes(mux *http.ServeMux) {
	handle(mux, http.MethodGet, "/shop/check-shop", h.checkShop)
	handle(mux, http.MethodPost, "/shop/create", h.create)
	handle(mux, http.MethodPost, "/shop/regular-customers", h.customers)
	handle(mux, http.MethodGet, "/shop/get-all", h.list)
	handle(mux, http.MethodDelete, "/shop/delete/{id}", h.delete)
	handle(mux, http.MethodPut, "/shop/edit/{id}", h.edit)
	handle(mux, http.MethodGet, "/shop/customers/regular", h.regularCustomers)
}

func (h *ShopHandler) checkShop(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.CheckShop(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	body := envelope{"success": true, "hasShop": res.HasShop}
	if res.Shop != nil {
		body["shop"] = res.Shop
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *ShopHandler) create(w http.ResponseWriter, r *http.Request) {
	var req application.CreateShopRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	shop, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Shop created successfully", "shop", shop)
}

func (h *ShopHandler) customers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShopName string `json:"shopName"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	customers, err := h.service.Customers(r.Context(), req.ShopName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "customers", customers)
}

func (h *ShopHandler) list(w http.ResponseWriter, r *http.Request) {
	shops, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "shops", shops)
}

func (h *ShopHandler) delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Shop and its products deleted successfully", "result", res)
}

func (h *ShopHandler) edit(w http.ResponseWriter, r *http.Request) {
	var req application.EditShopRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	shop, err := h.service.Edit(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Shop updated successfully", "shop", shop)
}

// regularCustomers 支持 ?brand=&min=，min 缺省时用配置阈值。
func (h *ShopHandler) regularCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minOrders := 0
	if raw := q.Get("min"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, domain.Invalidf("min must be a positive integer"))
			return
		}
		minOrders = n
	}
	customers, err := h.orders.RegularCustomers(r.Context(), q.Get("brand"), minOrders)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "customers", customers)
}
