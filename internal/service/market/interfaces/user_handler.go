package interfaces

import (
	"net/http"

	"storefront/internal/service/market/application"
)

func handle(mux *http.ServeMux, method, path string, fn http.HandlerFunc) {
	mux.Handle(method+" "+path, instrument(method+" "+path, fn))
}

// UserHandler 封装了账户相关的 HTTP 处理器
type UserHandler struct {
	service *application.UserApplicationService
}

func NewUserHandler(service *application.UserApplicationService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	handle(mux, http.MethodPost, "/user/signup", h.signup)
	handle(mux, http.MethodPost, "/user/login", h.login)
	handle(mux, http.MethodGet, "/user/get/{id}", h.get)
	handle(mux, http.MethodGet, "/user/get-all", h.list)
	handle(mux, http.MethodDelete, "/user/delete/{id}", h.delete)
	handle(mux, http.MethodPatch, "/user/edit/{id}", h.edit)
}

func (h *UserHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req application.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "User registered successfully", "user", user)
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success":   true,
		"message":   "Login successful",
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      res.User,
	})
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "user", user)
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", "users", users)
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "User deleted successfully", "", nil)
}

func (h *UserHandler) edit(w http.ResponseWriter, r *http.Request) {
	var req application.EditUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.service.Edit(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "User updated successfully", "user", user)
}
