package interfaces

import "net/http"

// RegisterHomepage 注册欢迎页。"GET /{$}" 只匹配根路径。
func RegisterHomepage(mux *http.ServeMux) {
	handle(mux, http.MethodGet, "/{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "Hello! Welcome to DLU underground")
	})
	handle(mux, http.MethodGet, "/homepage/en", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "Welcome to DLU Underground")
	})
	handle(mux, http.MethodGet, "/homepage/vn", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "Chào mừng bạn đến với DLU Underground")
	})
}
