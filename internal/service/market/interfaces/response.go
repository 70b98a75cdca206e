package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/market/domain"
)

func init() {
	// 金额以 JSON 数字输出
	decimal.MarshalJSONWithoutQuotes = true
}

// envelope 是所有业务接口的响应外壳：{"success": bool, "message": ..., <key>: payload}。
type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeOK 返回成功响应，key 为空时不带数据字段。
func writeOK(w http.ResponseWriter, status int, message, key string, payload interface{}) {
	body := envelope{"success": true}
	if message != "" {
		body["message"] = message
	}
	if key != "" {
		body[key] = payload
	}
	writeJSON(w, status, body)
}

// statusFor 按错误类别映射 HTTP 状态码。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError 业务错误原样返回消息；未知错误只返回通用消息，细节写日志和 span。
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	var derr *domain.Error
	if status != http.StatusInternalServerError && errors.As(err, &derr) {
		writeJSON(w, status, envelope{"success": false, "message": derr.Message, "error": derr.Kind.Error()})
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.RecordError(err)
	span.SetStatus(codes.Error, "unexpected error")
	logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unexpected error")
	writeJSON(w, http.StatusInternalServerError, envelope{
		"success": false,
		"message": "An unexpected error occurred",
		"error":   http.StatusText(http.StatusInternalServerError),
	})
}

// decodeJSON 解析请求体，失败时直接写 400。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return false
	}
	return true
}
