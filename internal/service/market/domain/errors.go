package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// 错误类别，接口层据此决定 HTTP 状态码。
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Error 是带类别的业务错误，Message 可以直接返回给调用方。
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Invalidf 构造一个参数校验错误。
func Invalidf(format string, args ...interface{}) error {
	return newError(ErrInvalidArgument, fmt.Sprintf(format, args...))
}

var (
	ErrUserNotFound     = newError(ErrNotFound, "User not found")
	ErrProductNotFound  = newError(ErrNotFound, "Product not found")
	ErrShopNotFound     = newError(ErrNotFound, "Shop not found")
	ErrCartNotFound     = newError(ErrNotFound, "Cart not found")
	ErrCartItemNotFound = newError(ErrNotFound, "Product not found in cart")
	ErrOrderNotFound    = newError(ErrNotFound, "Order not found")

	ErrEmailTaken       = newError(ErrConflict, "User already exists")
	ErrShopExists       = newError(ErrConflict, "Shop already exists")
	ErrShopNameTaken    = newError(ErrConflict, "Shop name already taken")
	ErrOrderAlreadyPaid = newError(ErrConflict, "Order has already been paid")

	ErrInvalidCredentials = newError(ErrUnauthorized, "Invalid email or password")

	ErrInsufficientBalance = newError(ErrInsufficientFunds, "Insufficient DLU Coin balance")
)
