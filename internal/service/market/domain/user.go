package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User 是账户实体，Coin 为站内币余额。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Coin         decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail 统一邮箱格式，保证唯一性判断不受大小写影响。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateSignup 校验注册参数。
func ValidateSignup(email, name, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(name) == "" || password == "" {
		return Invalidf("Please provide email, name, and password")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Invalidf("Invalid email address")
	}
	return ValidatePassword(password)
}

// MaxPasswordBytes 是 bcrypt 能处理的最大密码长度。
const MaxPasswordBytes = 72

// ValidatePassword 拒绝空密码和超过 bcrypt 上限的密码。
func ValidatePassword(password string) error {
	if password == "" {
		return Invalidf("Password must not be empty")
	}
	if len(password) > MaxPasswordBytes {
		return Invalidf("Password must be at most %d bytes", MaxPasswordBytes)
	}
	return nil
}

// NewUser 创建一个新账户，余额为 0，角色为普通用户。
func NewUser(email, name, passwordHash string, now time.Time) *User {
	return &User{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		Role:         RoleUser,
		Coin:         decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CanAfford 判断余额是否足够支付 amount。
func (u *User) CanAfford(amount decimal.Decimal) bool {
	return u.Coin.GreaterThanOrEqual(amount)
}

// Debit 扣减余额，余额不足时返回 ErrInsufficientBalance 且不修改余额。
func (u *User) Debit(amount decimal.Decimal, now time.Time) error {
	if !u.CanAfford(amount) {
		return ErrInsufficientBalance
	}
	u.Coin = u.Coin.Sub(amount)
	u.UpdatedAt = now
	return nil
}
