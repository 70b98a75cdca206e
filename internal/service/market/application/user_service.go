package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/market/domain"
	"storefront/internal/service/market/domain/port"
)

// UserApplicationService 负责账户注册、登录和管理。
type UserApplicationService struct {
	users  domain.UserRepository
	hasher port.PasswordHasher
	tokens port.TokenIssuer
	tracer trace.Tracer
	now    func() time.Time
}

func NewUserApplicationService(users domain.UserRepository, hasher port.PasswordHasher, tokens port.TokenIssuer, tracer trace.Tracer) *UserApplicationService {
	return &UserApplicationService{users: users, hasher: hasher, tokens: tokens, tracer: tracer, now: time.Now}
}

func (s *UserApplicationService) Signup(ctx context.Context, req *SignupRequest) (*UserView, error) {
	ctx, span := s.tracer.Start(ctx, "app.Signup")
	defer span.End()

	// 1. 参数校验
	if err := domain.ValidateSignup(req.Email, req.Name, req.Password); err != nil {
		span.SetStatus(codes.Error, "invalid signup request")
		return nil, err
	}

	// 2. 邮箱已存在直接拒绝，唯一索引兜底并发注册
	email := domain.NormalizeEmail(req.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		span.RecordError(err)
		return nil, err
	}

	// 3. 密码只保存哈希
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to hash password")
		return nil, errors.Wrap(err, "hash password")
	}

	user := domain.NewUser(email, req.Name, hash, s.now().UTC())
	if err := s.users.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create user")
		return nil, err
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	logger.Ctx(ctx).Info().Str("user_id", user.ID).Msg("user signed up")
	return toUserView(user), nil
}

func (s *UserApplicationService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "app.Login")
	defer span.End()

	if req.Email == "" || req.Password == "" {
		return nil, domain.Invalidf("Please provide email and password")
	}

	// 账户不存在和密码错误返回同一个错误
	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		span.RecordError(err)
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		logger.Ctx(ctx).Warn().Str("user_id", user.ID).Msg("login rejected: bad password")
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to issue token")
		return nil, errors.Wrap(err, "issue token")
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: toUserView(user)}, nil
}

func (s *UserApplicationService) Get(ctx context.Context, id string) (*UserView, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetUser")
	defer span.End()

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserView(user), nil
}

func (s *UserApplicationService) List(ctx context.Context) ([]*UserView, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListUsers")
	defer span.End()

	users, err := s.users.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	out := make([]*UserView, 0, len(users))
	for _, u := range users {
		out = append(out, toUserView(u))
	}
	return out, nil
}

// Edit 只修改密码和角色，其余字段忽略。
func (s *UserApplicationService) Edit(ctx context.Context, id string, req *EditUserRequest) (*UserView, error) {
	ctx, span := s.tracer.Start(ctx, "app.EditUser")
	defer span.End()

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Password != nil {
		if err := domain.ValidatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			span.RecordError(err)
			return nil, errors.Wrap(err, "hash password")
		}
		user.PasswordHash = hash
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		if !role.Valid() {
			return nil, domain.Invalidf("Invalid role %q", *req.Role)
		}
		user.Role = role
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update user")
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("user_id", id).Msg("user updated")
	return toUserView(user), nil
}

func (s *UserApplicationService) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "app.DeleteUser")
	defer span.End()

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	logger.Ctx(ctx).Info().Str("user_id", id).Msg("user deleted")
	return nil
}
