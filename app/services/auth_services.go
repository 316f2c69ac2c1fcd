package services

import (
	"context"
	"errors"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/app/repositories"
	"github.com/elitetable/elitetable/app/requests"
	"github.com/elitetable/elitetable/pkg/apperr"
	"github.com/elitetable/elitetable/pkg/auth"
	"github.com/elitetable/elitetable/pkg/event"
	"github.com/elitetable/elitetable/pkg/metrics"
)

var errBadCredentials = apperr.Unauthenticated("Invalid email or password")

type AuthService struct {
	store  repositories.Storage
	events *event.Bus
}

func NewAuthService(store repositories.Storage, events *event.Bus) *AuthService {
	return &AuthService{store: store, events: events}
}

// Register creates a customer or restaurant owner. Any other requested role,
// admin included, is stored as customer.
func (s *AuthService) Register(ctx context.Context, in requests.RegisterInput) (*models.User, error) {
	email := in.NormalizedEmail()
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Email already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	u := &models.User{
		Email:    email,
		Password: hash,
		Name:     in.Name,
		Phone:    in.Phone,
		Role:     in.EffectiveRole(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("Email already registered")
		}
		return nil, apperr.Internal(err)
	}

	record(ctx, s.events, Activity{
		UserID: u.ID, Type: models.ActivityUserRegistered,
		Description: "New user registered: " + u.Email, EntityType: "user", EntityID: u.ID,
	})
	return u, nil
}

// Login checks the credentials. Unknown email and wrong password produce
// the same 401.
func (s *AuthService) Login(ctx context.Context, in requests.LoginInput) (*models.User, error) {
	u, err := s.store.GetUserByEmail(ctx, requests.NormalizeEmail(in.Email))
	if errors.Is(err, repositories.ErrNotFound) {
		// Burn a bcrypt comparison so unknown emails take as long as bad passwords.
		auth.CheckPassword(dummyHash, in.Password)
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !auth.CheckPassword(u.Password, in.Password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, errBadCredentials
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	record(ctx, s.events, Activity{
		UserID: u.ID, Type: models.ActivityUserLogin,
		Description: "User logged in: " + u.Email, EntityType: "user", EntityID: u.ID,
	})
	return u, nil
}

// dummyHash is a well-formed cost-10 bcrypt hash no account uses.
const dummyHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8.3fC6r5i2bWmaO8Ufb3c5BpE1tQ7a"

// Token issues a bearer JWT for u.
func (s *AuthService) Token(u *models.User) (string, error) {
	tok, err := auth.GenerateToken(*u.Principal())
	if err != nil {
		return "", apperr.Internal(err)
	}
	return tok, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, p *auth.Principal) (*models.User, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, p.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Unauthenticated("")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// UpdateProfile edits the caller's own name, phone, avatar or password.
func (s *AuthService) UpdateProfile(ctx context.Context, p *auth.Principal, in requests.ProfileInput) (*models.User, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	cols := map[string]any{}
	if in.Name != nil {
		cols["name"] = *in.Name
	}
	if in.Phone != nil {
		cols["phone"] = *in.Phone
	}
	if in.Avatar != nil {
		cols["avatar"] = *in.Avatar
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		cols["password"] = hash
	}

	u, err := s.store.UpdateUser(ctx, p.UserID, cols)
	if err != nil {
		return nil, storeErr(err, "User")
	}
	record(ctx, s.events, Activity{
		UserID: u.ID, Type: models.ActivityUserUpdated,
		Description: "Profile updated", EntityType: "user", EntityID: u.ID,
	})
	return u, nil
}

// Resolve reloads a principal by user ID for the authentication middleware.
// Deleted users resolve to nil.
func (s *AuthService) Resolve(ctx context.Context, userID string) (*auth.Principal, error) {
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u.Principal(), nil
}
