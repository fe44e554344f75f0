package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository"
	"github.com/almnar0/almeshkat25/internal/utils"
)

// Identity is what a verified session token asserts about the caller.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

type AuthService struct {
	users         repository.UserRepository
	audit         *AuditService
	sessionSecret string
	sessionTTL    time.Duration
}

func NewAuthService(users repository.UserRepository, audit *AuditService, sessionSecret string, sessionTTL time.Duration) *AuthService {
	return &AuthService{users: users, audit: audit, sessionSecret: sessionSecret, sessionTTL: sessionTTL}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

func (a *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Name = clip(in.Name, 100)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.TrimSpace(in.Role)
	in.Phone = clip(in.Phone, 20)

	fields := map[string]string{}
	if len(in.Name) < 2 {
		fields["name"] = "must be at least 2 characters"
	}
	if !strings.Contains(in.Email, "@") {
		fields["email"] = "must be a valid email address"
	}
	if len(in.Password) < 6 {
		fields["password"] = "must be at least 6 characters"
	}
	// Self-registration is limited to client and technician accounts.
	if in.Role != models.RoleClient && in.Role != models.RoleTechnician {
		fields["role"] = "must be client or technician"
	}
	if len(fields) > 0 {
		return nil, "", apperr.Invalid(fields)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.StoreIO, "hash password", err)
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Role:         in.Role,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	a.audit.Record(ctx, models.Actor{ID: u.ID, Name: u.Name, Role: u.Role},
		"user_registered", "user", u.ID, map[string]string{"role": u.Role})

	tok, err := utils.SignJWT(a.sessionSecret, u.ID, u.Email, u.Role, a.sessionTTL)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.StoreIO, "sign token", err)
	}
	pub := u.Sanitized()
	return &pub, tok, nil
}

func (a *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !utils.CheckPassword(u.PasswordHash, password) {
		return nil, "", apperr.New(apperr.InvalidCredentials, "invalid email or password")
	}
	if !u.Active {
		return nil, "", apperr.New(apperr.AccountDisabled, "account is disabled")
	}

	a.audit.Record(ctx, models.Actor{ID: u.ID, Name: u.Name, Role: u.Role},
		"user_login", "user", u.ID, nil)

	tok, err := utils.SignJWT(a.sessionSecret, u.ID, u.Email, u.Role, a.sessionTTL)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.StoreIO, "sign token", err)
	}
	pub := u.Sanitized()
	return &pub, tok, nil
}

// Authenticate validates a bearer token and yields the caller identity.
func (a *AuthService) Authenticate(token string) (*Identity, error) {
	c, err := utils.ParseJWT(a.sessionSecret, token)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidToken, "invalid or expired token", err)
	}
	return &Identity{UserID: c.UserID, Email: c.Email, Role: c.Role}, nil
}

func (a *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	pub := u.Sanitized()
	return &pub, nil
}

func (a *AuthService) ListUsers(ctx context.Context, f repository.UserFilter) ([]models.User, error) {
	users, err := a.users.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	return out, nil
}

type UserUpdate struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}

// UpdateUser is self-service unless the actor is an admin. The role and
// active fields are silently dropped for non-admin actors.
func (a *AuthService) UpdateUser(ctx context.Context, ident Identity, targetID string, in UserUpdate) (*models.User, error) {
	if ident.Role != models.RoleAdmin && ident.UserID != targetID {
		return nil, apperr.New(apperr.Forbidden, "insufficient permissions")
	}

	changes := map[string]string{}
	u, err := a.users.Mutate(ctx, targetID, func(u *models.User) error {
		if in.Name != nil {
			name := clip(*in.Name, 100)
			if len(name) < 2 {
				return apperr.Invalid(map[string]string{"name": "must be at least 2 characters"})
			}
			u.Name = name
			changes["name"] = name
		}
		if in.Phone != nil {
			u.Phone = clip(*in.Phone, 20)
			changes["phone"] = u.Phone
		}
		if in.Password != nil {
			if len(*in.Password) < 6 {
				return apperr.Invalid(map[string]string{"password": "must be at least 6 characters"})
			}
			hash, err := utils.HashPassword(*in.Password)
			if err != nil {
				return apperr.Wrap(apperr.StoreIO, "hash password", err)
			}
			u.PasswordHash = hash
			changes["password"] = "updated"
		}
		if ident.Role == models.RoleAdmin {
			if in.Role != nil {
				if !models.ValidRole(*in.Role) {
					return apperr.Invalid(map[string]string{"role": "unknown role"})
				}
				u.Role = *in.Role
				changes["role"] = *in.Role
			}
			if in.Active != nil {
				u.Active = *in.Active
				if *in.Active {
					changes["active"] = "true"
				} else {
					changes["active"] = "false"
				}
			}
		}
		u.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	actor := models.Actor{ID: ident.UserID, Role: ident.Role}
	if ident.UserID == targetID {
		actor.Name = u.Name
	} else if au, err := a.users.GetByID(ctx, ident.UserID); err == nil && au != nil {
		actor.Name = au.Name
	}
	a.audit.Record(ctx, actor, "user_updated", "user", targetID, changes)

	pub := u.Sanitized()
	return &pub, nil
}

// EnsureAdmin seeds the default admin account on first boot.
func EnsureAdmin(ctx context.Context, users repository.UserRepository, name, email, password string) error {
	admins, err := users.List(ctx, repository.UserFilter{Role: models.RoleAdmin})
	if err != nil {
		return err
	}
	if len(admins) > 0 {
		return nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return users.Create(ctx, &models.User{
		ID:           uuid.NewString(),
		Role:         models.RoleAdmin,
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
