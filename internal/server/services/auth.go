// Package services contains server-side business logic. This file implements
// AuthService, which registers users, logs them in, assigns roles and issues
// bearer tokens.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
)

// DefaultRole is granted to every newly registered user.
const DefaultRole = "User"

// Messages returned to callers on rejection.
const (
	MsgDuplicateEmail     = "Email is already registerd!"
	MsgDuplicateUserName  = "UserName is already registerd!"
	MsgInvalidCredentials = "Email Or Password Is Incorrect"
	MsgInvalidUserOrRole  = "Invalid User Id Or Role"
	MsgAlreadyAssigned    = "User Is Already Assigned to this role"
)

// Rejection kinds carried by AuthError.
var (
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrDuplicateUsername  = errors.New("duplicate username")
	ErrCredentialPolicy   = errors.New("credential policy violation")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUserOrRole  = errors.New("invalid user or role")
	ErrAlreadyAssigned    = errors.New("user already assigned to role")
)

// AuthError is a recoverable rejection. Message is safe to show to the caller.
type AuthError struct {
	Kind    error
	Message string
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Kind }

// CredentialStore holds users and their passwords. Lookups return (nil, nil)
// when no user matches.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, userName string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User, password string) ([]password.Violation, error)
	VerifyPassword(ctx context.Context, user *models.User, password string) (bool, error)
	GetClaims(ctx context.Context, user *models.User) ([]auth.Claim, error)
}

// RoleStore holds roles and user membership.
type RoleStore interface {
	RoleExists(ctx context.Context, role string) (bool, error)
	GetRoles(ctx context.Context, user *models.User) ([]string, error)
	IsInRole(ctx context.Context, user *models.User, role string) (bool, error)
	AddToRole(ctx context.Context, user *models.User, role string) error
}

type RegisterRequest struct {
	UserName  string `json:"userName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AssignRoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// AuthResult is the outcome of Register and Login.
type AuthResult struct {
	Message       string     `json:"message"`
	Authenticated bool       `json:"authenticated"`
	UserName      string     `json:"username,omitempty"`
	Email         string     `json:"email,omitempty"`
	Roles         []string   `json:"roles,omitempty"`
	Token         string     `json:"token,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

type AuthService struct {
	creds       CredentialStore
	roles       RoleStore
	issuer      *auth.Issuer
	defaultRole string
	now         func() time.Time
}

// NewAuthService builds the service. An empty defaultRole means DefaultRole.
func NewAuthService(creds CredentialStore, roles RoleStore, issuer *auth.Issuer, defaultRole string) *AuthService {
	if defaultRole == "" {
		defaultRole = DefaultRole
	}
	return &AuthService{
		creds:       creds,
		roles:       roles,
		issuer:      issuer,
		defaultRole: defaultRole,
		now:         time.Now,
	}
}

// Register creates an account, grants it the default role and returns a token.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	existing, err := s.creds.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, internal("find user by email", err)
	}
	if existing != nil {
		return reject(ErrDuplicateEmail, MsgDuplicateEmail)
	}

	existing, err = s.creds.FindByUsername(ctx, req.UserName)
	if err != nil {
		return nil, internal("find user by name", err)
	}
	if existing != nil {
		return reject(ErrDuplicateUsername, MsgDuplicateUserName)
	}

	user := &models.User{
		UserName:  req.UserName,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	violations, err := s.creds.Create(ctx, user, req.Password)
	if err != nil {
		return nil, internal("create user", err)
	}
	if len(violations) > 0 {
		descriptions := make([]string, 0, len(violations))
		for _, v := range violations {
			descriptions = append(descriptions, v.Description)
		}
		return reject(ErrCredentialPolicy, strings.Join(descriptions, " , "))
	}

	if err := s.roles.AddToRole(ctx, user, s.defaultRole); err != nil {
		return nil, internal("add default role", err)
	}

	res, err := s.authenticate(ctx, user)
	if err != nil {
		return nil, err
	}
	res.Roles = []string{s.defaultRole}
	return res, nil
}

// Login checks the credentials and returns a token carrying the user's
// current roles. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.creds.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, internal("find user by email", err)
	}
	if user == nil {
		_, _ = s.creds.VerifyPassword(ctx, &models.User{}, req.Password)
		return reject(ErrInvalidCredentials, MsgInvalidCredentials)
	}

	ok, err := s.creds.VerifyPassword(ctx, user, req.Password)
	if err != nil {
		return nil, internal("verify password", err)
	}
	if !ok {
		return reject(ErrInvalidCredentials, MsgInvalidCredentials)
	}

	return s.authenticate(ctx, user)
}

// AssignRole adds the user to an existing role.
func (s *AuthService) AssignRole(ctx context.Context, req AssignRoleRequest) error {
	user, err := s.creds.FindByID(ctx, req.UserID)
	if err != nil {
		return internal("find user by id", err)
	}
	if user == nil {
		return &AuthError{Kind: ErrInvalidUserOrRole, Message: MsgInvalidUserOrRole}
	}

	exists, err := s.roles.RoleExists(ctx, req.Role)
	if err != nil {
		return internal("check role", err)
	}
	if !exists {
		return &AuthError{Kind: ErrInvalidUserOrRole, Message: MsgInvalidUserOrRole}
	}

	in, err := s.roles.IsInRole(ctx, user, req.Role)
	if err != nil {
		return internal("check membership", err)
	}
	if in {
		return &AuthError{Kind: ErrAlreadyAssigned, Message: MsgAlreadyAssigned}
	}

	err = s.roles.AddToRole(ctx, user, req.Role)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorAlreadyExists):
		return &AuthError{Kind: ErrAlreadyAssigned, Message: MsgAlreadyAssigned}
	case errors.Is(err, common.ErrorNotFound):
		return &AuthError{Kind: ErrInvalidUserOrRole, Message: MsgInvalidUserOrRole}
	default:
		return internal("add role", err)
	}
}

// authenticate issues a token for user from its stored claims and roles.
func (s *AuthService) authenticate(ctx context.Context, user *models.User) (*AuthResult, error) {
	custom, err := s.creds.GetClaims(ctx, user)
	if err != nil {
		return nil, internal("load claims", err)
	}
	roles, err := s.roles.GetRoles(ctx, user)
	if err != nil {
		return nil, internal("load roles", err)
	}

	token, err := s.issuer.Issue(auth.BuildClaims(user, custom, roles), s.now())
	if err != nil {
		return nil, internal("issue token", err)
	}

	expires := token.ExpiresAt
	return &AuthResult{
		Authenticated: true,
		UserName:      user.UserName,
		Email:         user.Email,
		Roles:         roles,
		Token:         token.Value,
		ExpiresAt:     &expires,
	}, nil
}

func reject(kind error, message string) (*AuthResult, error) {
	return &AuthResult{Message: message}, &AuthError{Kind: kind, Message: message}
}

func internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrorInternal, op, err)
}
