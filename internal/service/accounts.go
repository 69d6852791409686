package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/erazemk/gegenstand/internal/auth"
	"github.com/erazemk/gegenstand/internal/model"
	"github.com/erazemk/gegenstand/internal/store"
)

// Session is the result of a successful register or login.
type Session struct {
	Token string
	User  *model.User
}

// Accounts registers users and logs them in.
type Accounts struct {
	db     *sql.DB
	tokens *auth.Tokens
}

// NewAccounts returns an account service issuing tokens with tokens.
func NewAccounts(db *sql.DB, tokens *auth.Tokens) *Accounts {
	return &Accounts{db: db, tokens: tokens}
}

// Register creates an account and logs it in.
func (s *Accounts) Register(ctx context.Context, name, email, password string) (*Session, error) {
	user, err := s.CreateUser(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// CreateUser creates an account without issuing a token.
func (s *Accounts) CreateUser(ctx context.Context, name, email, password string) (*model.User, error) {
	name = model.NormalizeName(name)
	email = model.NormalizeEmail(email)

	errs := model.FieldErrors{}
	if name == "" {
		errs.Add("name", "must not be blank")
	}
	switch {
	case email == "":
		errs.Add("email", "must not be blank")
	case !model.ValidEmail(email):
		errs.Add("email", "must be a valid email address")
	}
	// The password is hashed exactly as entered, only its blankness is judged
	// after trimming.
	if strings.TrimSpace(password) == "" {
		errs.Add("password", "must not be blank")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	exists, err := store.EmailExists(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	// The unique index decides when two registrations race.
	user, err := store.CreateUser(ctx, s.db, name, email, hash)
	if errors.Is(err, store.ErrDuplicateEmail) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user", user.ID)
	return user, nil
}

// Login checks credentials. Unknown email, wrong password and blank input
// are indistinguishable to the caller.
func (s *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		auth.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}

	user, err := store.GetUserByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		auth.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		slog.Warn("login failed", "user", user.ID)
		return nil, ErrInvalidCredentials
	}

	slog.Info("user logged in", "user", user.ID)
	return s.session(user)
}

// GetUser returns an account by id.
func (s *Accounts) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := store.GetUser(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Logout revokes the token identified by claims until it would have expired.
func (s *Accounts) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := store.RevokeToken(ctx, s.db, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	slog.Info("user logged out", "user", claims.UserID())
	return nil
}

// Authenticate verifies a bearer token and checks it is neither revoked nor
// held by a deleted account. Every rejection is auth.ErrInvalidToken.
func (s *Accounts) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	revoked, err := store.IsTokenRevoked(ctx, s.db, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, auth.ErrInvalidToken
	}

	user, err := store.GetUser(ctx, s.db, claims.UserID())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

func (s *Accounts) session(user *model.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}
