package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/bizdir/bizdir/internal/platform/httpx"
	"github.com/bizdir/bizdir/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo          Repository
	tokens        *TokenStore
	defaultGroups []string
	identities    singleflight.Group
}

// NewService constructs a new Service. New accounts join defaultGroups.
func NewService(repo Repository, tokens *TokenStore, defaultGroups []string) *Service {
	groups := make([]string, 0, len(defaultGroups))
	for _, g := range defaultGroups {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return &Service{repo: repo, tokens: tokens, defaultGroups: groups}
}

// Register creates an active account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, reg Registration) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user, err := s.repo.CreateUser(ctx, User{
		Email:        normalizeEmail(reg.Email),
		Username:     normalizeUsername(reg.Username),
		Name:         strings.TrimSpace(reg.Name),
		PasswordHash: string(hash),
		IsActive:     true,
	}, s.defaultGroups)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// normalizeUsername folds compatibility characters so visually identical
// names collide on the unique index.
func normalizeUsername(username string) string {
	return norm.NFKC.String(strings.TrimSpace(username))
}

// normalizeEmail lowercases the domain part only.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a bearer token.
func (s *Service) Login(ctx context.Context, creds Credentials) (Token, error) {
	user, err := s.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil {
		return Token{}, err
	}
	access, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return Token{}, err
	}
	return Token{
		Access:    access,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}

// Logout revokes the token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// Resolve turns a bearer token into the caller's identity. Unknown tokens
// and inactive accounts yield shared.ErrTokenInvalid.
func (s *Service) Resolve(ctx context.Context, token string) (*shared.Identity, error) {
	userID, err := s.tokens.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.Identity(ctx, userID)
}

// Identity loads the user and its groups. Concurrent loads of the same user
// share one round trip.
func (s *Service) Identity(ctx context.Context, userID int64) (*shared.Identity, error) {
	v, err, _ := s.identities.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		user, err := s.repo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				return nil, shared.ErrTokenInvalid
			}
			return nil, err
		}
		if !user.IsActive {
			return nil, shared.ErrTokenInvalid
		}
		groups, err := s.repo.Groups(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return &shared.Identity{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Groups:   groups,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	// Each caller gets its own copy.
	id := *v.(*shared.Identity)
	id.Groups = append([]string{}, id.Groups...)
	return &id, nil
}
