package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/bizdir/bizdir/internal/platform/httpx"
)

type memoryRepo struct {
	mu     sync.Mutex
	users  map[int64]*User
	groups map[int64][]string
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[int64]*User{}, groups: map[int64][]string{}, nextID: 1}
}

func (r *memoryRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (r *memoryRepo) FindByID(_ context.Context, id int64) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryRepo) CreateUser(_ context.Context, user User, groups []string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Same rules as users_email_lower_idx and the username unique key.
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return nil, httpx.ErrDuplicate
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	r.nextID++
	r.users[user.ID] = &user
	r.groups[user.ID] = append([]string(nil), groups...)
	cp := user
	return &cp, nil
}

func (r *memoryRepo) Groups(_ context.Context, userID int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.groups[userID]...), nil
}

func (r *memoryRepo) AddToGroup(_ context.Context, userID int64, group string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[userID] = append(r.groups[userID], group)
	return nil
}

func (r *memoryRepo) deactivate(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].IsActive = false
}

func newTestTokenStore(t *testing.T, ttl time.Duration) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenStore(client, ttl), mr
}

func newTestService(t *testing.T, defaultGroups ...string) (*Service, *memoryRepo, *miniredis.Miniredis) {
	t.Helper()
	tokens, mr := newTestTokenStore(t, time.Hour)
	repo := newMemoryRepo()
	return NewService(repo, tokens, defaultGroups), repo, mr
}

func registerUser(t *testing.T, svc *Service, email string) *User {
	t.Helper()
	user, err := svc.Register(context.Background(), Registration{
		Email:    email,
		Username: strings.Split(email, "@")[0],
		Name:     "Test User",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	return user
}
