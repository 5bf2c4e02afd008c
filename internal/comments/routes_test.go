package comments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/resource/resourcetest"
	"github.com/bizdir/bizdir/internal/shared"
)

func setCommentID(c *Comment, id int64) { c.ID = id }

func newServer(t *testing.T) (*resourcetest.MemoryStore[Comment], http.Handler) {
	t.Helper()
	store := resourcetest.NewMemoryStore(commentID, setCommentID)
	h := NewHandler(nil, store, rbac.Middleware{Registry: rbac.NewRegistry()}, nil, nil)
	r := chi.NewRouter()
	r.Route("/comments", h.MountRoutes)
	return store, r
}

func send(h http.Handler, method, target, body string, caller *shared.Identity) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req = req.WithContext(shared.ContextWithIdentity(req.Context(), caller))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCreateOwnerIsCaller(t *testing.T) {
	payloads := []string{
		`{"biz":1,"body":"great coffee"}`,
		`{"biz":1,"body":"great coffee","user":999}`,
		`{"biz":1,"body":"great coffee","user":0}`,
	}
	for _, payload := range payloads {
		store, h := newServer(t)
		caller := &shared.Identity{ID: 7, Groups: []string{rbac.GroupMember}}

		rr := send(h, http.MethodPost, "/comments", payload, caller)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		var got Comment
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, int64(7), got.UserID, payload)

		stored, err := store.Get(context.Background(), got.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), stored.UserID, payload)
	}
}

func TestUpdateKeepsOwner(t *testing.T) {
	store, h := newServer(t)
	store.Seed(Comment{BizID: 1, UserID: 7, Body: "first"})
	editor := &shared.Identity{ID: 8, Groups: []string{rbac.GroupMember}}

	rr := send(h, http.MethodPut, "/comments/1", `{"biz":1,"user":8,"body":"rewritten"}`, editor)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = send(h, http.MethodPatch, "/comments/1", `{"user":9}`, editor)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	stored, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stored.UserID)
	assert.Equal(t, "rewritten", stored.Body)
}

func TestCreateRequiresBody(t *testing.T) {
	store, h := newServer(t)
	caller := &shared.Identity{ID: 7, Groups: []string{rbac.GroupMember}}

	rr := send(h, http.MethodPost, "/comments", `{"biz":1}`, caller)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"body"`)
	assert.Equal(t, 0, store.Len())
}

func TestCreateAnonymousRejected(t *testing.T) {
	store, h := newServer(t)

	rr := send(h, http.MethodPost, "/comments", `{"biz":1,"body":"hi","user":7}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 0, store.Len())
}

func TestStampOwnerAnonymousClearsUser(t *testing.T) {
	c := Comment{UserID: 5}
	stampOwner(nil, &c)
	assert.Zero(t, c.UserID)
}
