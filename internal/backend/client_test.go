package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens(t *testing.T, token string) *TokenStore {
	t.Helper()
	ts := NewTokenStore(filepath.Join(t.TempDir(), "token"))
	if token != "" {
		require.NoError(t, ts.put(token))
	}
	return ts
}

func testClient(t *testing.T, srvURL, token string) *Client {
	t.Helper()
	return New(srvURL, testTokens(t, token), time.Second, zerolog.Nop())
}

func TestCreateItem_SendsContentAndRef(t *testing.T) {
	var gotBody map[string]string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/items", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"item": map[string]any{"id": "i1", "content": gotBody["content"], "attachmentRef": gotBody["attachmentRef"]},
		})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, "tok")
	it, err := c.CreateItem(context.Background(), "walk the dog", "photos/1-dog.png")
	require.NoError(t, err)

	assert.Equal(t, "i1", it.ID)
	assert.Equal(t, "walk the dog", gotBody["content"])
	assert.Equal(t, "photos/1-dog.png", gotBody["attachmentRef"])
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestCreateItem_OmitsEmptyRef(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"item": map[string]any{"id": "i1"}})
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL, "tok").CreateItem(context.Background(), "x", "")
	require.NoError(t, err)
	_, present := gotBody["attachmentRef"]
	assert.False(t, present, "empty attachmentRef must not be sent at all")
}

func TestUpdateItem_PatchesOnlySetFields(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/items/i2", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"item": map[string]any{"id": "i2"}})
	}))
	defer srv.Close()

	content := "rewritten"
	_, err := testClient(t, srv.URL, "tok").UpdateItem(context.Background(), "i2", UpdateItemRequest{Content: &content})
	require.NoError(t, err)

	assert.Equal(t, "rewritten", gotBody["content"])
	_, hasDone := gotBody["done"]
	_, hasRef := gotBody["attachmentRef"]
	assert.False(t, hasDone)
	assert.False(t, hasRef)
}

func TestUpdateItem_MissingIDRejectedLocally(t *testing.T) {
	_, err := testClient(t, "http://unused.invalid", "tok").UpdateItem(context.Background(), " ", UpdateItemRequest{})
	require.Error(t, err)
}

func TestDeleteItem_IssuesDelete(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, testClient(t, srv.URL, "tok").DeleteItem(context.Background(), "i3"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/items/i3", gotPath)
}

func TestListItems_ReturnsSnapshotInServerOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": "b", "content": "second"},
				{"id": "a", "content": "first"},
			},
		})
	}))
	defer srv.Close()

	snap, err := testClient(t, srv.URL, "tok").ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, "b", snap[0].ID, "order is the server's, not sorted locally")
	assert.Equal(t, "a", snap[1].ID)
}

func TestDo_UnauthorizedMapsToErrNotSignedIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL, "stale").ListItems(context.Background())
	require.ErrorIs(t, err, ErrNotSignedIn)
}

func TestDo_ErrorEnvelopeBeatsStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"message": "content too long"}},
		})
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL, "tok").CreateItem(context.Background(), "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content too long")
}

func TestDo_EnvelopeErrorsOn200AreStillErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"item":   map[string]any{"id": "i1"},
			"errors": []map[string]string{{"message": "quota exceeded"}},
		})
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL, "tok").CreateItem(context.Background(), "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
