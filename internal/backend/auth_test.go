package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedTestToken(t *testing.T, claims sessionClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestTokenStore_EmptyWhenFileMissing(t *testing.T) {
	ts := NewTokenStore(filepath.Join(t.TempDir(), "nope", "token"))
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestTokenStore_PutPersistsWithTightPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "token")
	ts := NewTokenStore(path)
	require.NoError(t, ts.put("abc.def.ghi"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A fresh store reading the same path sees the token.
	tok, err := NewTokenStore(path).Token()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)
}

func TestTokenStore_ClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	ts := NewTokenStore(path)
	require.NoError(t, ts.put("tok"))
	require.NoError(t, ts.clear())
	require.NoError(t, ts.clear())

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestSignIn_StoresReturnedToken(t *testing.T) {
	var gotCreds map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/session", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotCreds)
		json.NewEncoder(w).Encode(map[string]string{"token": "session-token"})
	}))
	defer srv.Close()

	tokens := testTokens(t, "")
	c := New(srv.URL, tokens, time.Second, zerolog.Nop())
	require.NoError(t, c.SignIn(context.Background(), "alice", "hunter2"))

	assert.Equal(t, "alice", gotCreds["username"])
	assert.Equal(t, "hunter2", gotCreds["password"])
	tok, err := tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, "session-token", tok)
}

func TestSignIn_BadCredentialsLeaveStoreUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := testTokens(t, "")
	c := New(srv.URL, tokens, time.Second, zerolog.Nop())
	require.Error(t, c.SignIn(context.Background(), "alice", "wrong"))

	tok, _ := tokens.Token()
	assert.Empty(t, tok)
}

func TestSignOut_ClearsLocalTokenEvenIfServerUnreachable(t *testing.T) {
	tokens := testTokens(t, "tok")
	c := New("http://127.0.0.1:0", tokens, 200*time.Millisecond, zerolog.Nop())
	require.NoError(t, c.SignOut(context.Background()))

	tok, err := tokens.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestCurrentUser_PrefersEmailThenUsernameThenSubject(t *testing.T) {
	cases := []struct {
		claims sessionClaims
		want   string
	}{
		{sessionClaims{Email: "a@example.com", Username: "alice", RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, "a@example.com"},
		{sessionClaims{Username: "alice", RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, "alice"},
		{sessionClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, "u1"},
	}
	for _, tc := range cases {
		c := New("http://unused.invalid", testTokens(t, signedTestToken(t, tc.claims)), time.Second, zerolog.Nop())
		assert.Equal(t, tc.want, c.CurrentUser())
	}
}

func TestCurrentUser_EmptyWhenSignedOutOrGarbage(t *testing.T) {
	c := New("http://unused.invalid", testTokens(t, ""), time.Second, zerolog.Nop())
	assert.Empty(t, c.CurrentUser())

	c = New("http://unused.invalid", testTokens(t, "not-a-jwt"), time.Second, zerolog.Nop())
	assert.Empty(t, c.CurrentUser())
}
