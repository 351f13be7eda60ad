package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	j := NewJWT("test-secret")

	token, err := j.Sign(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uid, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewJWT("secret-one").Sign(42)
	require.NoError(t, err)

	_, err = NewJWT("secret-two").Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewJWT("secret").Verify("not.a.token")
	assert.Error(t, err)
}

func TestTokensCarryUniqueIDs(t *testing.T) {
	j := NewJWT("secret")

	a, err := j.Sign(1)
	require.NoError(t, err)
	b, err := j.Sign(1)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "jti makes tokens distinct")
}

func TestHashComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, ComparePassword(hash, "correct horse battery"))
	assert.False(t, ComparePassword(hash, "wrong"))
}

func TestRequireAuth(t *testing.T) {
	j := NewJWT("secret")
	token, err := j.Sign(7)
	require.NoError(t, err)

	var gotUID uint64
	h := RequireAuth(j)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		gotUID = uid
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), gotUID)

	// missing header
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// malformed scheme
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// bad token
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
