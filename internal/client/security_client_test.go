package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangoesafterplay/customer-onboarding/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *SecurityClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewSecurityClient(config.SecurityClientConfig{
		BaseURL:        server.URL,
		TimeoutSeconds: 2,
	})
}

func TestValidateTokenAccepted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tokens/validate", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "12345678", body["token"])

		json.NewEncoder(w).Encode(TokenValidation{Success: true, Valid: true, Message: "token valid"})
	})

	result, err := c.ValidateToken(context.Background(), "12345678")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Valid)
}

func TestValidateTokenRejectionIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(TokenValidation{Success: false, Valid: false, Message: "token expired"})
	})

	result, err := c.ValidateToken(context.Background(), "12345678")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "token expired", result.Message)
}

func TestValidateTokenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	c := NewSecurityClient(config.SecurityClientConfig{BaseURL: server.URL, TimeoutSeconds: 1})

	_, err := c.ValidateToken(context.Background(), "12345678")
	var unreachable *UnreachableError
	require.ErrorAs(t, err, &unreachable)
}

func TestValidateTokenGarbledResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	})

	_, err := c.ValidateToken(context.Background(), "12345678")
	var unreachable *UnreachableError
	require.ErrorAs(t, err, &unreachable)
}

func TestMarkTokenUsed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tokens/mark-used", r.URL.Path)
		json.NewEncoder(w).Encode(TokenConsumption{Success: true, Message: "token marked as used"})
	})

	result, err := c.MarkTokenUsed(context.Background(), "12345678")
	require.NoError(t, err)
	assert.True(t, result.Success)
}
