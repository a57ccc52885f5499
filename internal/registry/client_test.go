package registry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewClient(config.RegistryConfig{
		URL:            server.URL,
		Username:       "svc",
		Password:       "secret",
		TimeoutSeconds: 5,
	}, logger)
}

func TestQualifySubject(t *testing.T) {
	assert.Equal(t, "orders-value", QualifySubject("", "orders-value"))
	assert.Equal(t, "orders-value", QualifySubject(".", "orders-value"))
	assert.Equal(t, ":.staging:orders-value", QualifySubject("staging", "orders-value"))
}

func TestListSubjects_DefaultContext(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subjects", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("subjectPrefix"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "svc", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, json.NewEncoder(w).Encode([]string{"orders-value", "payments-value"}))
	}))

	subjects, err := client.ListSubjects(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders-value", "payments-value"}, subjects)
}

func TestListSubjects_NamedContextStripsPrefix(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ":.staging:", r.URL.Query().Get("subjectPrefix"))
		require.NoError(t, json.NewEncoder(w).Encode([]string{":.staging:orders-value"}))
	}))

	subjects, err := client.ListSubjects(context.Background(), "staging")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders-value"}, subjects)
}

func TestGetLatestSchema(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subjects/orders-value/versions/latest", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"subject": "orders-value",
			"id":      7,
			"version": 3,
			"schema":  `{"type":"record","name":"Order","fields":[]}`,
		}))
	}))

	schema, err := client.GetLatestSchema(context.Background(), "", "orders-value")
	require.NoError(t, err)
	assert.Equal(t, 7, schema.ID)
	assert.Equal(t, 3, schema.Version)
	assert.Equal(t, "orders-value", schema.Subject)
}

func TestRegisterSchema(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotEmpty(t, body["schema"])
		assert.Equal(t, "AVRO", body["schemaType"])

		require.NoError(t, json.NewEncoder(w).Encode(map[string]int{"id": 42}))
	}))

	id, err := client.RegisterSchema(context.Background(), "", "orders-value", &Schema{
		Schema:     `{"type":"record","name":"Order","fields":[]}`,
		SchemaType: "AVRO",
	})
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestDeleteSubject(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/subjects/orders-value", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode([]int{1, 2, 3}))
	}))

	versions, err := client.DeleteSubject(context.Background(), "", "orders-value")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, versions)
}

func TestSubjectNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"error_code": 40401,
			"message":    "Subject 'ghost' not found.",
		}))
	}))

	_, err := client.GetLatestSchema(context.Background(), "", "ghost")
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"error_code": 409,
			"message":    "Schema being registered is incompatible",
		}))
	}))

	_, err := client.RegisterSchema(context.Background(), "", "orders-value", &Schema{Schema: "{}"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "incompatible")
}

func TestCheckConnection(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode([]string{}))
	}))
	assert.NoError(t, client.CheckConnection(context.Background()))
}
