package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rentnest/rentnest/backend/internal/errors"
	"github.com/rentnest/rentnest/backend/internal/models"
)

func TestClientList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/properties", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		json.NewEncoder(w).Encode([]models.Record{{"id": "5", "rent": 1000.0}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	records, err := c.List(context.Background(), "properties")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "5", records[0].ID())
}

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tenants/7", r.URL.Path)
		json.NewEncoder(w).Encode(models.Record{"id": "7", "name": "Ana"})
	}))
	defer srv.Close()

	record, err := NewClient(srv.URL, "").Get(context.Background(), "tenants", "7")
	require.NoError(t, err)
	assert.Equal(t, "Ana", record["name"])
}

func TestClientGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Get(context.Background(), "tenants", "404")
	assert.True(t, IsNotFound(err))
	assert.True(t, apperrors.Is(err, apperrors.ErrRemoteNotFound))
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").List(context.Background(), "properties")
	assert.True(t, apperrors.Is(err, apperrors.ErrRemote))
	assert.False(t, IsNotFound(err))
}

func TestClientCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/properties", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload models.Record
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Flat 4B", payload["name"])

		payload["id"] = "42"
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	created, err := NewClient(srv.URL, "").Create(context.Background(), "properties", models.Record{"name": "Flat 4B"})
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID())
}

func TestClientPatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/properties/5", r.URL.Path)

		var payload models.Record
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, models.Record{"rent": 1200.0}, payload)

		json.NewEncoder(w).Encode(models.Record{"id": "5", "rent": 1200.0})
	}))
	defer srv.Close()

	updated, err := NewClient(srv.URL, "").Patch(context.Background(), "properties", "5", models.Record{"rent": 1200.0})
	require.NoError(t, err)
	assert.Equal(t, 1200.0, updated["rent"])
}

func TestClientBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]models.Record{})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "secret-token").List(context.Background(), "properties")
	require.NoError(t, err)
}

func TestClientNoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]models.Record{})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").List(context.Background(), "properties")
	require.NoError(t, err)
}

func TestClientContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL, "").List(ctx, "properties")
	assert.True(t, apperrors.Is(err, apperrors.ErrRemoteTimeout))
}

func TestClientTrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/properties", r.URL.Path)
		json.NewEncoder(w).Encode([]models.Record{})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL+"/", "").List(context.Background(), "properties")
	require.NoError(t, err)
}
