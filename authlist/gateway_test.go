package authlist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "go.pilab.hu/grants/errors"
)

func TestHTTPGateway_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, ListPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"clientId":"a1","clientName":"Foo","issued":"2021-01-01","scope":"openid"},{"clientId":"b2","clientName":"Bar","issued":"2021-02-02"}]`))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(BaseRoutes{BaseURL: srv.URL}, "secret")
	records, err := gw.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Record{foo, bar}, records)
}

func TestHTTPGateway_Revoke(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(BaseRoutes{BaseURL: srv.URL}, "")
	require.NoError(t, gw.Revoke(context.Background(), "a1"))
	assert.Equal(t, ListPath+"/a1", gotPath)
}

func TestHTTPGateway_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("oops"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"invalid or expired token"}`))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(BaseRoutes{BaseURL: srv.URL}, "")

	_, err := gw.List(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Nil(t, statusErr.API)

	err = gw.Revoke(context.Background(), "a1")
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)

	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierrors.Unauthorized, apiErr.Code)
}
