package contact_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2pmarket/order-service/internal/contact"
)

func TestHTTPDirectory_ListAll(t *testing.T) {
	want := []contact.Contact{
		{NetworkAddress: "peer1.i2p", PaymentAddress: "addr1"},
		{NetworkAddress: "peer2.i2p", PaymentAddress: "addr2"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contacts", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(want))
	}))
	defer srv.Close()

	directory := contact.NewHTTPDirectory(srv.URL)
	contacts, err := directory.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, contacts)
}

func TestHTTPDirectory_ListAll_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	directory := contact.NewHTTPDirectory(srv.URL)
	_, err := directory.ListAll(context.Background())
	assert.Error(t, err)
}
