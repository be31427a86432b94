package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2pmarket/order-service/internal/contact"
	"github.com/p2pmarket/order-service/internal/kv"
	"github.com/p2pmarket/order-service/internal/order"
	"github.com/p2pmarket/order-service/internal/transport"
	"github.com/p2pmarket/order-service/internal/wallet"
)

type stubWallet struct {
	verifyResult bool
}

func (s *stubWallet) CreateAddress(ctx context.Context) (string, error) {
	return "sub-address-1", nil
}

func (s *stubWallet) CreateWallet(ctx context.Context, name, password string) (bool, error) {
	return true, nil
}

func (s *stubWallet) CloseWallet(ctx context.Context, name, password string) error {
	return nil
}

func (s *stubWallet) SignMultisig(ctx context.Context, txDataHex string) (string, error) {
	return "signed:" + txDataHex, nil
}

func (s *stubWallet) SubmitMultisig(ctx context.Context, signedTxHex string) (wallet.SubmitResult, error) {
	return wallet.SubmitResult{TxHashList: []string{"hash1"}}, nil
}

func (s *stubWallet) Verify(ctx context.Context, address, message, signature string) (bool, error) {
	return s.verifyResult, nil
}

type stubDirectory struct {
	contacts []contact.Contact
}

func (s *stubDirectory) ListAll(ctx context.Context) ([]contact.Contact, error) {
	return s.contacts, nil
}

func newTestServer(t *testing.T, w wallet.Client, d contact.Directory) (*httptest.Server, *order.Store) {
	t.Helper()
	store := order.NewStore(kv.NewMemStore())
	svc := order.NewService(store, w, "marketplace", "password")
	guard := order.NewGuard(store, d, w)
	srv := httptest.NewServer(transport.NewRouter(store, svc, guard))
	t.Cleanup(srv.Close)
	return srv, store
}

func TestOrderHandler_CreateAndGet(t *testing.T) {
	srv, _ := newTestServer(t, &stubWallet{}, &stubDirectory{})

	body := `{"cid":"cust1","pid":"prod1","ship_address":"addr","quantity":2}`
	resp, err := http.Post(srv.URL+"/orders", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created order.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, order.StatusMultisigMissing, created.Status)
	assert.NotEmpty(t, created.EscrowSubaddress)

	getResp, err := http.Get(srv.URL + "/orders/" + created.OrderID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var fetched order.Order
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&fetched))
	assert.Equal(t, created, fetched)
}

func TestOrderHandler_GetOrderByID_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, &stubWallet{}, &stubDirectory{})

	resp, err := http.Get(srv.URL + "/orders/O404")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrderHandler_ListOrders(t *testing.T) {
	srv, store := newTestServer(t, &stubWallet{}, &stubDirectory{})

	require.NoError(t, store.Create(context.Background(), order.Order{
		OrderID:    "O1",
		CustomerID: "cust1",
		ProductID:  "prod1",
		Status:     order.StatusMultisigMissing,
		Quantity:   1,
	}))

	resp, err := http.Get(srv.URL + "/orders")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var orders []order.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "O1", orders[0].OrderID)
}

func TestOrderHandler_RetrieveOrder(t *testing.T) {
	tests := []struct {
		name       string
		verifyOK   bool
		wantStatus int
	}{
		{name: "authorized", verifyOK: true, wantStatus: http.StatusOK},
		{name: "denied", verifyOK: false, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directory := &stubDirectory{contacts: []contact.Contact{
				{NetworkAddress: "cust1", PaymentAddress: "cust1-addr"},
			}}
			srv, store := newTestServer(t, &stubWallet{verifyResult: tt.verifyOK}, directory)

			require.NoError(t, store.Create(context.Background(), order.Order{
				OrderID:    "O1",
				CustomerID: "cust1",
				ProductID:  "prod1",
				Status:     order.StatusMultisigMissing,
				Quantity:   1,
			}))

			resp, err := http.Get(srv.URL + "/orders/O1/retrieve/some-signature")
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestOrderHandler_SubmitPayment(t *testing.T) {
	srv, _ := newTestServer(t, &stubWallet{}, &stubDirectory{})

	body := `{"tx_data_hex":"raw-blob"}`
	resp, err := http.Post(srv.URL+"/orders/O1/submit", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result wallet.SubmitResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"hash1"}, result.TxHashList)
}

func TestOrderHandler_ValidateShipment(t *testing.T) {
	srv, _ := newTestServer(t, &stubWallet{}, &stubDirectory{})

	resp, err := http.Post(srv.URL+"/orders/validate-shipment", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result["eligible"])
}
