// Package wallet is a JSON-RPC client for the escrow wallet service. It
// covers the slice of the wallet RPC this service needs: subaddress
// generation, per-order multisig wallet provisioning, multisig signing and
// submission, and signature verification.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
)

// SubmitResult is the outcome of submitting a signed multisig transaction.
// An empty TxHashList means the submission did not go through; callers must
// check for that rather than rely on an error.
type SubmitResult struct {
	TxHashList []string `json:"tx_hash_list"`
}

// Client is the escrow wallet service contract consumed by the order
// lifecycle and the access guard.
type Client interface {
	CreateAddress(ctx context.Context) (string, error)
	CreateWallet(ctx context.Context, name, password string) (bool, error)
	CloseWallet(ctx context.Context, name, password string) error
	SignMultisig(ctx context.Context, txDataHex string) (string, error)
	SubmitMultisig(ctx context.Context, signedTxHex string) (SubmitResult, error)
	Verify(ctx context.Context, address, message, signature string) (bool, error)
}

// RPCClient implements Client against the wallet JSON-RPC endpoint. No
// request timeout is set here; deadlines come from the caller's context.
type RPCClient struct {
	baseURL string
	http    *http.Client
	nextID  atomic.Int64
}

func NewRPCClient(baseURL string) *RPCClient {
	return &RPCClient{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *RPCClient) CreateAddress(ctx context.Context) (string, error) {
	var result struct {
		Address string `json:"address"`
	}
	params := map[string]interface{}{"account_index": 0}
	if err := c.call(ctx, "create_address", params, &result); err != nil {
		return "", err
	}
	return result.Address, nil
}

func (c *RPCClient) CreateWallet(ctx context.Context, name, password string) (bool, error) {
	params := map[string]string{
		"filename": name,
		"password": password,
		"language": "English",
	}
	if err := c.call(ctx, "create_wallet", params, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RPCClient) CloseWallet(ctx context.Context, name, password string) error {
	params := map[string]string{
		"filename": name,
		"password": password,
	}
	return c.call(ctx, "close_wallet", params, nil)
}

func (c *RPCClient) SignMultisig(ctx context.Context, txDataHex string) (string, error) {
	var result struct {
		TxDataHex string `json:"tx_data_hex"`
	}
	params := map[string]string{"tx_data_hex": txDataHex}
	if err := c.call(ctx, "sign_multisig", params, &result); err != nil {
		return "", err
	}
	return result.TxDataHex, nil
}

func (c *RPCClient) SubmitMultisig(ctx context.Context, signedTxHex string) (SubmitResult, error) {
	var result SubmitResult
	params := map[string]string{"tx_data_hex": signedTxHex}
	if err := c.call(ctx, "submit_multisig", params, &result); err != nil {
		return SubmitResult{}, err
	}
	return result, nil
}

func (c *RPCClient) Verify(ctx context.Context, address, message, signature string) (bool, error) {
	var result struct {
		Good bool `json:"good"`
	}
	params := map[string]string{
		"address":   address,
		"data":      message,
		"signature": signature,
	}
	if err := c.call(ctx, "verify", params, &result); err != nil {
		return false, err
	}
	return result.Good, nil
}

func (c *RPCClient) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	body := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("wallet: rpc %s failed: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("wallet: rpc %s failed: status=%d body=%s", method, resp.StatusCode, string(respBody))
	}
	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("wallet: rpc %s failed: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("wallet: rpc %s error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if out == nil {
		return nil
	}
	if len(rpcResp.Result) == 0 {
		return errors.New("wallet: rpc returned empty result")
	}
	return json.Unmarshal(rpcResp.Result, out)
}
