// Package contact resolves peer network addresses to registered payment
// addresses via the marketplace contact directory.
package contact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Contact maps a peer's network address to its registered payment address.
type Contact struct {
	NetworkAddress string `json:"network_address"`
	PaymentAddress string `json:"payment_address"`
}

// Directory lists all registered contacts. No lookup shortcut exists;
// consumers scan the full list.
type Directory interface {
	ListAll(ctx context.Context) ([]Contact, error)
}

// HTTPDirectory fetches the contact list from the directory service. No
// request timeout is set here; deadlines come from the caller's context.
type HTTPDirectory struct {
	baseURL string
	http    *http.Client
}

func NewHTTPDirectory(baseURL string) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

func (d *HTTPDirectory) ListAll(ctx context.Context) ([]Contact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/contacts", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contact: failed to list contacts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("contact: failed to list contacts: status=%d body=%s", resp.StatusCode, string(body))
	}
	var contacts []Contact
	if err := json.NewDecoder(resp.Body).Decode(&contacts); err != nil {
		return nil, fmt.Errorf("contact: failed to decode contact list: %w", err)
	}
	return contacts, nil
}
