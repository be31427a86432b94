package order

import (
	"encoding/json"
	"fmt"

	"github.com/gofrs/uuid"
)

// Status is the closed set of order lifecycle states. Transitions only move
// forward; Delivered is terminal.
type Status string

const (
	StatusMultisigMissing  Status = "MultisigMissing"
	StatusMultisigComplete Status = "MultisigComplete"
	StatusShipped          Status = "Shipped"
	StatusDelivered        Status = "Delivered"
)

func (s Status) String() string {
	return string(s)
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusMultisigMissing:  {StatusMultisigComplete: true},
	StatusMultisigComplete: {StatusShipped: true},
	StatusShipped:          {StatusDelivered: true},
	StatusDelivered:        {},
}

// CanTransition reports whether advancing from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	transitions, ok := allowedTransitions[s]
	return ok && transitions[next]
}

// idPrefix distinguishes order identifiers from other entity classes.
const idPrefix = "O"

// NewID returns a fresh order identifier.
func NewID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("order: failed to generate id: %w", err)
	}
	return idPrefix + id.String(), nil
}

// Order is a buyer's escrowed purchase, tracked from payment-address
// issuance through delivery. The zero value (empty OrderID) is the sentinel
// used to signal "not found" or "denied"; it is never persisted.
type Order struct {
	OrderID          string `json:"orid"`
	CustomerID       string `json:"cid"`
	ProductID        string `json:"pid"`
	CreatedAt        int64  `json:"date"`
	ShipAddress      string `json:"ship_address"`
	EscrowSubaddress string `json:"subaddress"`
	Status           Status `json:"status"`
	Quantity         int64  `json:"quantity"`
}

// Empty reports whether o is the sentinel empty order.
func (o Order) Empty() bool {
	return o.OrderID == ""
}

func (o Order) encode() (string, error) {
	raw, err := json.Marshal(o)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// decodeOrder rebuilds an order from its store representation. The id under
// which the record was stored is authoritative.
func decodeOrder(id, raw string) (Order, error) {
	var o Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return Order{}, err
	}
	o.OrderID = id
	return o, nil
}
