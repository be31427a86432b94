package order

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/p2pmarket/order-service/internal/contact"
	"github.com/p2pmarket/order-service/internal/wallet"
)

// Guard authorizes a buyer to read their own order without any server-side
// session. The buyer proves control of the payment address registered in
// the contact directory by signing the order id. The signed message carries
// no freshness element, so a captured signature stays valid for its order.
type Guard struct {
	store    *Store
	contacts contact.Directory
	wallet   wallet.Client
}

func NewGuard(store *Store, contacts contact.Directory, w wallet.Client) *Guard {
	return &Guard{store: store, contacts: contacts, wallet: w}
}

// RetrieveOrder returns the order only when signature is a valid signature
// of the order id under the customer's registered payment address. Absence
// and denial both yield the sentinel empty order.
func (g *Guard) RetrieveOrder(ctx context.Context, orderID, signature string) (Order, error) {
	o, err := g.store.Find(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.Empty() {
		return Order{}, nil
	}

	// Linear scan; the directory exposes no lookup by network address. A
	// customer without a registered contact verifies against the empty
	// address and is denied.
	var paymentAddress string
	contacts, err := g.contacts.ListAll(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("guard: failed to list contacts: %w", err)
	}
	for _, c := range contacts {
		if c.NetworkAddress == o.CustomerID {
			paymentAddress = c.PaymentAddress
		}
	}

	valid, err := g.wallet.Verify(ctx, paymentAddress, o.OrderID, signature)
	if err != nil {
		return Order{}, fmt.Errorf("guard: failed to verify signature for order %s: %w", orderID, err)
	}
	if !valid {
		log.Warn().Str("order_id", orderID).Msg("guard: signature rejected")
		return Order{}, nil
	}
	return o, nil
}
