package order

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/p2pmarket/order-service/internal/wallet"
)

// CreateRequest carries the buyer-supplied fields for a new order.
type CreateRequest struct {
	CustomerID  string `json:"cid"`
	ProductID   string `json:"pid"`
	ShipAddress string `json:"ship_address"`
	Quantity    int64  `json:"quantity"`
}

// Service drives the order lifecycle: escrow provisioning at creation and
// the multisig payment pipeline afterwards.
type Service struct {
	store          *Store
	wallet         wallet.Client
	walletName     string
	walletPassword string
	now            func() int64
}

func NewService(store *Store, w wallet.Client, walletName, walletPassword string) *Service {
	return &Service{
		store:          store,
		wallet:         w,
		walletName:     walletName,
		walletPassword: walletPassword,
		now:            func() int64 { return time.Now().Unix() },
	}
}

// CreateOrder provisions escrow for a new order and persists it. Wallet
// provisioning failures abandon the operation and return the sentinel empty
// order; retrying allocates a fresh identifier, there is no resumption of a
// half-created order. The per-order wallet session is closed on every exit
// path.
func (s *Service) CreateOrder(ctx context.Context, req CreateRequest) (Order, error) {
	log.Info().Str("customer_id", req.CustomerID).Msg("service: creating order")

	// The shared marketplace wallet must not stay open while the per-order
	// multisig wallet is provisioned.
	if err := s.wallet.CloseWallet(ctx, s.walletName, s.walletPassword); err != nil {
		log.Warn().Err(err).Msg("service: failed to close shared wallet")
	}

	orderID, err := NewID()
	if err != nil {
		return Order{}, fmt.Errorf("service: %w", err)
	}

	subaddress, err := s.wallet.CreateAddress(ctx)
	if err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("service: failed to create escrow subaddress")
		return Order{}, nil
	}

	o := Order{
		OrderID:          orderID,
		CustomerID:       req.CustomerID,
		ProductID:        req.ProductID,
		CreatedAt:        s.now(),
		ShipAddress:      req.ShipAddress,
		EscrowSubaddress: subaddress,
		Status:           StatusMultisigMissing,
		Quantity:         req.Quantity,
	}

	created, err := s.wallet.CreateWallet(ctx, orderID, "")
	if err != nil || !created {
		log.Error().Err(err).Str("order_id", orderID).Msg("service: failed to create multisig wallet")
		s.closeOrderWallet(ctx, orderID)
		return Order{}, nil
	}

	if err := s.store.Create(ctx, o); err != nil {
		s.closeOrderWallet(ctx, orderID)
		return Order{}, fmt.Errorf("service: failed to persist order %s: %w", orderID, err)
	}

	s.closeOrderWallet(ctx, orderID)
	log.Info().Str("order_id", orderID).Str("status", o.Status.String()).Msg("service: order created")
	return o, nil
}

func (s *Service) closeOrderWallet(ctx context.Context, orderID string) {
	if err := s.wallet.CloseWallet(ctx, orderID, s.walletPassword); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("service: failed to close order wallet")
	}
}

// SignAndSubmitPayment signs the supplied multisig transaction blob and
// submits it. The returned result may contain no transaction hashes when
// submission does not go through; callers must inspect TxHashList rather
// than rely on an error. Order status is not advanced here.
func (s *Service) SignAndSubmitPayment(ctx context.Context, orderID, txDataHex string) (wallet.SubmitResult, error) {
	log.Info().Str("order_id", orderID).Msg("service: signing and submitting multisig payment")

	signed, err := s.wallet.SignMultisig(ctx, txDataHex)
	if err != nil {
		return wallet.SubmitResult{}, fmt.Errorf("service: failed to sign multisig for order %s: %w", orderID, err)
	}
	result, err := s.wallet.SubmitMultisig(ctx, signed)
	if err != nil {
		return wallet.SubmitResult{}, fmt.Errorf("service: failed to submit multisig for order %s: %w", orderID, err)
	}
	if len(result.TxHashList) == 0 {
		log.Error().Str("order_id", orderID).Msg("service: unable to submit payment")
	}
	return result, nil
}

// ValidateForShipment reports whether an order is ready to advance to
// MultisigComplete. Not implemented yet: the full check imports multisig
// sync info, compares the settled balance against the order total and
// confirms the unlock time has elapsed before advancing status in one
// guarded step. Until then it always reports not eligible and has no side
// effects.
func (s *Service) ValidateForShipment(ctx context.Context) bool {
	log.Info().Msg("service: validating order for shipment")
	return false
}
