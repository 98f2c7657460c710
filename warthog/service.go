// Package warthog implements the wallet use-cases on top of the
// cryptographic core: creating and unlocking stored wallets, balance and
// history lookups, and signing and submitting transfers to a node.
package warthog

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/AlexZinkM/wartlock/internal/client"
	"github.com/AlexZinkM/wartlock/internal/store"

	"go.uber.org/zap"
)

// ErrInvalidPeerURL is returned for node URLs that are not absolute http(s) URLs.
var ErrInvalidPeerURL = errors.New("peer URL must be an absolute http or https URL")

// Node is the part of a Warthog node the wallet talks to.
type Node interface {
	ChainHead(ctx context.Context) (*client.ChainHead, error)
	RoundFee(ctx context.Context, feeE8 uint64) (uint64, error)
	SubmitTransaction(ctx context.Context, req *client.SubmitRequest) (string, error)
	Balance(ctx context.Context, address string) (uint64, error)
}

// PriceSource quotes WART in USD.
type PriceSource interface {
	WARTPriceUSD(ctx context.Context) (float64, error)
}

// HistorySource lists the transfers of an address.
type HistorySource interface {
	Transactions(ctx context.Context, address string) ([]client.WartscanTransaction, error)
}

var (
	_ Node          = (*client.WarthogClient)(nil)
	_ PriceSource   = (*client.CoinGeckoClient)(nil)
	_ HistorySource = (*client.WartscanClient)(nil)
)

// Config holds the endpoints the service talks to.
type Config struct {
	DefaultPeer  string // used until a peer is stored
	CoinGeckoURL string
	WartscanURL  string
	HTTPTimeout  time.Duration
}

// Service is safe for concurrent use.
type Service struct {
	store       *store.Store
	defaultPeer string
	dial        func(peerURL string) Node
	prices      PriceSource
	history     HistorySource
	nonce       func() (uint32, error)
	log         *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithNodeDialer overrides how a Node is built for the stored peer URL.
func WithNodeDialer(dial func(peerURL string) Node) Option {
	return func(s *Service) {
		s.dial = dial
	}
}

// WithPriceSource overrides the CoinGecko client.
func WithPriceSource(p PriceSource) Option {
	return func(s *Service) {
		s.prices = p
	}
}

// WithHistorySource overrides the Wartscan client.
func WithHistorySource(h HistorySource) Option {
	return func(s *Service) {
		s.history = h
	}
}

// WithNonceSource overrides the random nonce id generator.
func WithNonceSource(nonce func() (uint32, error)) Option {
	return func(s *Service) {
		s.nonce = nonce
	}
}

// NewService creates a Service backed by st.
func NewService(st *store.Store, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:       st,
		defaultPeer: client.NormalizePeerURL(cfg.DefaultPeer),
		dial: func(peerURL string) Node {
			return client.NewWarthogClient(peerURL, cfg.HTTPTimeout)
		},
		prices:  client.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.HTTPTimeout),
		history: client.NewWartscanClient(cfg.WartscanURL, cfg.HTTPTimeout),
		nonce:   randomNonce,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Peer returns the node URL in use.
func (s *Service) Peer() (string, error) {
	return s.store.Peer(s.defaultPeer)
}

// SetPeer validates and stores the node URL.
func (s *Service) SetPeer(peerURL string) (string, error) {
	normalized := client.NormalizePeerURL(peerURL)

	u, err := url.Parse(normalized)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidPeerURL
	}

	if err := s.store.SetPeer(normalized); err != nil {
		return "", err
	}
	s.log.Info("peer changed", zap.String("peer", normalized))
	return normalized, nil
}

func (s *Service) node() (Node, error) {
	peer, err := s.Peer()
	if err != nil {
		return nil, fmt.Errorf("failed to get peer: %w", err)
	}
	return s.dial(peer), nil
}

// randomNonce draws a nonce id from crypto/rand.
func randomNonce() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
