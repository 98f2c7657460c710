// Package store persists wallet metadata (address, name, encrypted key,
// salt) and application settings in a badger database.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/AlexZinkM/wartlock/internal/model"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const (
	prefixWallet = "wallet:"
	prefixData   = "data:"

	keyPeer = "peer"
)

// ErrWalletNotFound is returned when no wallet is stored under an address.
var ErrWalletNotFound = errors.New("wallet not found")

// WalletExistsError is returned when inserting an address that is already stored.
type WalletExistsError struct {
	Address string
}

func (e *WalletExistsError) Error() string {
	return fmt.Sprintf("wallet %s already exists", e.Address)
}

// IsWalletExistsError checks if error is WalletExistsError
func IsWalletExistsError(err error) bool {
	var target *WalletExistsError
	return errors.As(err, &target)
}

// Store is safe for concurrent use.
type Store struct {
	db  *badger.DB
	now func() time.Time
}

type options struct {
	inMemory bool
	log      *zap.Logger
}

// Option configures Open.
type Option func(*options)

// WithInMemory keeps the database in memory; the path is ignored.
func WithInMemory() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// WithLogger routes badger's internal logging to log.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Open opens (or creates) the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	bopts := badger.DefaultOptions(path)
	if o.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	if o.log != nil {
		bopts = bopts.WithLogger(badgerLogger{o.log.Named("badger").Sugar()})
	} else {
		bopts = bopts.WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet db: %w", err)
	}

	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertWallet stores a new wallet. LastModified is set by the store.
func (s *Store) InsertWallet(rec *model.WalletRecord) error {
	if rec.Address == "" {
		return errors.New("wallet address is required")
	}
	key := walletKey(rec.Address)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return &WalletExistsError{Address: rec.Address}
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check wallet: %w", err)
		}

		rec.LastModified = s.now()
		return putWallet(txn, rec)
	})
}

// Wallet returns the wallet stored under address.
func (s *Store) Wallet(address string) (*model.WalletRecord, error) {
	var rec *model.WalletRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getWallet(txn, address)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Wallets returns all wallets sorted by name, then address.
func (s *Store) Wallets() ([]model.WalletRecord, error) {
	wallets := []model.WalletRecord{}

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixWallet)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec model.WalletRecord
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &rec)
			}); err != nil {
				return fmt.Errorf("failed to decode wallet %s: %w", it.Item().Key(), err)
			}
			wallets = append(wallets, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(wallets, func(i, j int) bool {
		if wallets[i].Name != wallets[j].Name {
			return wallets[i].Name < wallets[j].Name
		}
		return wallets[i].Address < wallets[j].Address
	})

	return wallets, nil
}

// UpdateWallet applies fn to the stored record and saves it.
// The address cannot be changed.
func (s *Store) UpdateWallet(address string, fn func(rec *model.WalletRecord) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		rec, err := getWallet(txn, address)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
		rec.Address = address
		rec.LastModified = s.now()
		return putWallet(txn, rec)
	})
}

// UpdateWalletName renames a wallet.
func (s *Store) UpdateWalletName(address, name string) error {
	return s.UpdateWallet(address, func(rec *model.WalletRecord) error {
		rec.Name = name
		return nil
	})
}

// UpdateLastBalance caches the last seen balance.
func (s *Store) UpdateLastBalance(address, balance string) error {
	return s.UpdateWallet(address, func(rec *model.WalletRecord) error {
		rec.LastBalance = balance
		return nil
	})
}

// DeleteWallet removes a wallet.
func (s *Store) DeleteWallet(address string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := getWallet(txn, address); err != nil {
			return err
		}
		return txn.Delete(walletKey(address))
	})
}

// Data returns a setting; ok is false when it is not set.
func (s *Store) Data(key string) (value string, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixData + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		value, ok = string(v), true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, ok, nil
}

// SetData stores a setting.
func (s *Store) SetData(key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixData+key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Peer returns the node URL, falling back to def when none is stored.
func (s *Store) Peer(def string) (string, error) {
	peer, ok, err := s.Data(keyPeer)
	if err != nil {
		return "", err
	}
	if !ok || peer == "" {
		return def, nil
	}
	return peer, nil
}

// SetPeer stores the node URL.
func (s *Store) SetPeer(url string) error {
	return s.SetData(keyPeer, url)
}

// EnsurePeer seeds the node URL on first run.
func (s *Store) EnsurePeer(def string) error {
	_, ok, err := s.Data(keyPeer)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return s.SetPeer(def)
}

func walletKey(address string) []byte {
	return []byte(prefixWallet + address)
}

func getWallet(txn *badger.Txn, address string) (*model.WalletRecord, error) {
	item, err := txn.Get(walletKey(address))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	var rec model.WalletRecord
	if err := item.Value(func(v []byte) error {
		return json.Unmarshal(v, &rec)
	}); err != nil {
		return nil, fmt.Errorf("failed to decode wallet: %w", err)
	}
	return &rec, nil
}

func putWallet(txn *badger.Txn, rec *model.WalletRecord) error {
	v, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode wallet: %w", err)
	}
	return txn.Set(walletKey(rec.Address), v)
}

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
