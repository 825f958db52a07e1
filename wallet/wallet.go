package wallet

import (
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	log "github.com/sirupsen/logrus"

	"github.com/chinmay1088/sats/chains/bitcoin"
	"github.com/chinmay1088/sats/satserr"
)

// Options configures a Wallet.
type Options struct {
	Testnet    bool
	Account    uint32
	Passphrase string
	// StartIndex is the first receive index to issue. Issuance state is not
	// persisted here, so callers resuming a wallet pass the next unused
	// index.
	StartIndex uint32
}

// ReceiveAddress is an issued address and where it came from.
type ReceiveAddress struct {
	Address string `json:"address"`
	Path    string `json:"path"`
	Index   uint32 `json:"index"`
}

// Wallet holds the key hierarchy of one BIP84 account and the next
// receive index. The index only moves forward: every NextReceiveAddress call
// returns a fresh address. The counter is guarded by a mutex, so a Wallet
// may be shared between goroutines.
type Wallet struct {
	mu        sync.Mutex
	seed      []byte
	params    *chaincfg.Params
	testnet   bool
	account   uint32
	nextIndex uint32
}

// FromMnemonic builds a wallet from a BIP39 mnemonic.
func FromMnemonic(mnemonic string, opts Options) (*Wallet, error) {
	if err := ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}
	seed, err := SeedFromMnemonic(mnemonic, opts.Passphrase)
	if err != nil {
		return nil, err
	}
	return FromSeed(seed, opts)
}

// FromSeed builds a wallet from a raw BIP32 seed.
func FromSeed(seed []byte, opts Options) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, satserr.New(satserr.KindDerivation, "empty seed")
	}
	if err := (Coordinate{Account: opts.Account, Index: opts.StartIndex}).validate(); err != nil {
		return nil, err
	}
	return &Wallet{
		seed:      append([]byte(nil), seed...),
		params:    bitcoin.Network(opts.Testnet),
		testnet:   opts.Testnet,
		account:   opts.Account,
		nextIndex: opts.StartIndex,
	}, nil
}

// Testnet reports whether the wallet derives testnet keys.
func (w *Wallet) Testnet() bool {
	return w.testnet
}

// Account returns the BIP84 account of the wallet.
func (w *Wallet) Account() uint32 {
	return w.account
}

// Network returns the chain parameters of the wallet.
func (w *Wallet) Network() *chaincfg.Params {
	return w.params
}

// NextIndex returns the index the next receive address will use.
func (w *Wallet) NextIndex() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.nextIndex
}

// KeyAt derives the key pair at index on branch of the wallet's account.
func (w *Wallet) KeyAt(index uint32, branch Branch) (*KeyPair, error) {
	return deriveKey(w.seed, Coordinate{Account: w.account, Change: branch, Index: index}, w.params)
}

// AddressAt returns the P2WPKH address at index on branch without touching
// the receive counter.
func (w *Wallet) AddressAt(index uint32, branch Branch) (*ReceiveAddress, error) {
	key, err := w.KeyAt(index, branch)
	if err != nil {
		return nil, err
	}
	address, _, err := bitcoin.P2WPKHAddress(key.PublicKey, w.params)
	if err != nil {
		return nil, err
	}
	return &ReceiveAddress{Address: address, Path: key.Path, Index: index}, nil
}

// NextReceiveAddress issues the receive address at the current index and
// advances the index by one. On failure the index is left unchanged.
func (w *Wallet) NextReceiveAddress() (*ReceiveAddress, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	addr, err := w.AddressAt(w.nextIndex, External)
	if err != nil {
		return nil, err
	}
	w.nextIndex++

	log.WithFields(log.Fields{
		"path":    addr.Path,
		"address": addr.Address,
	}).Debug("issued receive address")

	return addr, nil
}

// ExportPrivateKeyAt returns the WIF encoding of the private key at index
// on branch.
func (w *Wallet) ExportPrivateKeyAt(index uint32, branch Branch) (string, error) {
	key, err := w.KeyAt(index, branch)
	if err != nil {
		return "", err
	}
	wif, err := btcutil.NewWIF(key.PrivateKey, w.params, true)
	if err != nil {
		return "", satserr.Wrap(satserr.KindAddress, err, "failed to encode WIF")
	}
	return wif.String(), nil
}

// Signer returns a transaction signer for the key at index on branch.
func (w *Wallet) Signer(index uint32, branch Branch) (bitcoin.Signer, error) {
	key, err := w.KeyAt(index, branch)
	if err != nil {
		return nil, err
	}
	return bitcoin.NewKeySigner(key.PrivateKey), nil
}
