package bitcoin

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Signer is the only view of key material the transaction builder needs.
type Signer interface {
	// PubKey returns the compressed public key.
	PubKey() []byte
	// Sign returns a DER encoded ECDSA signature over hash.
	Sign(hash []byte) ([]byte, error)
}

type keySigner struct {
	key *btcec.PrivateKey
}

// NewKeySigner adapts a btcec private key to Signer.
func NewKeySigner(key *btcec.PrivateKey) Signer {
	return &keySigner{key: key}
}

func (s *keySigner) PubKey() []byte {
	return s.key.PubKey().SerializeCompressed()
}

func (s *keySigner) Sign(hash []byte) ([]byte, error) {
	return ecdsa.Sign(s.key, hash).Serialize(), nil
}
