package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"

	"github.com/chinmay1088/sats/chains/bitcoin"
	"github.com/chinmay1088/sats/satserr"
)

const (
	// Purpose is the BIP84 purpose field (native segwit P2WPKH).
	Purpose = 84

	// Mnemonic entropy bounds in bits
	MinEntropyBits = 128
	MaxEntropyBits = 256
)

// Branch is the change level of a derivation path.
type Branch uint32

const (
	// External addresses are handed out to receive funds.
	External Branch = 0
	// Internal addresses receive change.
	Internal Branch = 1
)

// Coordinate identifies one key below the purpose/coin-type prefix.
type Coordinate struct {
	Account uint32
	Change  Branch
	Index   uint32
}

// Path renders the full BIP84 derivation path for the given coin type.
func (c Coordinate) Path(coinType uint32) string {
	return fmt.Sprintf("m/%d'/%d'/%d'/%d/%d", Purpose, coinType, c.Account, c.Change, c.Index)
}

func (c Coordinate) validate() error {
	if c.Change != External && c.Change != Internal {
		return satserr.Newf(satserr.KindDerivation, "invalid change branch %d", c.Change)
	}
	if c.Account >= hdkeychain.HardenedKeyStart {
		return satserr.Newf(satserr.KindDerivation, "account %d out of range", c.Account)
	}
	if c.Index >= hdkeychain.HardenedKeyStart {
		return satserr.Newf(satserr.KindDerivation, "index %d out of range", c.Index)
	}
	return nil
}

// KeyPair is the key material at one coordinate.
type KeyPair struct {
	PrivateKey *btcec.PrivateKey
	PublicKey  *btcec.PublicKey
	Path       string
}

// GenerateMnemonic creates a new BIP39 mnemonic with the given entropy size
// in bits (128, 160, 192, 224 or 256).
func GenerateMnemonic(bits int) (string, error) {
	if bits < MinEntropyBits || bits > MaxEntropyBits || bits%32 != 0 {
		return "", satserr.Newf(satserr.KindDerivation, "invalid entropy size %d", bits)
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", satserr.Wrap(satserr.KindDerivation, err, "failed to generate entropy")
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", satserr.Wrap(satserr.KindDerivation, err, "failed to generate mnemonic")
	}
	return mnemonic, nil
}

// ValidateMnemonic checks the word list and checksum of mnemonic.
func ValidateMnemonic(mnemonic string) error {
	if !bip39.IsMnemonicValid(mnemonic) {
		return satserr.New(satserr.KindDerivation, "invalid mnemonic")
	}
	return nil
}

// SeedFromMnemonic derives the BIP39 seed of mnemonic and passphrase.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, satserr.Wrap(satserr.KindDerivation, err, "invalid mnemonic")
	}
	return seed, nil
}

// DeriveKeyAt derives the key pair at coord from seed. It is pure: the same
// inputs always give the same key.
func DeriveKeyAt(seed []byte, coord Coordinate, testnet bool) (*KeyPair, error) {
	return deriveKey(seed, coord, bitcoin.Network(testnet))
}

func deriveKey(seed []byte, coord Coordinate, params *chaincfg.Params) (*KeyPair, error) {
	if err := coord.validate(); err != nil {
		return nil, err
	}

	master, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, satserr.Wrap(satserr.KindDerivation, err, "failed to create master key")
	}

	coinType := bitcoin.CoinType(params)
	steps := []uint32{
		hdkeychain.HardenedKeyStart + Purpose,
		hdkeychain.HardenedKeyStart + coinType,
		hdkeychain.HardenedKeyStart + coord.Account,
		uint32(coord.Change),
		coord.Index,
	}
	key := master
	for _, step := range steps {
		key, err = key.Derive(step)
		if err != nil {
			return nil, satserr.Wrapf(satserr.KindDerivation, err, "failed to derive %s", coord.Path(coinType))
		}
	}

	privateKey, err := key.ECPrivKey()
	if err != nil {
		return nil, satserr.Wrap(satserr.KindDerivation, err, "no private key derived")
	}
	return &KeyPair{
		PrivateKey: privateKey,
		PublicKey:  privateKey.PubKey(),
		Path:       coord.Path(coinType),
	}, nil
}
