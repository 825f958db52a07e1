package bitcoin

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/chinmay1088/sats/satserr"
)

// P2WPKHAddress builds the native segwit address and output script paying to
// publicKey.
func P2WPKHAddress(publicKey *btcec.PublicKey, params *chaincfg.Params) (string, []byte, error) {
	if publicKey == nil {
		return "", nil, satserr.New(satserr.KindAddress, "missing public key")
	}
	witnessProg := btcutil.Hash160(publicKey.SerializeCompressed())
	address, err := btcutil.NewAddressWitnessPubKeyHash(witnessProg, orMainnet(params))
	if err != nil {
		return "", nil, satserr.Wrap(satserr.KindAddress, err, "failed to build p2wpkh address")
	}
	script, err := txscript.PayToAddrScript(address)
	if err != nil {
		return "", nil, satserr.Wrap(satserr.KindAddress, err, "failed to build p2wpkh script")
	}
	return address.EncodeAddress(), script, nil
}

// DecodeAddress parses address and checks it belongs to params.
func DecodeAddress(address string, params *chaincfg.Params) (btcutil.Address, error) {
	params = orMainnet(params)
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, satserr.Wrapf(satserr.KindAddress, err, "invalid address %q", address)
	}
	if !addr.IsForNet(params) {
		return nil, satserr.Newf(satserr.KindAddress, "address %q is not valid on %s", address, params.Name)
	}
	return addr, nil
}

// OutputScript returns the output script paying to address.
func OutputScript(address string, params *chaincfg.Params) ([]byte, error) {
	addr, err := DecodeAddress(address, params)
	if err != nil {
		return nil, err
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, satserr.Wrapf(satserr.KindAddress, err, "failed to create output script for %q", address)
	}
	return script, nil
}

// AddressFromScript decodes a standard single-address output script.
func AddressFromScript(script []byte, params *chaincfg.Params) (string, error) {
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(script, orMainnet(params))
	if err != nil {
		return "", satserr.Wrap(satserr.KindAddress, err, "failed to parse output script")
	}
	if len(addrs) != 1 {
		return "", satserr.Newf(satserr.KindAddress, "output script pays to %d addresses", len(addrs))
	}
	return addrs[0].EncodeAddress(), nil
}

// ValidateAddress validates a Bitcoin address for params.
func ValidateAddress(address string, params *chaincfg.Params) error {
	_, err := DecodeAddress(address, params)
	return err
}
