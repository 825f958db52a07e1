package bitcoin

import (
	"strings"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/chinmay1088/sats/satserr"
)

// Network name constants
const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
	NetworkRegtest = "regtest"
	NetworkSignet  = "signet"
)

// Network returns the chain parameters for mainnet or testnet.
func Network(testnet bool) *chaincfg.Params {
	if testnet {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}

// NetworkByName resolves a network name to its chain parameters.
func NetworkByName(name string) (*chaincfg.Params, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NetworkMainnet, "bitcoin", "main", "":
		return &chaincfg.MainNetParams, nil
	case NetworkTestnet, "testnet3", "test":
		return &chaincfg.TestNet3Params, nil
	case NetworkRegtest:
		return &chaincfg.RegressionNetParams, nil
	case NetworkSignet:
		return &chaincfg.SigNetParams, nil
	default:
		return nil, satserr.Newf(satserr.KindNetwork, "unknown bitcoin network %q", name)
	}
}

// IsMainnet reports whether params describe bitcoin mainnet.
func IsMainnet(params *chaincfg.Params) bool {
	return params != nil && params.Net == chaincfg.MainNetParams.Net
}

// CoinType returns the BIP44 coin type used for params: 0 on mainnet and 1
// on every test network.
func CoinType(params *chaincfg.Params) uint32 {
	if IsMainnet(params) {
		return 0
	}
	return 1
}

func orMainnet(params *chaincfg.Params) *chaincfg.Params {
	if params == nil {
		return &chaincfg.MainNetParams
	}
	return params
}
