package provider

import (
	"sort"
	"strings"

	"github.com/chinmay1088/sats/satserr"
)

// Public Esplora endpoints
const (
	BlockstreamMainnetURL = "https://blockstream.info/api"
	BlockstreamTestnetURL = "https://blockstream.info/testnet/api"
	MempoolMainnetURL     = "https://mempool.space/api"
	MempoolTestnetURL     = "https://mempool.space/testnet/api"
)

// Preset names accepted by ByName
const (
	PresetBlockstream = "blockstream"
	PresetMempool     = "mempool"
)

// Blockstream returns an adapter for blockstream.info.
func Blockstream(testnet bool, opts ...Option) *Esplora {
	url := BlockstreamMainnetURL
	if testnet {
		url = BlockstreamTestnetURL
	}
	return NewEsplora(url, append([]Option{WithName(PresetBlockstream)}, opts...)...)
}

// Mempool returns an adapter for mempool.space.
func Mempool(testnet bool, opts ...Option) *Esplora {
	url := MempoolMainnetURL
	if testnet {
		url = MempoolTestnetURL
	}
	return NewEsplora(url, append([]Option{WithName(PresetMempool)}, opts...)...)
}

var presets = map[string]func(bool, ...Option) *Esplora{
	PresetBlockstream: Blockstream,
	PresetMempool:     Mempool,
}

// ByName resolves a preset name. Anything starting with http:// or https://
// is taken as the base URL of a custom Esplora instance.
func ByName(name string, testnet bool, opts ...Option) (*Esplora, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return NewEsplora(strings.TrimSpace(name), opts...), nil
	}
	preset, ok := presets[key]
	if !ok {
		return nil, satserr.Newf(satserr.KindProvider,
			"unknown provider %q (known: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return preset(testnet, opts...), nil
}

// PresetNames returns the known preset names in order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
