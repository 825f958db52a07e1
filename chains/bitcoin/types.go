package bitcoin

// UTXO is an unspent output as reported by chain data sources. Values are
// integer satoshis.
type UTXO struct {
	TxID  string `json:"txid"`
	Vout  uint32 `json:"vout"`
	Value int64  `json:"value"`
	// ScriptPubKey is the hex encoded output script. When empty, the
	// transaction builder assumes the output pays to the change address.
	ScriptPubKey string `json:"scriptPubKey,omitempty"`
}

// Output is a requested payment.
type Output struct {
	Address string `json:"address"`
	Value   int64  `json:"value"`
}

// Balance holds the funded and spent totals of an address in satoshis.
type Balance struct {
	Funded int64 `json:"funded"`
	Spent  int64 `json:"spent"`
}

// Available returns the unspent amount.
func (b Balance) Available() int64 {
	return b.Funded - b.Spent
}

// FinalTx is a fully signed and serialized transaction.
type FinalTx struct {
	Hex  string `json:"hex"`
	TxID string `json:"txid"`
}

// SumUTXOs returns the total value of utxos and false on overflow or on a
// negative value.
func SumUTXOs(utxos []UTXO) (int64, bool) {
	var total int64
	for _, u := range utxos {
		if u.Value < 0 {
			return 0, false
		}
		var ok bool
		if total, ok = addSats(total, u.Value); !ok {
			return 0, false
		}
	}
	return total, true
}

// SumOutputs returns the total value of outputs plus fee and false on
// overflow.
func SumOutputs(outputs []Output, fee int64) (int64, bool) {
	total := fee
	for _, o := range outputs {
		var ok bool
		if total, ok = addSats(total, o.Value); !ok {
			return 0, false
		}
	}
	return total, true
}

func addSats(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}
