package bitcoin

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/chinmay1088/sats/satserr"
)

const (
	// txVersion is the version of every built transaction.
	txVersion int32 = 2
	// sigHashType is used for every input signature.
	sigHashType = txscript.SigHashAll
)

// BuildParams describes an unsigned transaction. The UTXO set is used as is:
// coin selection happens before building.
type BuildParams struct {
	UTXOs         []UTXO
	Outputs       []Output
	ChangeAddress string
	Fee           int64
	// Network defaults to mainnet when nil.
	Network *chaincfg.Params
}

// Template is an unsigned (or partially signed) transaction ready for
// signing and finalization.
type Template struct {
	Packet *psbt.Packet
	Fee    int64
	// ChangeIndex is the index of the change output, or -1 when the inputs
	// were spent exactly.
	ChangeIndex int

	params      *chaincfg.Params
	inputTotal  int64
	outputTotal int64
}

// Network returns the chain parameters the template was built for.
func (t *Template) Network() *chaincfg.Params {
	return t.params
}

// InputTotal returns the sum of input values in satoshis.
func (t *Template) InputTotal() int64 {
	return t.inputTotal
}

// OutputTotal returns the sum of output values, change included.
func (t *Template) OutputTotal() int64 {
	return t.outputTotal
}

// Change returns the change amount, or zero when there is no change output.
func (t *Template) Change() int64 {
	if t.ChangeIndex < 0 {
		return 0
	}
	return t.Packet.UnsignedTx.TxOut[t.ChangeIndex].Value
}

// Base64 returns the PSBT in its base64 interchange encoding.
func (t *Template) Base64() (string, error) {
	encoded, err := t.Packet.B64Encode()
	if err != nil {
		return "", satserr.Wrap(satserr.KindPsbtBuild, err, "failed to encode psbt")
	}
	return encoded, nil
}

// BuildTemplate validates monetary conservation and assembles an unsigned
// transaction from params. Nothing is materialized unless the inputs cover
// the outputs plus fee; any residual becomes a single change output.
//
// A UTXO without ScriptPubKey is assumed to pay to the change address. This
// is a convenience for single-address wallets: callers mixing script types
// must provide every input script.
func BuildTemplate(params BuildParams) (*Template, error) {
	net := orMainnet(params.Network)

	if params.Fee < 0 {
		return nil, satserr.New(satserr.KindPsbtBuild, "fee must be >= 0")
	}
	for i, o := range params.Outputs {
		if o.Value <= 0 {
			return nil, satserr.Newf(satserr.KindPsbtBuild, "output %d value must be > 0", i)
		}
	}

	totalIn, ok := SumUTXOs(params.UTXOs)
	if !ok {
		return nil, satserr.New(satserr.KindPsbtBuild, "utxo values must be non-negative and fit in int64")
	}
	totalOut, ok := SumOutputs(params.Outputs, params.Fee)
	if !ok {
		return nil, satserr.New(satserr.KindPsbtBuild, "output values overflow int64")
	}
	if totalOut > totalIn {
		return nil, satserr.Newf(satserr.KindInsufficientFunds,
			"insufficient funds: have %d sats, need %d sats", totalIn, totalOut)
	}

	changeScript, err := OutputScript(params.ChangeAddress, net)
	if err != nil {
		return nil, err
	}

	inputs := make([]*wire.OutPoint, 0, len(params.UTXOs))
	sequences := make([]uint32, 0, len(params.UTXOs))
	prevOuts := make([]*wire.TxOut, 0, len(params.UTXOs))
	for i, u := range params.UTXOs {
		prevHash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return nil, satserr.Wrapf(satserr.KindPsbtBuild, err, "invalid txid for input %d", i)
		}
		script := changeScript
		if u.ScriptPubKey != "" {
			script, err = hex.DecodeString(u.ScriptPubKey)
			if err != nil {
				return nil, satserr.Wrapf(satserr.KindPsbtBuild, err, "invalid scriptPubKey for input %d", i)
			}
		}
		inputs = append(inputs, wire.NewOutPoint(prevHash, u.Vout))
		sequences = append(sequences, wire.MaxTxInSequenceNum)
		prevOuts = append(prevOuts, wire.NewTxOut(u.Value, script))
	}

	outputs := make([]*wire.TxOut, 0, len(params.Outputs)+1)
	for _, o := range params.Outputs {
		script, err := OutputScript(o.Address, net)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, wire.NewTxOut(o.Value, script))
	}

	changeIndex := -1
	if change := totalIn - totalOut; change > 0 {
		changeIndex = len(outputs)
		outputs = append(outputs, wire.NewTxOut(change, changeScript))
	}

	packet, err := psbt.New(inputs, outputs, txVersion, 0, sequences)
	if err != nil {
		return nil, satserr.Wrap(satserr.KindPsbtBuild, err, "failed to create psbt")
	}
	updater, err := psbt.NewUpdater(packet)
	if err != nil {
		return nil, satserr.Wrap(satserr.KindPsbtBuild, err, "failed to create psbt updater")
	}
	for i, prevOut := range prevOuts {
		if err := updater.AddInWitnessUtxo(prevOut, i); err != nil {
			return nil, satserr.Wrapf(satserr.KindPsbtBuild, err, "failed to add witness utxo to input %d", i)
		}
	}

	return &Template{
		Packet:      packet,
		Fee:         params.Fee,
		ChangeIndex: changeIndex,
		params:      net,
		inputTotal:  totalIn,
		outputTotal: totalIn - params.Fee,
	}, nil
}

// Sign signs every input of t paying to signer's P2WPKH script. Inputs that
// belong to other keys are left untouched; at least one input must be
// signed. Signatures are collected on a copy of the packet, so t is only
// modified when every input signs.
func Sign(t *Template, signer Signer) error {
	if t == nil || t.Packet == nil {
		return satserr.New(satserr.KindPsbtBuild, "missing template")
	}
	pubKeyBytes := signer.PubKey()
	pubKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return satserr.Wrap(satserr.KindPsbtBuild, err, "invalid signer public key")
	}
	_, ownScript, err := P2WPKHAddress(pubKey, t.params)
	if err != nil {
		return err
	}

	packet, err := clonePacket(t.Packet)
	if err != nil {
		return err
	}
	updater, err := psbt.NewUpdater(packet)
	if err != nil {
		return satserr.Wrap(satserr.KindPsbtBuild, err, "failed to create psbt updater")
	}

	tx := packet.UnsignedTx
	sigHashes := txscript.NewTxSigHashes(tx, prevOutFetcher(packet))
	signed := 0
	for i := range tx.TxIn {
		in := packet.Inputs[i]
		if in.WitnessUtxo == nil {
			return satserr.Newf(satserr.KindPsbtBuild, "input %d has no witness utxo", i)
		}
		if len(in.FinalScriptWitness) > 0 || !bytes.Equal(in.WitnessUtxo.PkScript, ownScript) {
			continue
		}

		sigHash, err := txscript.CalcWitnessSigHash(
			in.WitnessUtxo.PkScript, sigHashes, sigHashType, tx, i, in.WitnessUtxo.Value,
		)
		if err != nil {
			return satserr.Wrapf(satserr.KindPsbtBuild, err, "failed to calculate sighash for input %d", i)
		}
		sig, err := signer.Sign(sigHash)
		if err != nil {
			return satserr.Wrapf(satserr.KindPsbtBuild, err, "failed to sign input %d", i)
		}
		sig = append(sig, byte(sigHashType))

		outcome, err := updater.Sign(i, sig, pubKeyBytes, nil, nil)
		if err != nil {
			return satserr.Wrapf(satserr.KindPsbtBuild, err, "failed to add signature to input %d", i)
		}
		if outcome != psbt.SignSuccesful {
			return satserr.Newf(satserr.KindPsbtBuild, "input %d was not signed (outcome %d)", i, outcome)
		}
		signed++
	}

	if signed == 0 {
		return satserr.New(satserr.KindPsbtBuild, "no inputs were signed with the provided key")
	}
	t.Packet = packet
	return nil
}

func clonePacket(p *psbt.Packet) (*psbt.Packet, error) {
	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		return nil, satserr.Wrap(satserr.KindPsbtBuild, err, "failed to serialize psbt")
	}
	clone, err := psbt.NewFromRawBytes(&buf, false)
	if err != nil {
		return nil, satserr.Wrap(satserr.KindPsbtBuild, err, "failed to copy psbt")
	}
	return clone, nil
}

// SignWithKey signs t with a raw private key.
func SignWithKey(t *Template, key *btcec.PrivateKey) error {
	if key == nil {
		return satserr.New(satserr.KindPsbtBuild, "missing private key")
	}
	return Sign(t, NewKeySigner(key))
}

// SignWithWIF signs t with a WIF encoded private key, which must belong to
// the template's network.
func SignWithWIF(t *Template, wif string) error {
	if t == nil || t.Packet == nil {
		return satserr.New(satserr.KindPsbtBuild, "missing template")
	}
	decoded, err := btcutil.DecodeWIF(wif)
	if err != nil {
		return satserr.Wrap(satserr.KindPsbtBuild, err, "invalid WIF private key")
	}
	if !decoded.IsForNet(t.params) {
		return satserr.Newf(satserr.KindNetwork, "WIF private key is not for %s", t.params.Name)
	}
	return SignWithKey(t, decoded.PrivKey)
}

// Finalize builds the final witnesses of every signed input and extracts the
// serialized transaction.
func Finalize(t *Template) (*FinalTx, error) {
	if t == nil || t.Packet == nil {
		return nil, satserr.New(satserr.KindPsbtBuild, "missing template")
	}
	if err := psbt.MaybeFinalizeAll(t.Packet); err != nil {
		return nil, satserr.Wrap(satserr.KindPsbtBuild, err, "failed to finalize psbt")
	}
	tx, err := psbt.Extract(t.Packet)
	if err != nil {
		return nil, satserr.Wrap(satserr.KindPsbtBuild, err, "failed to extract transaction")
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, satserr.Wrap(satserr.KindPsbtBuild, err, "failed to serialize transaction")
	}
	return &FinalTx{
		Hex:  hex.EncodeToString(buf.Bytes()),
		TxID: tx.TxHash().String(),
	}, nil
}

// DecodeTx parses a serialized transaction in hex.
func DecodeTx(txHex string) (*wire.MsgTx, error) {
	raw, err := hex.DecodeString(txHex)
	if err != nil {
		return nil, satserr.Wrap(satserr.KindPsbtBuild, err, "invalid transaction hex")
	}
	tx := wire.NewMsgTx(txVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, satserr.Wrap(satserr.KindPsbtBuild, err, "failed to deserialize transaction")
	}
	return tx, nil
}

func prevOutFetcher(packet *psbt.Packet) *txscript.MultiPrevOutFetcher {
	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, txIn := range packet.UnsignedTx.TxIn {
		if utxo := packet.Inputs[i].WitnessUtxo; utxo != nil {
			fetcher.AddPrevOut(txIn.PreviousOutPoint, utxo)
		}
	}
	return fetcher
}
