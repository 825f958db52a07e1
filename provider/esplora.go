package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"go.uber.org/ratelimit"

	"github.com/chinmay1088/sats/chains/bitcoin"
	"github.com/chinmay1088/sats/satserr"
)

// DefaultTimeout bounds every Esplora request.
const DefaultTimeout = 4 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// Esplora talks to an Esplora compatible REST API such as blockstream.info
// or mempool.space.
type Esplora struct {
	baseURL    string
	name       string
	timeout    time.Duration
	httpClient *http.Client
	limiter    ratelimit.Limiter
}

// Option configures an Esplora adapter.
type Option func(*Esplora)

// WithTimeout sets the per request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Esplora) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the default http client.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Esplora) {
		if client != nil {
			e.httpClient = client
		}
	}
}

// WithRateLimit paces requests to at most rps per second. Zero or less
// disables pacing.
func WithRateLimit(rps int) Option {
	return func(e *Esplora) {
		if rps > 0 {
			e.limiter = ratelimit.New(rps)
		} else {
			e.limiter = ratelimit.NewUnlimited()
		}
	}
}

// WithName sets the name used in logs and errors.
func WithName(name string) Option {
	return func(e *Esplora) {
		if name != "" {
			e.name = name
		}
	}
}

// NewEsplora returns an adapter for the API rooted at baseURL, for example
// https://blockstream.info/api.
func NewEsplora(baseURL string, opts ...Option) *Esplora {
	e := &Esplora{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		limiter:    ratelimit.NewUnlimited(),
	}
	e.name = e.baseURL
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Esplora) String() string {
	return e.name
}

// BaseURL returns the API root.
func (e *Esplora) BaseURL() string {
	return e.baseURL
}

type esploraUtxo struct {
	TxID  string      `json:"txid"`
	Vout  uint32      `json:"vout"`
	Value json.Number `json:"value"`
}

type esploraStats struct {
	FundedTxoSum json.Number `json:"funded_txo_sum"`
	SpentTxoSum  json.Number `json:"spent_txo_sum"`
}

type esploraAddress struct {
	ChainStats   *esploraStats `json:"chain_stats"`
	MempoolStats *esploraStats `json:"mempool_stats"`
}

// GetUtxos returns the unspent outputs of address.
func (e *Esplora) GetUtxos(ctx context.Context, address string) ([]bitcoin.UTXO, error) {
	return withTimeout(ctx, e.timeout, func(ctx context.Context) ([]bitcoin.UTXO, error) {
		var raw []esploraUtxo
		if err := e.getJSON(ctx, fmt.Sprintf("/address/%s/utxo", url.PathEscape(address)), &raw); err != nil {
			return nil, err
		}

		utxos := make([]bitcoin.UTXO, 0, len(raw))
		for _, u := range raw {
			value, err := parseSats(u.Value)
			if err != nil {
				return nil, satserr.Wrapf(satserr.KindProvider, err, "%s: utxo %s:%d", e.name, u.TxID, u.Vout)
			}
			utxos = append(utxos, bitcoin.UTXO{TxID: u.TxID, Vout: u.Vout, Value: value})
		}
		return utxos, nil
	})
}

// GetBalance returns the confirmed funded and spent totals of address. When
// the explorer omits confirmed stats the mempool stats are used instead.
func (e *Esplora) GetBalance(ctx context.Context, address string) (bitcoin.Balance, error) {
	return withTimeout(ctx, e.timeout, func(ctx context.Context) (bitcoin.Balance, error) {
		var raw esploraAddress
		if err := e.getJSON(ctx, fmt.Sprintf("/address/%s", url.PathEscape(address)), &raw); err != nil {
			return bitcoin.Balance{}, err
		}

		stats := raw.ChainStats
		if stats == nil {
			stats = raw.MempoolStats
		}
		if stats == nil {
			return bitcoin.Balance{}, nil
		}

		funded, err := parseSats(stats.FundedTxoSum)
		if err != nil {
			return bitcoin.Balance{}, satserr.Wrapf(satserr.KindProvider, err, "%s: funded_txo_sum", e.name)
		}
		spent, err := parseSats(stats.SpentTxoSum)
		if err != nil {
			return bitcoin.Balance{}, satserr.Wrapf(satserr.KindProvider, err, "%s: spent_txo_sum", e.name)
		}
		return bitcoin.Balance{Funded: funded, Spent: spent}, nil
	})
}

// Broadcast posts a raw transaction and returns the txid reported by the
// explorer. A reply that is not a txid counts as a failed broadcast.
func (e *Esplora) Broadcast(ctx context.Context, rawHex string) (*BroadcastResult, error) {
	return withTimeout(ctx, e.timeout, func(ctx context.Context) (*BroadcastResult, error) {
		status, body, err := e.do(ctx, satserr.KindBroadcast, http.MethodPost, "/tx", strings.NewReader(rawHex), "text/plain")
		if err != nil {
			return nil, err
		}
		reply := strings.TrimSpace(string(body))
		if status < 200 || status > 299 {
			return nil, satserr.Newf(satserr.KindBroadcast,
				"%s: broadcast failed with status %d: %s", e.name, status, reply)
		}
		if len(reply) != chainhash.MaxHashStringSize {
			return nil, satserr.Newf(satserr.KindBroadcast, "%s: broadcast returned invalid txid %q", e.name, reply)
		}
		if _, err := chainhash.NewHashFromStr(reply); err != nil {
			return nil, satserr.Wrapf(satserr.KindBroadcast, err, "%s: broadcast returned invalid txid %q", e.name, reply)
		}
		return &BroadcastResult{TxID: reply}, nil
	})
}

func (e *Esplora) getJSON(ctx context.Context, path string, out interface{}) error {
	status, body, err := e.do(ctx, satserr.KindProvider, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return satserr.Newf(satserr.KindProvider,
			"%s: GET %s failed with status %d: %s", e.name, path, status, strings.TrimSpace(string(body)))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return satserr.Wrapf(satserr.KindProvider, err, "%s: failed to parse response of GET %s", e.name, path)
	}
	return nil
}

// do performs one request. Failures other than timeouts are reported with
// kind.
func (e *Esplora) do(
	ctx context.Context, kind satserr.Kind, method, path string, body io.Reader, contentType string,
) (int, []byte, error) {
	e.limiter.Take()

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, body)
	if err != nil {
		return 0, nil, satserr.Wrapf(kind, err, "%s: failed to create request", e.name)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return 0, nil, transportError(kind, e.name, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, transportError(kind, e.name, method, path, err)
	}
	return resp.StatusCode, data, nil
}

func transportError(kind satserr.Kind, name, method, path string, err error) error {
	cause := errors.Wrapf(err, "%s %s", method, path)
	if errors.Is(err, context.DeadlineExceeded) {
		return satserr.Wrap(satserr.KindTimeout, cause, name)
	}
	return satserr.Wrap(kind, cause, name)
}

// parseSats converts an explorer amount to satoshis. Explorers report
// integer satoshis; anything else is a malformed response.
func parseSats(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	v, err := n.Int64()
	if err != nil {
		return 0, errors.Errorf("amount %q is not an integer number of satoshis", n)
	}
	if v < 0 {
		return 0, errors.Errorf("amount %q is negative", n)
	}
	return v, nil
}
