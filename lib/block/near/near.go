// Package near implements the contract interface for NEAR networks over the JSON-RPC API.
package near

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/valyala/fastjson"

	"github.com/jelilat/hellonear/lib/block/types"
	"github.com/jelilat/hellonear/lib/log"
)

// DefaultGas is the gas attached to change calls, 30 Tgas.
const DefaultGas uint64 = 30_000_000_000_000

// Near implements a connection to a NEAR node for one contract.
type Near struct {
	node     string
	contract string
	c        *http.Client
	id       uint64
}

// Init returns a client for contract on the node at url. timeout bounds every http request; zero means no timeout.
func Init(node, contract string, timeout time.Duration) (*Near, error) {
	if contract == "" {
		return nil, types.ErrEmptyContract
	}

	return &Near{node: node, contract: contract, c: &http.Client{Timeout: timeout}}, nil
}

// ContractID returns the account id of the contract.
func (n *Near) ContractID() string {
	return n.contract
}

// Close releases idle connections to the node.
func (n *Near) Close() {
	n.c.CloseIdleConnections()
}

type request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// call sends a JSON-RPC request and returns the "result" member of the response. The returned value belongs to a
// parser private to the call.
func (n *Near) call(ctx context.Context, method string, params interface{}) (*fastjson.Value, error) {
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      strconv.FormatUint(atomic.AddUint64(&n.id, 1), 10),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.node, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := n.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("near rpc %s: %w", method, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("near rpc %s: %w", method, err)
	}

	var p fastjson.Parser

	v, err := p.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("near rpc %s, http status %d: %w", method, res.StatusCode, types.ErrBadResult)
	}

	if e := v.Get("error"); e != nil {
		return nil, decodeError(e)
	}

	r := v.Get("result")
	if r == nil {
		return nil, types.ErrNoResult
	}

	return r, nil
}

// decodeError converts the JSON-RPC error object into an RPCError.
func decodeError(e *fastjson.Value) *types.RPCError {
	re := &types.RPCError{
		Name:    string(e.GetStringBytes("name")),
		Cause:   string(e.GetStringBytes("cause", "name")),
		Message: string(e.GetStringBytes("message")),
	}

	if d := e.Get("data"); d != nil {
		if d.Type() == fastjson.TypeString {
			re.Message = string(d.GetStringBytes())
		} else {
			re.Message = d.String()
		}
	}

	if re.Name == "" {
		re.Name = "RPC_ERROR"
	}

	return re
}

type query struct {
	RequestType string `json:"request_type"`
	Finality    string `json:"finality"`
	AccountID   string `json:"account_id"`
	MethodName  string `json:"method_name,omitempty"`
	ArgsBase64  string `json:"args_base64,omitempty"`
	PublicKey   string `json:"public_key,omitempty"`
}

// View calls a view method of the contract with args marshalled to JSON and unmarshals its JSON return value into
// out.
func (n *Near) View(ctx context.Context, method string, args, out interface{}) error {
	a, err := json.Marshal(args)
	if err != nil {
		return err
	}

	r, err := n.call(ctx, "query", query{
		RequestType: "call_function",
		Finality:    "final",
		AccountID:   n.contract,
		MethodName:  method,
		ArgsBase64:  base64.StdEncoding.EncodeToString(a),
	})
	if err != nil {
		return err
	}
	// older nodes report contract errors inside the result
	if msg := r.GetStringBytes("error"); msg != nil {
		return &types.RPCError{Name: "HANDLER_ERROR", Cause: "CONTRACT_EXECUTION_ERROR", Message: string(msg)}
	}

	res := r.GetArray("result")
	if res == nil {
		return types.ErrBadResult
	}

	buf := make([]byte, len(res))
	for i, b := range res {
		buf[i] = byte(b.GetUint())
	}

	if err = json.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("%s returned %q: %w", method, buf, types.ErrBadResult)
	}

	return nil
}

// GetName returns the name saved in the contract for the account in q, "" if there is none.
func (n *Near) GetName(ctx context.Context, q types.NameQuery) (string, error) {
	var name string

	err := n.View(ctx, types.MethodGetName, q, &name)

	return name, err
}

// accessKey returns the current nonce of the signer key and a recent block hash.
func (n *Near) accessKey(ctx context.Context, s types.Signer) (nonce uint64, blockHash [32]byte, err error) {
	r, err := n.call(ctx, "query", query{
		RequestType: "view_access_key",
		Finality:    "final",
		AccountID:   s.AccountID(),
		PublicKey:   EncodePublicKey(s.PublicKey()),
	})
	if err != nil {
		if re, ok := err.(*types.RPCError); ok && re.Cause == "UNKNOWN_ACCESS_KEY" {
			err = fmt.Errorf("%w: %s", types.ErrNoAccessKey, re.Message)
		}

		return
	}

	if msg := r.GetStringBytes("error"); msg != nil {
		err = fmt.Errorf("%w: %s", types.ErrNoAccessKey, msg)

		return
	}

	nonce = r.GetUint64("nonce")

	h := base58.Decode(string(r.GetStringBytes("block_hash")))
	if len(h) != len(blockHash) {
		err = types.ErrBadBlockHash

		return
	}

	copy(blockHash[:], h)

	return
}

// Call signs and sends a transaction calling a change method of the contract with args marshalled to JSON, waiting
// until the transaction has been executed.
func (n *Near) Call(ctx context.Context, s types.Signer, method string, args interface{}) (types.Outcome, error) {
	var o types.Outcome

	a, err := json.Marshal(args)
	if err != nil {
		return o, err
	}

	nonce, blockHash, err := n.accessKey(ctx, s)
	if err != nil {
		return o, err
	}

	tx := Transaction{
		SignerID:   s.AccountID(),
		PublicKey:  NewPublicKey(s.PublicKey()),
		Nonce:      nonce + 1,
		ReceiverID: n.contract,
		BlockHash:  blockHash,
		Actions:    []Action{NewFunctionCall(method, a, DefaultGas)},
	}

	stx, hash, err := tx.Sign(s.Sign)
	if err != nil {
		return o, err
	}

	raw, err := stx.Serialize()
	if err != nil {
		return o, err
	}

	o.Hash = base58.Encode(hash[:])
	o.SignerID = tx.SignerID
	o.ReceiverID = tx.ReceiverID

	l := log.Contract()
	l.Debug().Str("tx", o.Hash).Str("signer", o.SignerID).Str("method", method).Msg("Broadcasting transaction")

	r, err := n.call(ctx, "broadcast_tx_commit", []string{base64.StdEncoding.EncodeToString(raw)})
	if err != nil {
		return o, err
	}

	if f := r.Get("status", "Failure"); f != nil {
		re := &types.RPCError{Name: "Failure", Message: f.String()}
		if obj, errObj := f.Object(); errObj == nil {
			obj.Visit(func(k []byte, _ *fastjson.Value) {
				if re.Cause == "" {
					re.Cause = string(k)
				}
			})
		}

		return o, fmt.Errorf("%w: %w", types.ErrTxFailed, re)
	}

	if r.Get("status", "SuccessValue") == nil && r.Get("status", "SuccessReceiptId") == nil {
		return o, fmt.Errorf("transaction %s status %s: %w", o.Hash, r.Get("status"), types.ErrBadResult)
	}

	o.GasBurnt = r.GetUint64("transaction_outcome", "outcome", "gas_burnt")
	for _, lg := range r.GetArray("transaction_outcome", "outcome", "logs") {
		o.Logs = append(o.Logs, string(lg.GetStringBytes()))
	}

	for _, ro := range r.GetArray("receipts_outcome") {
		o.GasBurnt += ro.GetUint64("outcome", "gas_burnt")
		for _, lg := range ro.GetArray("outcome", "logs") {
			o.Logs = append(o.Logs, string(lg.GetStringBytes()))
		}
	}

	return o, nil
}

// SetName saves the name in p for the account of the signer.
func (n *Near) SetName(ctx context.Context, s types.Signer, p types.SetNamePayload) (types.Outcome, error) {
	return n.Call(ctx, s, types.MethodSetName, p)
}
