// Package starknet mints label tokens on a Starknet contract. Transactions
// are built, signed with the configured account key and sent through
// starknet.go; receipts are polled from the same node.
package starknet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/NethermindEth/starknet.go/utils"

	logx "github.com/label-minter/server/pkg/logger"
)

const (
	DefaultContractAddress = "0x062217de4d51800c4c627d98bf820d9b6d16a1c4d8cd5f0f91645bf8f22bab5e"

	ChainIDMainnet = "SN_MAIN"
	ChainIDSepolia = "SN_SEPOLIA"

	ExplorerMainnet = "https://starkscan.co/tx/"
	ExplorerSepolia = "https://sepolia.starkscan.co/tx/"

	MintEntryPoint = "mint_item"
)

type Config struct {
	RPCURL          string        `envconfig:"RPC_URL"`
	AccountAddress  string        `envconfig:"ADDRESS"`
	PrivateKey      string        `envconfig:"PRIVATE_KEY"`
	PublicKey       string        `envconfig:"PUBLIC_KEY"`
	ContractAddress string        `envconfig:"CONTRACT_ADDRESS" default:"0x062217de4d51800c4c627d98bf820d9b6d16a1c4d8cd5f0f91645bf8f22bab5e"`
	CairoVersion    int           `envconfig:"CAIRO_VERSION" default:"2"`
	FeeMultiplier   float64       `envconfig:"FEE_MULTIPLIER" default:"1.5"`
	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
}

// RevertedError is a transaction that was included but failed execution.
type RevertedError struct {
	TxHash string
	Reason string
}

func (e *RevertedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("starknet: transaction %s reverted", e.TxHash)
	}
	return fmt.Sprintf("starknet: transaction %s reverted: %s", e.TxHash, e.Reason)
}

// Reverted marks the error as a definitive execution failure.
func (e *RevertedError) Reverted() bool { return true }

// receipt holds the receipt fields needed to decide finality.
type receipt struct {
	ExecutionStatus string
	FinalityStatus  string
	RevertReason    string
}

// chainReader is the read side of a Starknet node.
type chainReader interface {
	ChainID(ctx context.Context) (string, error)
}

// invoker signs and sends invoke transactions from one account and waits
// for their receipts.
type invoker interface {
	chainReader
	Invoke(ctx context.Context, call rpc.InvokeFunctionCall) (*felt.Felt, error)
	WaitReceipt(ctx context.Context, txHash *felt.Felt) (receipt, error)
}

// Explorer resolves block explorer links for the connected chain.
type Explorer struct {
	chain chainReader
}

// NewExplorer connects to the node at rpcURL for chain lookups only; it
// needs no account.
func NewExplorer(rpcURL string) (*Explorer, error) {
	if rpcURL == "" {
		return nil, errors.New("starknet: rpc url required")
	}
	provider, err := rpc.NewProvider(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("starknet: connect provider: %w", err)
	}
	return &Explorer{chain: provider}, nil
}

// ExplorerURL returns the transaction URL prefix of the block explorer for
// the connected chain.
func (e *Explorer) ExplorerURL(ctx context.Context) (string, error) {
	id, err := e.chain.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("starknet: chain id: %w", err)
	}
	return explorerFor(id), nil
}

// explorerFor accepts the chain id as a short string or as its hex encoding.
func explorerFor(chainID string) string {
	id := chainID
	if strings.HasPrefix(id, "0x") {
		id = utils.HexToShortStr(id)
	}
	if id == ChainIDSepolia {
		return ExplorerSepolia
	}
	return ExplorerMainnet
}

// Client mints labels from one account.
type Client struct {
	*Explorer
	account  invoker
	contract *felt.Felt
}

// New builds the signing account from cfg. The node is asked for its chain
// id while the account is set up.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("starknet: rpc url required")
	}
	contract, err := parseAddress(contractOrDefault(cfg.ContractAddress))
	if err != nil {
		return nil, fmt.Errorf("starknet: contract address: %w", err)
	}
	acct, err := newAccount(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newClient(acct, contract), nil
}

func newClient(acct invoker, contract *felt.Felt) *Client {
	return &Client{Explorer: &Explorer{chain: acct}, account: acct, contract: contract}
}

func contractOrDefault(addr string) string {
	if addr == "" {
		return DefaultContractAddress
	}
	return addr
}

// parseAddress accepts a 0x-prefixed felt.
func parseAddress(s string) (*felt.Felt, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") || len(s) < 3 || len(s) > 66 {
		return nil, fmt.Errorf("%q is not a 0x-prefixed felt", s)
	}
	f, err := utils.HexToFelt(s)
	if err != nil {
		return nil, fmt.Errorf("%q is not a felt: %w", s, err)
	}
	return f, nil
}

// MintCall builds the mint_item(recipient, uri) invocation; uri is encoded
// as a Cairo ByteArray.
func (c *Client) MintCall(recipient, uri string) (rpc.InvokeFunctionCall, error) {
	to, err := parseAddress(recipient)
	if err != nil {
		return rpc.InvokeFunctionCall{}, fmt.Errorf("starknet: recipient: %w", err)
	}
	encoded, err := utils.StringToByteArrFelt(uri)
	if err != nil {
		return rpc.InvokeFunctionCall{}, fmt.Errorf("starknet: encode uri: %w", err)
	}
	return rpc.InvokeFunctionCall{
		ContractAddress: c.contract,
		FunctionName:    MintEntryPoint,
		CallData:        append([]*felt.Felt{to}, encoded...),
	}, nil
}

// SubmitMint signs and sends mint_item and returns the transaction hash
// without waiting for it.
func (c *Client) SubmitMint(ctx context.Context, recipient, uri string) (string, error) {
	call, err := c.MintCall(recipient, uri)
	if err != nil {
		return "", err
	}
	hash, err := c.account.Invoke(ctx, call)
	if err != nil {
		return "", fmt.Errorf("starknet: send mint: %w", err)
	}
	if hash == nil {
		return "", errors.New("starknet: node returned no transaction hash")
	}
	txHash := hash.String()
	logx.Info().Str("tx_hash", txHash).Str("recipient", recipient).Msg("mint transaction submitted")
	return txHash, nil
}

// WaitForTransaction blocks until txHash has a receipt. A reverted
// execution returns a *RevertedError; ctx ending returns its error.
func (c *Client) WaitForTransaction(ctx context.Context, txHash string) error {
	hash, err := parseAddress(txHash)
	if err != nil {
		return fmt.Errorf("starknet: transaction hash: %w", err)
	}
	rcpt, err := c.account.WaitReceipt(ctx, hash)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("starknet: wait for %s: %w", txHash, ctx.Err())
		}
		return fmt.Errorf("starknet: wait for %s: %w", txHash, err)
	}
	if rcpt.ExecutionStatus == string(rpc.TxnExecutionStatusREVERTED) {
		return &RevertedError{TxHash: txHash, Reason: rcpt.RevertReason}
	}
	logx.Debug().
		Str("tx_hash", txHash).
		Str("finality_status", rcpt.FinalityStatus).
		Msg("mint transaction confirmed")
	return nil
}
