package starknet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/account"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/NethermindEth/starknet.go/utils"
)

const (
	defaultPollInterval  = 5 * time.Second
	defaultFeeMultiplier = 1.5
	defaultCairoVersion  = 2
)

// sdkAccount sends transactions through a starknet.go account backed by an
// in-memory keystore.
type sdkAccount struct {
	acct       *account.Account
	provider   *rpc.Provider
	poll       time.Duration
	multiplier float64
}

func newAccount(ctx context.Context, cfg Config) (*sdkAccount, error) {
	if cfg.PrivateKey == "" {
		return nil, errors.New("starknet: private key required")
	}
	address, err := parseAddress(cfg.AccountAddress)
	if err != nil {
		return nil, fmt.Errorf("starknet: account address: %w", err)
	}
	priv := utils.HexToBN(cfg.PrivateKey)
	if priv == nil || priv.Sign() == 0 {
		return nil, errors.New("starknet: private key is not a hex number")
	}

	provider, err := rpc.NewProvider(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("starknet: connect provider: %w", err)
	}

	// the keystore is looked up by public key; the account address serves
	// when none is configured
	keyID := cfg.PublicKey
	if keyID == "" {
		keyID = cfg.AccountAddress
	}
	ks := account.NewMemKeystore()
	ks.Put(keyID, priv)

	cairo := cfg.CairoVersion
	if cairo <= 0 {
		cairo = defaultCairoVersion
	}
	acct, err := account.NewAccount(provider, address, keyID, ks, cairo)
	if err != nil {
		return nil, fmt.Errorf("starknet: account: %w", err)
	}
	if _, err := provider.ChainID(ctx); err != nil {
		return nil, fmt.Errorf("starknet: chain id: %w", err)
	}

	poll := cfg.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	multiplier := cfg.FeeMultiplier
	if multiplier <= 0 {
		multiplier = defaultFeeMultiplier
	}
	return &sdkAccount{acct: acct, provider: provider, poll: poll, multiplier: multiplier}, nil
}

func (a *sdkAccount) ChainID(ctx context.Context) (string, error) {
	return a.provider.ChainID(ctx)
}

func (a *sdkAccount) Invoke(ctx context.Context, call rpc.InvokeFunctionCall) (*felt.Felt, error) {
	resp, err := a.acct.BuildAndSendInvokeTxn(ctx, []rpc.InvokeFunctionCall{call}, a.multiplier)
	if err != nil {
		return nil, err
	}
	return resp.TransactionHash, nil
}

func (a *sdkAccount) WaitReceipt(ctx context.Context, txHash *felt.Felt) (receipt, error) {
	rcpt, err := a.acct.WaitForTransactionReceipt(ctx, txHash, a.poll)
	if err != nil {
		return receipt{}, err
	}
	return receipt{
		ExecutionStatus: string(rcpt.ExecutionStatus),
		FinalityStatus:  string(rcpt.FinalityStatus),
		RevertReason:    rcpt.RevertReason,
	}, nil
}
