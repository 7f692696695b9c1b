package starknet

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/NethermindEth/starknet.go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/label-minter/server/internal/core"
	logx "github.com/label-minter/server/pkg/logger"
)

func TestMain(m *testing.M) {
	logx.Init(logx.LoggerOpts{Environment: core.Testing, Output: os.Stderr})
	os.Exit(m.Run())
}

const (
	testRecipient = "0x032e21f8277033fd4ddbb2127f5ebe74c7cdb09e36e72bd0071ad9bf6039b7bd"
	testURI       = "ipfs://bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy"
)

type fakeAccount struct {
	mu       sync.Mutex
	chainID  string
	chainErr error
	calls    []rpc.InvokeFunctionCall
	hash     string
	sendErr  error
	receipt  receipt
	waitErr  error
	block    bool
	waited   []string
}

func (a *fakeAccount) ChainID(context.Context) (string, error) {
	return a.chainID, a.chainErr
}

func (a *fakeAccount) Invoke(_ context.Context, call rpc.InvokeFunctionCall) (*felt.Felt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, call)
	if a.sendErr != nil {
		return nil, a.sendErr
	}
	return utils.HexToFelt(a.hash)
}

func (a *fakeAccount) WaitReceipt(ctx context.Context, txHash *felt.Felt) (receipt, error) {
	a.mu.Lock()
	a.waited = append(a.waited, txHash.String())
	block := a.block
	a.mu.Unlock()
	if block {
		<-ctx.Done()
		return receipt{}, errors.New("rpc: internal error")
	}
	return a.receipt, a.waitErr
}

func newTestClient(t *testing.T, acct *fakeAccount) *Client {
	t.Helper()
	contract, err := parseAddress(DefaultContractAddress)
	require.NoError(t, err)
	return newClient(acct, contract)
}

func TestMintEntryPointSelector(t *testing.T) {
	assert.Equal(t, "0x3d50ff8d0185c4c17d57ca6873541c5dd0405a413bdcf78c0a9e29d6214c348",
		utils.GetSelectorFromNameFelt(MintEntryPoint).String())
}

func TestMintCall(t *testing.T) {
	c := newTestClient(t, &fakeAccount{})

	call, err := c.MintCall(testRecipient, testURI)
	require.NoError(t, err)

	assert.Equal(t, MintEntryPoint, call.FunctionName)
	assert.Equal(t, "0x62217de4d51800c4c627d98bf820d9b6d16a1c4d8cd5f0f91645bf8f22bab5e", call.ContractAddress.String())

	wantURI, err := utils.StringToByteArrFelt(testURI)
	require.NoError(t, err)
	require.Len(t, call.CallData, 1+len(wantURI))
	assert.Equal(t, "0x32e21f8277033fd4ddbb2127f5ebe74c7cdb09e36e72bd0071ad9bf6039b7bd", call.CallData[0].String())
	for i, f := range wantURI {
		assert.True(t, f.Equal(call.CallData[i+1]), "uri felt %d", i)
	}
	// 66 bytes: two full 31-byte words and a 4-byte pending word
	assert.Equal(t, "0x2", call.CallData[1].String())
	assert.Equal(t, "0x4", call.CallData[len(call.CallData)-1].String())
}

func TestMintCall_RejectsBadRecipient(t *testing.T) {
	c := newTestClient(t, &fakeAccount{})
	for _, bad := range []string{"", "alice@example.com", "032e21f8", "0x", "0xzz"} {
		_, err := c.MintCall(bad, testURI)
		assert.Error(t, err, bad)
	}
}

func TestSubmitMint(t *testing.T) {
	acct := &fakeAccount{hash: "0x0abc"}
	c := newTestClient(t, acct)

	txHash, err := c.SubmitMint(context.Background(), testRecipient, testURI)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", txHash)
	require.Len(t, acct.calls, 1)
	assert.Equal(t, MintEntryPoint, acct.calls[0].FunctionName)
	assert.Empty(t, acct.waited, "submitting does not wait")
}

func TestSubmitMint_SendError(t *testing.T) {
	boom := errors.New("insufficient fee")
	c := newTestClient(t, &fakeAccount{sendErr: boom})

	_, err := c.SubmitMint(context.Background(), testRecipient, testURI)
	assert.ErrorIs(t, err, boom)
}

func TestSubmitMint_InvalidRecipientSendsNothing(t *testing.T) {
	acct := &fakeAccount{hash: "0x1"}
	c := newTestClient(t, acct)

	_, err := c.SubmitMint(context.Background(), "not-an-address", testURI)
	require.Error(t, err)
	assert.Empty(t, acct.calls)
}

func TestWaitForTransaction(t *testing.T) {
	acct := &fakeAccount{receipt: receipt{ExecutionStatus: "SUCCEEDED", FinalityStatus: "ACCEPTED_ON_L2"}}
	c := newTestClient(t, acct)

	require.NoError(t, c.WaitForTransaction(context.Background(), "0xabc"))
	assert.Equal(t, []string{"0xabc"}, acct.waited)
}

func TestWaitForTransaction_Reverted(t *testing.T) {
	acct := &fakeAccount{receipt: receipt{ExecutionStatus: "REVERTED", RevertReason: "ERC721: token already minted"}}
	c := newTestClient(t, acct)

	err := c.WaitForTransaction(context.Background(), "0xabc")
	var rev *RevertedError
	require.ErrorAs(t, err, &rev)
	assert.True(t, rev.Reverted())
	assert.Equal(t, "0xabc", rev.TxHash)
	assert.Contains(t, err.Error(), "token already minted")
}

func TestWaitForTransaction_ContextDeadline(t *testing.T) {
	c := newTestClient(t, &fakeAccount{block: true})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.WaitForTransaction(ctx, "0xabc")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var rev *RevertedError
	assert.False(t, errors.As(err, &rev), "an unknown outcome is not a revert")
}

func TestWaitForTransaction_NodeError(t *testing.T) {
	boom := errors.New("node unavailable")
	c := newTestClient(t, &fakeAccount{waitErr: boom})

	assert.ErrorIs(t, c.WaitForTransaction(context.Background(), "0xabc"), boom)
	assert.Error(t, c.WaitForTransaction(context.Background(), "abc"))
}

func TestExplorerURL(t *testing.T) {
	tests := []struct {
		chainID string
		want    string
	}{
		{ChainIDSepolia, ExplorerSepolia},
		{"0x534e5f5345504f4c4941", ExplorerSepolia},
		{ChainIDMainnet, ExplorerMainnet},
		{"0x534e5f4d41494e", ExplorerMainnet},
	}
	for _, tt := range tests {
		t.Run(tt.chainID, func(t *testing.T) {
			c := newTestClient(t, &fakeAccount{chainID: tt.chainID})
			got, err := c.ExplorerURL(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	c := newTestClient(t, &fakeAccount{chainErr: errors.New("down")})
	_, err := c.ExplorerURL(context.Background())
	assert.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Config{AccountAddress: "0x1", PrivateKey: "0x1"})
	assert.ErrorContains(t, err, "rpc url required")

	_, err = New(ctx, Config{RPCURL: "http://localhost:1", AccountAddress: "0x1"})
	assert.ErrorContains(t, err, "private key required")

	_, err = New(ctx, Config{RPCURL: "http://localhost:1", AccountAddress: "nope", PrivateKey: "0x1"})
	assert.ErrorContains(t, err, "account address")

	_, err = New(ctx, Config{RPCURL: "http://localhost:1", AccountAddress: "0x1", PrivateKey: "0x1", ContractAddress: "bad"})
	assert.ErrorContains(t, err, "contract address")

	_, err = NewExplorer("")
	assert.Error(t, err)
}
