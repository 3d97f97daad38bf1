package client

import (
	"context"
	"errors"
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"

	"github.com/betbot/umactf/pkg/ratelimit"
	"github.com/betbot/umactf/uma/types"
)

type countingLimiter struct {
	waits int
	err   error
}

func (l *countingLimiter) Wait(context.Context) error {
	l.waits++
	return l.err
}

func TestRateLimited_WaitsBeforeEveryRequest(t *testing.T) {
	ctx := context.Background()
	sim := newSimChain(t, types.V3)
	limiter := &countingLimiter{}
	c, err := NewClient(types.ChainPolygon, types.V3, sim, WithRateLimit(limiter))
	require.NoError(t, err)

	res := initQuestion(t, c)
	require.Equal(t, 1, limiter.waits)

	_, err = c.Ready(ctx, res.QuestionID)
	require.NoError(t, err)
	require.Greater(t, limiter.waits, 1)
}

func TestRateLimited_LimiterErrorStopsRequest(t *testing.T) {
	sim := newSimChain(t, types.V1)
	limiter := &countingLimiter{err: context.Canceled}
	c, err := NewClient(types.ChainPolygon, types.V1, sim, WithRateLimit(limiter))
	require.NoError(t, err)

	_, err = c.Initialize(context.Background(), yesNoParams())
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
	require.Empty(t, sim.submitted)
}

func TestRateLimited_NilPassthrough(t *testing.T) {
	sim := newSimChain(t, types.V2)
	require.Same(t, sim, RateLimited(sim, nil))
	require.Nil(t, RateLimited(nil, &countingLimiter{}))

	limited := RateLimited(sim, ratelimit.NewSlidingWindow(10, 0))
	require.Equal(t, sim.From(), limited.From())
}

// fakeBackend 只实现 RawTransact + WaitMined 走到的路径
type fakeBackend struct {
	status  uint64
	callOut []byte
	callErr error
	calls   []ethereum.CallMsg
	sent    []*ethtypes.Transaction
}

func (b *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	b.calls = append(b.calls, msg)
	return b.callOut, b.callErr
}

func (b *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*ethtypes.Header, error) {
	return &ethtypes.Header{Number: big.NewInt(1)}, nil
}

func (b *fakeBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return uint64(len(b.sent)), nil
}

func (b *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(30_000_000_000), nil
}

func (b *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (b *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 100_000, nil
}

func (b *fakeBackend) SendTransaction(_ context.Context, tx *ethtypes.Transaction) error {
	b.sent = append(b.sent, tx)
	return nil
}

func (b *fakeBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]ethtypes.Log, error) {
	return nil, nil
}

func (b *fakeBackend) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- ethtypes.Log) (ethereum.Subscription, error) {
	return nil, errors.New("fake: subscriptions not supported")
}

func (b *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	for _, tx := range b.sent {
		if tx.Hash() == hash {
			return &ethtypes.Receipt{Status: b.status, TxHash: hash, BlockNumber: big.NewInt(1)}, nil
		}
	}
	return nil, ethereum.NotFound
}

func newFakeTransactor(t *testing.T, b *fakeBackend) *EthTransactor {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	tx, err := NewEthTransactor(b, key, types.ChainPolygon)
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), tx.From())
	return tx
}

func TestEthTransactor_RevertedReceipt(t *testing.T) {
	b := &fakeBackend{status: ethtypes.ReceiptStatusFailed}
	tx := newFakeTransactor(t, b)
	to := common.HexToAddress("0x71392E133063CC0D16F40E1F9B60227404Bc03f7")

	receipt, err := tx.Transact(context.Background(), to, []byte{0x01, 0x02})
	require.ErrorIs(t, err, types.ErrTransactionReverted)
	require.NotNil(t, receipt)
	require.Len(t, b.sent, 1)
	require.Equal(t, b.sent[0].Hash(), receipt.TxHash)
}

func TestEthTransactor_SignsForDeclaredChain(t *testing.T) {
	b := &fakeBackend{status: ethtypes.ReceiptStatusSuccessful}
	tx := newFakeTransactor(t, b)
	to := common.HexToAddress("0x71392E133063CC0D16F40E1F9B60227404Bc03f7")
	data := []byte{0xde, 0xad, 0xbe, 0xef}

	receipt, err := tx.Transact(context.Background(), to, data)
	require.NoError(t, err)
	require.Equal(t, ethtypes.ReceiptStatusSuccessful, receipt.Status)

	require.Len(t, b.sent, 1)
	sent := b.sent[0]
	require.Equal(t, to, *sent.To())
	require.Equal(t, data, sent.Data())
	require.Equal(t, int64(types.ChainPolygon), sent.ChainId().Int64())

	sender, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(sent.ChainId()), sent)
	require.NoError(t, err)
	require.Equal(t, tx.From(), sender)
}

func TestEthTransactor_Call(t *testing.T) {
	b := &fakeBackend{callOut: []byte{0x2a}}
	tx := newFakeTransactor(t, b)
	to := common.HexToAddress("0x4D97DCd97eC945f40cF65F87097ACe5EA0476045")

	out, err := tx.Call(context.Background(), to, []byte{0x01})
	require.NoError(t, err)
	require.Equal(t, []byte{0x2a}, out)
	require.Len(t, b.calls, 1)
	require.Equal(t, tx.From(), b.calls[0].From)
	require.Equal(t, to, *b.calls[0].To)

	b.callErr = errors.New("execution reverted: NotInitialized")
	_, err = tx.Call(context.Background(), to, []byte{0x01})
	require.Error(t, err)
	require.Contains(t, err.Error(), "NotInitialized")
}

func TestNewEthTransactor_RequiresBackendAndKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	_, err = NewEthTransactor(nil, key, types.ChainPolygon)
	require.Error(t, err)
	_, err = NewEthTransactor(&fakeBackend{}, nil, types.ChainPolygon)
	require.Error(t, err)
}

// chainIDService 通过 eth_chainId 返回固定链 ID
type chainIDService struct {
	id *big.Int
}

func (s *chainIDService) ChainId() *hexutil.Big {
	return (*hexutil.Big)(s.id)
}

func newChainIDNode(t *testing.T, chainID int64) string {
	t.Helper()
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", &chainIDService{id: big.NewInt(chainID)}))
	httpSrv := httptest.NewServer(srv)
	t.Cleanup(func() {
		httpSrv.Close()
		srv.Stop()
	})
	return httpSrv.URL
}

func TestDial_ChainIDMismatch(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	url := newChainIDNode(t, 1)

	_, err = Dial(context.Background(), url, types.ChainPolygon, types.V3, key)
	require.ErrorIs(t, err, types.ErrInvalidChain)
}

func TestDial_MatchingChain(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	url := newChainIDNode(t, int64(types.ChainPolygon))

	c, err := Dial(context.Background(), url, types.ChainPolygon, types.V2, key, WithRateLimit(&countingLimiter{}))
	require.NoError(t, err)
	defer c.Close()
	require.Equal(t, types.ChainPolygon, c.ChainID())
	require.Equal(t, types.V2, c.Version())
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), c.Signer())
}

func TestDial_RejectsUnknownChainBeforeConnecting(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	_, err = Dial(context.Background(), "http://127.0.0.1:1", types.Chain(1), types.V3, key)
	require.ErrorIs(t, err, types.ErrInvalidChain)
}
