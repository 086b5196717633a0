package bridgescan

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type accountExplorerMock struct {
	mock.Mock
}

var _ AccountExplorer = (*accountExplorerMock)(nil)

func (m *accountExplorerMock) BlockNumberByTime(ctx context.Context, ts time.Time) (int64, error) {
	args := m.Called(ctx, ts)
	return args.Get(0).(int64), args.Error(1)
}

func (m *accountExplorerMock) TokenTransfers(ctx context.Context, address string, blockRange BlockRange) ([]TokenTransfer, error) {
	args := m.Called(ctx, address, blockRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TokenTransfer), args.Error(1)
}

func (m *accountExplorerMock) InternalTransactions(ctx context.Context, address string, blockRange BlockRange) ([]InternalTransaction, error) {
	args := m.Called(ctx, address, blockRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]InternalTransaction), args.Error(1)
}

func (m *accountExplorerMock) TransactionInput(ctx context.Context, hash string) ([]byte, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type utxoExplorerMock struct {
	mock.Mock
}

var _ UtxoExplorer = (*utxoExplorerMock)(nil)

func (m *utxoExplorerMock) Transaction(ctx context.Context, txid string) (UtxoTransaction, error) {
	args := m.Called(ctx, txid)
	return args.Get(0).(UtxoTransaction), args.Error(1)
}

func (m *utxoExplorerMock) AddressTransactions(ctx context.Context, address string) ([]UtxoTransaction, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]UtxoTransaction), args.Error(1)
}

func (m *utxoExplorerMock) TipHeight(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type priceSourceMock struct {
	mock.Mock
}

var _ PriceSource = (*priceSourceMock)(nil)

func (m *priceSourceMock) SpotPrice(ctx context.Context, symbol, contractAddress string) (float64, error) {
	args := m.Called(ctx, symbol, contractAddress)
	return args.Get(0).(float64), args.Error(1)
}

type reportSinkMock struct {
	mock.Mock
}

var _ ReportSink = (*reportSinkMock)(nil)

func (m *reportSinkMock) Emit(ctx context.Context, report Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
