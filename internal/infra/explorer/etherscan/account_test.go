package etherscan

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/bridgewatch/internal/bridgescan"
	transport "github.com/gabapcia/bridgewatch/internal/pkg/transport/http"
)

// newTestClient spins up a stub API server and a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	httpClient := transport.NewClient(transport.WithRetryMax(0))
	return NewClient(httpClient, srv.URL, "test-key", 1)
}

func TestBlockNumberByTime(t *testing.T) {
	t.Run("resolves the closest block before the timestamp", func(t *testing.T) {
		ts := time.Unix(1_748_779_200, 0)

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "block", q.Get("module"))
			assert.Equal(t, "getblocknobytime", q.Get("action"))
			assert.Equal(t, "1748779200", q.Get("timestamp"))
			assert.Equal(t, "before", q.Get("closest"))
			assert.Equal(t, "1", q.Get("chainid"))
			assert.Equal(t, "test-key", q.Get("apikey"))

			w.Write([]byte(`{"status":"1","message":"OK","result":"22000000"}`))
		})

		block, err := c.BlockNumberByTime(t.Context(), ts)

		require.NoError(t, err)
		assert.Equal(t, int64(22_000_000), block)
	})

	t.Run("non-ok status is a hard error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"0","message":"NOTOK","result":"Error! Invalid timestamp"}`))
		})

		_, err := c.BlockNumberByTime(t.Context(), time.Unix(0, 0))

		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})
}

func TestTokenTransfers(t *testing.T) {
	blockRange := bridgescan.BlockRange{ChainID: 1, StartBlock: 100, EndBlock: 200}

	t.Run("maps result rows", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "tokentx", q.Get("action"))
			assert.Equal(t, "0xbridge", q.Get("address"))
			assert.Equal(t, "100", q.Get("startblock"))
			assert.Equal(t, "200", q.Get("endblock"))

			w.Write([]byte(`{"status":"1","message":"OK","result":[
				{"blockNumber":"150","hash":"0xtx1","from":"0xalice","contractAddress":"0xusdc","to":"0xbridge","value":"1500000","tokenSymbol":"USDC","tokenDecimal":"6"}
			]}`))
		})

		transfers, err := c.TokenTransfers(t.Context(), "0xbridge", blockRange)

		require.NoError(t, err)
		require.Len(t, transfers, 1)
		assert.Equal(t, bridgescan.TokenTransfer{
			Hash:            "0xtx1",
			From:            "0xalice",
			To:              "0xbridge",
			ContractAddress: "0xusdc",
			Symbol:          "USDC",
			Decimals:        6,
			RawAmount:       "1500000",
			BlockHeight:     150,
		}, transfers[0])
	})

	t.Run("no-results status yields an empty slice", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"0","message":"No transactions found","result":[]}`))
		})

		transfers, err := c.TokenTransfers(t.Context(), "0xbridge", blockRange)

		require.NoError(t, err)
		assert.Empty(t, transfers)
	})

	t.Run("invalid token decimal fails", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"1","message":"OK","result":[
				{"blockNumber":"150","hash":"0xtx1","tokenDecimal":"not-a-number","value":"1"}
			]}`))
		})

		_, err := c.TokenTransfers(t.Context(), "0xbridge", blockRange)

		assert.Error(t, err)
	})
}

func TestInternalTransactions(t *testing.T) {
	blockRange := bridgescan.BlockRange{ChainID: 1, StartBlock: 100, EndBlock: 200}

	t.Run("excludes zero-value entries", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "txlistinternal", r.URL.Query().Get("action"))

			w.Write([]byte(`{"status":"1","message":"OK","result":[
				{"blockNumber":"150","hash":"0xtx1","from":"0xalice","to":"0xbridge","value":"2000000000000000000"},
				{"blockNumber":"151","hash":"0xtx2","from":"0xbob","to":"0xbridge","value":"0"},
				{"blockNumber":"152","hash":"0xtx3","from":"0xcarol","to":"0xbridge","value":""}
			]}`))
		})

		txs, err := c.InternalTransactions(t.Context(), "0xbridge", blockRange)

		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "0xtx1", txs[0].Hash)
		assert.Equal(t, "2000000000000000000", txs[0].RawAmount)
	})

	t.Run("no-results status yields an empty slice", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"0","message":"No transactions found","result":[]}`))
		})

		txs, err := c.InternalTransactions(t.Context(), "0xbridge", blockRange)

		require.NoError(t, err)
		assert.Empty(t, txs)
	})
}

func TestTransactionInput(t *testing.T) {
	t.Run("decodes the hex payload", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "proxy", q.Get("module"))
			assert.Equal(t, "eth_getTransactionByHash", q.Get("action"))
			assert.Equal(t, "0xtx1", q.Get("txhash"))

			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"input":"0x9fe99b64"}}`))
		})

		payload, err := c.TransactionInput(t.Context(), "0xtx1")

		require.NoError(t, err)
		assert.Equal(t, []byte{0x9f, 0xe9, 0x9b, 0x64}, payload)
	})

	t.Run("empty input yields a nil payload", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"input":"0x"}}`))
		})

		payload, err := c.TransactionInput(t.Context(), "0xtx1")

		require.NoError(t, err)
		assert.Nil(t, payload)
	})

	t.Run("invalid hex fails", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"input":"0xzz"}}`))
		})

		_, err := c.TransactionInput(t.Context(), "0xtx1")

		assert.Error(t, err)
	})

	t.Run("server error surfaces as transport failure", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.TransactionInput(t.Context(), "0xtx1")

		assert.Error(t, err)
	})
}
