package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChains(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/chains", r.URL.Path)
		w.Write([]byte(`{"chains":[{"id":1,"name":"ethereum","displayName":"Ethereum"},{"id":792703809,"name":"solana","displayName":"Solana"}]}`))
	}))
	defer server.Close()

	client := New(server.URL)
	chains, err := client.Chains(context.Background())
	require.NoError(t, err)
	require.Len(t, chains, 2)
	assert.Equal(t, int64(1), chains[0].ID)
	assert.Equal(t, "Ethereum", chains[0].DisplayName)
	assert.Contains(t, chains[1].Icon, "rsz_solana")
}

func TestCurrencies(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`[{"address":"0x0000000000000000000000000000000000000000","symbol":"ETH","name":"Ether","decimals":18,"chainId":1,"metadata":{"logoURI":"https://example.com/eth.png","verified":true}}]`))
	}))
	defer server.Close()

	client := New(server.URL)

	t.Run("list", func(t *testing.T) {
		currencies, err := client.Currencies(context.Background(), 1, "")
		require.NoError(t, err)
		require.Len(t, currencies, 1)
		assert.Equal(t, "ETH", currencies[0].Symbol)
		assert.Equal(t, 18, currencies[0].Decimals)
		assert.Equal(t, "https://example.com/eth.png", currencies[0].LogoURI)
		assert.True(t, currencies[0].Verified)

		assert.Equal(t, []interface{}{float64(1)}, gotBody["chainIds"])
		assert.Equal(t, float64(100), gotBody["limit"])
		assert.Equal(t, true, gotBody["verified"])
	})

	t.Run("search allows unverified", func(t *testing.T) {
		_, err := client.Currencies(context.Background(), 1, "PEPE")
		require.NoError(t, err)
		assert.Equal(t, "PEPE", gotBody["term"])
		assert.Equal(t, float64(20), gotBody["limit"])
		assert.Equal(t, false, gotBody["verified"])
	})
}

func TestQuoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"amount too low"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Quote(context.Background(), QuoteRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "amount too low", apiErr.Message)
}

func TestUserBalance(t *testing.T) {
	t.Run("returns userBalance from probe quote", func(t *testing.T) {
		var gotReq QuoteRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			w.Write([]byte(`{"steps":[],"details":{},"userBalance":"123456"}`))
		}))
		defer server.Close()

		client := New(server.URL)
		balance := client.UserBalance(context.Background(), 1, "0x0000000000000000000000000000000000000000", "0xuser")
		assert.Equal(t, "123456", balance)
		assert.Equal(t, int64(8453), gotReq.DestinationChainID)
		assert.Equal(t, "100000", gotReq.Amount)
	})

	t.Run("base origin probes against optimism", func(t *testing.T) {
		var gotReq QuoteRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			w.Write([]byte(`{"steps":[],"details":{},"userBalance":"1"}`))
		}))
		defer server.Close()

		client := New(server.URL)
		client.UserBalance(context.Background(), 8453, "0x0000000000000000000000000000000000000000", "0xuser")
		assert.Equal(t, int64(10), gotReq.DestinationChainID)
	})

	t.Run("failure degrades to zero", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := New(server.URL)
		assert.Equal(t, "0", client.UserBalance(context.Background(), 1, "0xtoken", "0xuser"))
	})
}

func TestStepItemPayload(t *testing.T) {
	t.Run("account shape", func(t *testing.T) {
		item := StepItem{Data: json.RawMessage(`{"chainId":1,"to":"0xdead","data":"0x","value":"1000"}`)}
		payload := item.Payload()
		require.Equal(t, KindAccount, payload.Kind)
		require.NotNil(t, payload.Account)
		assert.Nil(t, payload.Solana)
		assert.Equal(t, "0xdead", payload.Account.To)
		assert.Equal(t, "0x", payload.Account.Data)
		assert.Equal(t, "1000", payload.Account.Value)
	})

	t.Run("solana shape", func(t *testing.T) {
		item := StepItem{Data: json.RawMessage(`{"instructions":[{"programId":"11111111111111111111111111111111","keys":[{"pubkey":"abc","isSigner":true,"isWritable":true}],"data":"0102"}]}`)}
		payload := item.Payload()
		require.Equal(t, KindSolana, payload.Kind)
		require.NotNil(t, payload.Solana)
		assert.Nil(t, payload.Account)
		require.Len(t, payload.Solana.Instructions, 1)
		assert.True(t, payload.Solana.Instructions[0].Keys[0].IsSigner)
	})

	t.Run("unknown shape", func(t *testing.T) {
		item := StepItem{Data: json.RawMessage(`{"somethingElse":true}`)}
		assert.Equal(t, KindUnknown, item.Payload().Kind)
	})

	t.Run("malformed json", func(t *testing.T) {
		item := StepItem{Data: json.RawMessage(`{`)}
		assert.Equal(t, KindUnknown, item.Payload().Kind)
	})
}
