package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		in      string
		want    TransactionType
		wantErr bool
	}{
		{in: "buy", want: Buy},
		{in: "SELL", want: Sell},
		{in: " Transfer ", want: Transfer},
		{in: "deposit", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTransactionType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransaction_JSON(t *testing.T) {
	const raw = `{
		"source": {"name": "exchange-spot-trading"},
		"destination": "my-exchange-wallet",
		"transactionType": "buy",
		"ticker": "BTC-USD",
		"asset": "bitcoin",
		"assetQuantity": 0.4,
		"currency": "euros",
		"currencyQuantity": 100.0,
		"currencyFees": "euros",
		"currencyFeesQuantity": 2.0,
		"sentDate": "2021-03-14T10:00:00Z",
		"receivedDate": "2021-03-14T10:05:00Z"
	}`

	var tx Transaction
	require.NoError(t, json.Unmarshal([]byte(raw), &tx))

	assert.Equal(t, Entity("exchange-spot-trading"), tx.Source)
	assert.Equal(t, Entity("my-exchange-wallet"), tx.Destination)
	assert.Equal(t, Buy, tx.TransactionType)
	assert.Equal(t, 102.0, tx.TotalCost())
	assert.Equal(t, time.Date(2021, 3, 14, 10, 5, 0, 0, time.UTC), tx.ReceivedDate)

	out, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"transactionType":"buy"`)
	assert.Contains(t, string(out), `"source":"exchange-spot-trading"`)

	var back Transaction
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, tx, back)
}

func TestTransaction_JSONRejectsUnknownType(t *testing.T) {
	var tx Transaction
	err := json.Unmarshal([]byte(`{"transactionType": "airdrop"}`), &tx)
	assert.Error(t, err)
}

func TestTransaction_Validate(t *testing.T) {
	valid := Transaction{
		TransactionType: Sell,
		Ticker:          "ETH-USD",
		Asset:           "ethereum",
		AssetQuantity:   1,
		Currency:        "USD",
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Asset = ""
	bad.AssetQuantity = -1
	bad.TransactionType = "GIFT"
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asset is empty")
	assert.Contains(t, err.Error(), "assetQuantity -1 is negative")
	assert.Contains(t, err.Error(), `unknown transactionType "GIFT"`)

	err = Transactions{valid, bad, valid}.ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction 1:")
	assert.NotContains(t, err.Error(), "transaction 0:")
}

func TestTransaction_Normalize(t *testing.T) {
	tx := Transaction{Source: " a ", Asset: " bitcoin\t", Ticker: "BTC-USD ", Currency: " EUR"}

	n := tx.Normalize()

	assert.Equal(t, Entity("a"), n.Source)
	assert.Equal(t, "bitcoin", n.Asset)
	assert.Equal(t, "BTC-USD", n.Ticker)
	assert.Equal(t, "EUR", n.Currency)
	assert.Equal(t, " bitcoin\t", tx.Asset, "receiver is a copy")
}
