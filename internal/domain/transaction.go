package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Entity names a counterparty of a transaction (an exchange account, a wallet...).
// No referential integrity is enforced.
type Entity string

// UnmarshalJSON accepts either a plain string or the object form {"name": "..."}.
func (e *Entity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("decoding entity object: %w", err)
		}
		*e = Entity(obj.Name)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding entity: %w", err)
	}
	*e = Entity(s)
	return nil
}

// Transaction represents one movement of an asset settled in a currency.
// Values are passed by copy and never modified once built.
type Transaction struct {
	Source               Entity          `json:"source"`
	Destination          Entity          `json:"destination"`
	TransactionType      TransactionType `json:"transactionType"`
	Ticker               string          `json:"ticker"` // Market symbol used for quote lookup (e.g. "BTC-USD")
	Asset                string          `json:"asset"`  // Thing acquired or disposed (e.g. "bitcoin")
	AssetQuantity        float64         `json:"assetQuantity"`
	Currency             string          `json:"currency"` // Settlement unit
	CurrencyQuantity     float64         `json:"currencyQuantity"`
	CurrencyFees         string          `json:"currencyFees"` // Unit the fees were paid in, not reconciled with Currency
	CurrencyFeesQuantity float64         `json:"currencyFeesQuantity"`
	SentDate             time.Time       `json:"sentDate"`
	ReceivedDate         time.Time       `json:"receivedDate"`
}

// TotalCost is the currency outlay of the transaction, fees included.
func (t Transaction) TotalCost() float64 {
	return t.CurrencyQuantity + t.CurrencyFeesQuantity
}

// Transactions is an ordered sequence of transactions as supplied by a loader.
// The order carries no meaning for aggregation.
type Transactions []Transaction
