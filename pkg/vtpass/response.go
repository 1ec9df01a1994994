package vtpass

import "encoding/json"

// PayResponse is returned by /pay and /requery.
type PayResponse struct {
	Code                string          `json:"code"`
	ResponseDescription string          `json:"response_description"`
	RequestID           string          `json:"requestId"`
	Amount              json.RawMessage `json:"amount,omitempty"`
	PurchasedCode       string          `json:"purchased_code,omitempty"`
	Content             Content         `json:"content"`
}

// Content wraps the transaction detail.
type Content struct {
	Transactions Transaction `json:"transactions"`
}

// Transaction is the provider-side record of a payment.
type Transaction struct {
	Status        string   `json:"status"`
	ProductName   string   `json:"product_name"`
	UniqueElement string   `json:"unique_element"`
	TransactionID string   `json:"transactionId"`
	TotalAmount   *float64 `json:"total_amount,omitempty"`
	Commission    *float64 `json:"commission,omitempty"`
}

// BalanceResponse is returned by /balance.
type BalanceResponse struct {
	Code     int `json:"code"`
	Contents struct {
		Balance float64 `json:"balance"`
	} `json:"contents"`
}

// Outcome classifies the reply.
func (r *PayResponse) Outcome() Outcome {
	return Classify(r.Code, r.Content.Transactions.Status)
}
