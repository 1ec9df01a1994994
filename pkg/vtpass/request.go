package vtpass

// PayRequest is the body of POST /pay. Airtime uses Amount and Phone; data and
// cable use BillersCode and VariationCode.
type PayRequest struct {
	RequestID        string `json:"request_id"`
	ServiceID        string `json:"serviceID"`
	BillersCode      string `json:"billersCode,omitempty"`
	VariationCode    string `json:"variation_code,omitempty"`
	Amount           int    `json:"amount,omitempty"`
	Phone            string `json:"phone"`
	SubscriptionType string `json:"subscription_type,omitempty"`
	Quantity         int    `json:"quantity,omitempty"`
}

// RequeryRequest is the body of POST /requery.
type RequeryRequest struct {
	RequestID string `json:"request_id"`
}
