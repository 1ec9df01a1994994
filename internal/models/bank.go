package models

// Bank is a funding bank shown on the wallet flow.
type Bank struct {
	Key      string `yaml:"key" json:"key"`
	Name     string `yaml:"name" json:"name"`
	Code     string `yaml:"code" json:"code"`
	Color    string `yaml:"color" json:"color,omitempty"`
	USSDCode string `yaml:"ussd" json:"ussd,omitempty"`
}

// DepositAccount is the collection account customers pay into for bank deposits.
type DepositAccount struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Reference     string `json:"reference"`
}

// FundingInstructions tells the customer how to complete an offline wallet funding.
type FundingInstructions struct {
	Method  PaymentMethod   `json:"method"`
	Bank    *Bank           `json:"bank,omitempty"`
	USSD    string          `json:"ussd,omitempty"`
	Deposit *DepositAccount `json:"deposit,omitempty"`
}
