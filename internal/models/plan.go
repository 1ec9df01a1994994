package models

// ServiceType enumerates the purchase flows offered to customers.
type ServiceType string

const (
	ServiceAirtime ServiceType = "airtime"
	ServiceData    ServiceType = "data"
	ServiceCable   ServiceType = "cable"
	ServiceWallet  ServiceType = "wallet"
)

// Plan represents one purchasable product unit in the catalog.
// ActualValue is set only for bonus plans, where the credited value exceeds the charged amount.
type Plan struct {
	ID          string   `yaml:"id" json:"id"`
	Label       string   `yaml:"label" json:"label"`
	Amount      int      `yaml:"amount" json:"amount"`
	ActualValue *int     `yaml:"actual_value" json:"actualValue,omitempty"`
	Bonus       string   `yaml:"bonus" json:"bonus,omitempty"`
	Duration    string   `yaml:"duration" json:"duration,omitempty"`
	Size        string   `yaml:"size" json:"size,omitempty"`
	Validity    string   `yaml:"validity" json:"validity,omitempty"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Channels    int      `yaml:"channels" json:"channels,omitempty"`
	Features    []string `yaml:"features" json:"features,omitempty"`
	Popular     bool     `yaml:"popular" json:"popular,omitempty"`
}

// CreditedValue returns the value delivered to the customer for this plan.
func (p *Plan) CreditedValue() int {
	if p.ActualValue != nil {
		return *p.ActualValue
	}
	return p.Amount
}

// Category groups plans under a provider (e.g. "sme", "bonus", "compact").
type Category struct {
	Key         string `yaml:"key" json:"key"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
	Plans       []Plan `yaml:"plans" json:"-"`
}

// Provider is a network or cable operator.
type Provider struct {
	Key        string     `yaml:"key" json:"key"`
	Name       string     `yaml:"name" json:"name"`
	Color      string     `yaml:"color" json:"color,omitempty"`
	Categories []Category `yaml:"categories" json:"categories"`
}

// Duration is a subscription length offered on the cable flow.
type Duration struct {
	Months int    `yaml:"months" json:"months"`
	Label  string `yaml:"label" json:"label"`
}
