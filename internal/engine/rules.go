package engine

import (
	"github.com/GTDGit/vtu_api/internal/config"
	"github.com/GTDGit/vtu_api/internal/models"
)

// FlowRules configures validation and pricing for one purchase flow.
type FlowRules struct {
	Service models.ServiceType

	// PlanPriced flows take their amount from a catalog plan and ignore the raw amount.
	PlanPriced bool
	MinAmount  int
	MaxAmount  int
	AmountNoun string

	// BonusCategory enables bonus-plan resolution for requests in that category.
	BonusCategory string
	// RecipientCategory makes RecipientPhone required for requests in that category.
	RecipientCategory string
	// Discounts enables duration pricing. Nil means single-unit pricing.
	Discounts DiscountTable

	RequireProvider      bool
	RequirePhone         bool
	AllowBypassPhone     bool
	RequireSmartCard     bool
	RequireCustomerName  bool
	RequireCustomerPhone bool
	RequirePIN           bool

	// PaymentMethods lists accepted funding methods. Empty means the flow has no method selector.
	PaymentMethods []models.PaymentMethod
}

// AcceptsMethod reports whether m is one of the flow's payment methods.
func (r FlowRules) AcceptsMethod(m models.PaymentMethod) bool {
	for _, pm := range r.PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// DefaultRules returns the four standard flows with the configured amount bounds.
func DefaultRules(limits config.LimitsConfig) map[models.ServiceType]FlowRules {
	return map[models.ServiceType]FlowRules{
		models.ServiceAirtime: {
			Service:           models.ServiceAirtime,
			MinAmount:         limits.AirtimeMin,
			MaxAmount:         limits.AirtimeMax,
			AmountNoun:        "recharge",
			BonusCategory:     "bonus",
			RecipientCategory: "share",
			RequireProvider:   true,
			RequirePhone:      true,
			AllowBypassPhone:  true,
			RequirePIN:        true,
		},
		models.ServiceData: {
			Service:          models.ServiceData,
			PlanPriced:       true,
			RequireProvider:  true,
			RequirePhone:     true,
			AllowBypassPhone: true,
			RequirePIN:       true,
		},
		models.ServiceCable: {
			Service:              models.ServiceCable,
			PlanPriced:           true,
			Discounts:            DefaultDiscounts,
			RequireProvider:      true,
			RequireSmartCard:     true,
			RequireCustomerName:  true,
			RequireCustomerPhone: true,
			RequirePIN:           true,
		},
		models.ServiceWallet: {
			Service:    models.ServiceWallet,
			MinAmount:  limits.WalletMin,
			MaxAmount:  limits.WalletMax,
			AmountNoun: "funding",
			RequirePIN: true,
			PaymentMethods: []models.PaymentMethod{
				models.PaymentCard,
				models.PaymentBank,
				models.PaymentTransfer,
				models.PaymentUSSD,
				models.PaymentQR,
			},
		},
	}
}

// RequirePhoneFor drops the bypass-phone option from the given services, for
// submitters that need a subscriber number on every order.
func RequirePhoneFor(rules map[models.ServiceType]FlowRules, services ...models.ServiceType) {
	for _, svc := range services {
		if r, ok := rules[svc]; ok {
			r.AllowBypassPhone = false
			rules[svc] = r
		}
	}
}
