package engine

import (
	"github.com/GTDGit/vtu_api/internal/models"
)

// Quotation is the priced summary of a valid request.
// Discount flows satisfy Total == Base - Discount. Bonus flows satisfy
// Total == Base + BonusExtra with Charged == Base. A quotation never has both.
type Quotation struct {
	Service   models.ServiceType `json:"service"`
	Provider  string             `json:"provider,omitempty"`
	PlanID    string             `json:"planId,omitempty"`
	PlanLabel string             `json:"planLabel,omitempty"`
	Bonus     string             `json:"bonus,omitempty"`

	Base            int  `json:"base"`
	Discount        *int `json:"discount,omitempty"`
	DiscountPercent int  `json:"discountPercent,omitempty"`
	BonusExtra      *int `json:"bonusExtra,omitempty"`
	Total           int  `json:"total"`
	Charged         int  `json:"charged"`
	Credited        int  `json:"credited"`
	Months          int  `json:"months,omitempty"`
	SavingsPercent  int  `json:"savingsPercent,omitempty"`

	Display Display `json:"display"`
}

// Display holds the formatted amounts of a quotation.
type Display struct {
	Base       string `json:"base"`
	Discount   string `json:"discount,omitempty"`
	BonusExtra string `json:"bonusExtra,omitempty"`
	Total      string `json:"total"`
	Charged    string `json:"charged"`
	Credited   string `json:"credited"`
	Summary    string `json:"summary"`
}

// BuildQuotation resolves the request amount and assembles the summary.
// It returns the resolver's *AmountError on failure.
func BuildQuotation(req *models.OrderRequest, rules FlowRules, lookup PlanLookup) (*Quotation, error) {
	res, err := ResolveAmount(req, rules, lookup)
	if err != nil {
		return nil, err
	}

	q := &Quotation{
		Service:  req.Service,
		Provider: req.Provider,
		Charged:  res.Charged,
		Credited: res.Credited,
	}
	if res.Plan != nil {
		q.PlanID = res.Plan.ID
		q.PlanLabel = res.Plan.Label
		q.Bonus = res.Plan.Bonus
	}

	switch {
	case res.Source == SourceBonus:
		extra := res.Credited - res.Charged
		q.Base = res.Charged
		q.BonusExtra = &extra
		q.Total = q.Base + extra
	case rules.Discounts != nil:
		base := res.Unit * res.Months
		discount := base - res.Charged
		q.Base = base
		q.Discount = &discount
		q.DiscountPercent = rules.Discounts.Percent(res.Months)
		q.Total = base - discount
		q.Months = res.Months
		q.SavingsPercent = rules.Discounts.SavingsPercent(res.Unit, res.Months)
	default:
		q.Base = res.Charged
		q.Total = res.Charged
	}

	q.Display = display(q)
	return q, nil
}

func display(q *Quotation) Display {
	d := Display{
		Base:     FormatNaira(q.Base),
		Total:    FormatNaira(q.Total),
		Charged:  FormatNaira(q.Charged),
		Credited: FormatNaira(q.Credited),
	}
	if q.Discount != nil {
		d.Discount = FormatNaira(*q.Discount)
	}
	if q.BonusExtra != nil {
		d.BonusExtra = FormatNaira(*q.BonusExtra)
		d.Summary = "Pay " + d.Charged + ", receive " + d.Credited
	} else {
		d.Summary = "Pay " + d.Charged
	}
	return d
}
