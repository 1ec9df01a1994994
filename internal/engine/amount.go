package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/utils"
)

// AmountSource names which input drives the total of a request.
type AmountSource string

const (
	SourcePlan   AmountSource = "plan"
	SourceBonus  AmountSource = "bonus"
	SourceAmount AmountSource = "amount"
)

// Resolution is the resolved amount of a request. Charged is what the customer
// pays; Credited is what the customer receives. They differ only for bonus plans.
type Resolution struct {
	Source   AmountSource
	Plan     *models.Plan
	Unit     int
	Months   int
	Charged  int
	Credited int
}

// AmountError is a resolution failure tied to the field that caused it.
type AmountError struct {
	Field   string
	Code    error
	Message string
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *AmountError) Unwrap() error {
	return e.Code
}

func unknownServiceError() *AmountError {
	return &AmountError{Field: "service", Code: utils.ErrInvalidSelection, Message: "Select a valid service"}
}

// ResolveAmount applies the amount priority of a flow: catalog plan, then bonus
// plan, then a bounded free-form amount. Only one source is ever used.
func ResolveAmount(req *models.OrderRequest, rules FlowRules, lookup PlanLookup) (Resolution, error) {
	plans, err := checkSelection(req, rules, lookup)
	if err != nil {
		return Resolution{}, err
	}

	if rules.PlanPriced {
		return resolvePlan(req, rules, lookup, plans)
	}

	amount, ok := parseAmount(req.Amount)
	if ok && rules.BonusCategory != "" && req.Category == rules.BonusCategory {
		for i := range plans {
			if plans[i].Amount == amount && plans[i].ActualValue != nil {
				p := plans[i]
				return Resolution{
					Source:   SourceBonus,
					Plan:     &p,
					Unit:     p.Amount,
					Months:   1,
					Charged:  p.Amount,
					Credited: p.CreditedValue(),
				}, nil
			}
		}
	}

	if !ok {
		return Resolution{}, amountError("Please enter a valid amount")
	}
	if amount < rules.MinAmount {
		return Resolution{}, amountError(fmt.Sprintf("Minimum %s amount is %s", rules.AmountNoun, FormatNaira(rules.MinAmount)))
	}
	if rules.MaxAmount > 0 && amount > rules.MaxAmount {
		return Resolution{}, amountError(fmt.Sprintf("Maximum %s amount is %s", rules.AmountNoun, FormatNaira(rules.MaxAmount)))
	}
	return Resolution{
		Source:   SourceAmount,
		Unit:     amount,
		Months:   1,
		Charged:  amount,
		Credited: amount,
	}, nil
}

func resolvePlan(req *models.OrderRequest, rules FlowRules, lookup PlanLookup, plans []models.Plan) (Resolution, error) {
	if req.PlanID == "" {
		return Resolution{}, selectionError("plan", "Please select a plan")
	}
	var plan *models.Plan
	for i := range plans {
		if plans[i].ID == req.PlanID {
			p := plans[i]
			plan = &p
			break
		}
	}
	if plan == nil {
		return Resolution{}, selectionError("plan", "Selected plan is not available")
	}

	months := 1
	price := plan.Amount
	if rules.Discounts != nil {
		if req.Months != 0 {
			months = req.Months
		}
		// only catalog durations are priced; anything else could overflow monthly*months
		if !lookup.OffersDuration(months) {
			return Resolution{}, selectionError("duration", "Select a valid duration")
		}
		price = rules.Discounts.Price(plan.Amount, months)
	}

	return Resolution{
		Source:   SourcePlan,
		Plan:     plan,
		Unit:     plan.Amount,
		Months:   months,
		Charged:  price,
		Credited: price,
	}, nil
}

// checkSelection confirms provider and category exist and returns their plans.
func checkSelection(req *models.OrderRequest, rules FlowRules, lookup PlanLookup) ([]models.Plan, error) {
	if !rules.RequireProvider {
		return nil, nil
	}
	if strings.TrimSpace(req.Provider) == "" {
		return nil, selectionError("provider", "Please select a provider")
	}
	if strings.TrimSpace(req.Category) == "" {
		return nil, selectionError("category", "Please select a category")
	}

	plans, err := lookup.LookupPlans(req.Service, req.Provider, req.Category)
	switch {
	case err == nil:
		return plans, nil
	case errors.Is(err, utils.ErrUnknownProvider):
		return nil, selectionError("provider", "Select a valid provider")
	case errors.Is(err, utils.ErrUnknownCategory):
		return nil, selectionError("category", "Select a valid category")
	case errors.Is(err, utils.ErrUnknownService):
		return nil, unknownServiceError()
	default:
		return nil, fmt.Errorf("lookup plans: %w", err)
	}
}

// parseAmount accepts a positive whole number. Empty, zero, negative, fractional
// and non-numeric input all report false.
func parseAmount(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func amountError(msg string) *AmountError {
	return &AmountError{Field: "amount", Code: utils.ErrInvalidAmount, Message: msg}
}

func selectionError(field, msg string) *AmountError {
	return &AmountError{Field: field, Code: utils.ErrInvalidSelection, Message: msg}
}
