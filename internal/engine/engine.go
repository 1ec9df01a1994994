// Package engine validates order requests and prices them into quotations.
// It holds no state beyond its configuration, so every call is a pure function
// of the request and the catalog in effect.
package engine

import (
	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/utils"
)

// PlanLookup resolves catalog keys to plans and offered durations.
type PlanLookup interface {
	LookupPlans(service models.ServiceType, provider, category string) ([]models.Plan, error)
	LookupPlanByID(service models.ServiceType, provider, category, id string) (*models.Plan, error)
	OffersDuration(months int) bool
}

// Engine binds flow rules to a catalog.
type Engine struct {
	lookup PlanLookup
	rules  map[models.ServiceType]FlowRules
}

// New creates an Engine. rules is keyed by service; services without rules are rejected.
func New(lookup PlanLookup, rules map[models.ServiceType]FlowRules) *Engine {
	return &Engine{
		lookup: lookup,
		rules:  rules,
	}
}

// Rules returns the flow rules for a service.
func (e *Engine) Rules(service models.ServiceType) (FlowRules, error) {
	r, ok := e.rules[service]
	if !ok {
		return FlowRules{}, utils.ErrUnknownService
	}
	return r, nil
}

// ResolveAmount determines the charged and credited amounts of a request.
// Failures are *AmountError values wrapping ErrInvalidAmount or ErrInvalidSelection.
func (e *Engine) ResolveAmount(req *models.OrderRequest) (Resolution, error) {
	rules, err := e.Rules(req.Service)
	if err != nil {
		return Resolution{}, unknownServiceError()
	}
	return ResolveAmount(req, rules, e.lookup)
}

// Validate checks every field of req against its service's flow rules.
func (e *Engine) Validate(req *models.OrderRequest) ValidationResult {
	rules, err := e.Rules(req.Service)
	if err != nil {
		ae := unknownServiceError()
		return ValidationResult{ae.Field: {Code: ae.Code, Message: ae.Message}}
	}
	return ValidateWith(req, rules, e.lookup)
}

// BuildQuotation resolves req and assembles its order summary.
func (e *Engine) BuildQuotation(req *models.OrderRequest) (*Quotation, error) {
	rules, err := e.Rules(req.Service)
	if err != nil {
		return nil, unknownServiceError()
	}
	return BuildQuotation(req, rules, e.lookup)
}
