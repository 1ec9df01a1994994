package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/vtu_api/internal/engine"
	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/pkg/vtpass"
)

// SubmitRequest is a validated, priced order handed to the submission boundary.
// Order carries credentials for the duration of the call only.
type SubmitRequest struct {
	RequestID string
	SessionID string
	Order     models.OrderRequest
	Quote     *engine.Quotation
}

// SubmitResult describes an accepted order.
type SubmitResult struct {
	ProviderRef string
	Provider    string
}

// Submitter is the external boundary that fulfils an order. Any error is a failure;
// callers do not inspect its cause.
type Submitter interface {
	Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error)
}

// SimulatedSubmitter accepts every order after a fixed delay.
type SimulatedSubmitter struct {
	delay time.Duration
}

// NewSimulatedSubmitter creates a SimulatedSubmitter.
func NewSimulatedSubmitter(delay time.Duration) *SimulatedSubmitter {
	return &SimulatedSubmitter{delay: delay}
}

// Submit waits for the configured delay, or until ctx is done.
func (s *SimulatedSubmitter) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}
	return &SubmitResult{
		ProviderRef: "SIM-" + req.RequestID,
		Provider:    "simulated",
	}, nil
}

// errStillPending marks a VTpass order that has not settled yet.
var errStillPending = errors.New("vtpass transaction still pending")

// VTpassSubmitter fulfils airtime, data and cable orders through VTpass.
// Transport failures and pending replies are retried with exponential backoff
// under the same request id; provider rejections are not.
type VTpassSubmitter struct {
	client         *vtpass.Client
	maxRetries     int
	initialBackoff time.Duration
}

// NewVTpassSubmitter creates a VTpassSubmitter.
func NewVTpassSubmitter(client *vtpass.Client, maxRetries int) *VTpassSubmitter {
	return &VTpassSubmitter{
		client:         client,
		maxRetries:     maxRetries,
		initialBackoff: 500 * time.Millisecond,
	}
}

// Submit pays for the order, then requeries while the payment is pending.
func (s *VTpassSubmitter) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	payReq, err := buildPayRequest(req)
	if err != nil {
		return nil, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.maxRetries)), ctx)

	var (
		reached bool
		result  *SubmitResult
		attempt int
	)
	op := func() error {
		attempt++
		var resp *vtpass.PayResponse
		var err error
		if reached {
			resp, err = s.client.Requery(ctx, payReq.RequestID)
		} else {
			resp, err = s.client.Pay(ctx, payReq)
		}
		if err != nil {
			var apiErr *vtpass.APIError
			if errors.As(err, &apiErr) && !apiErr.Temporary() {
				return backoff.Permanent(err)
			}
			log.Warn().Err(err).Str("request_id", payReq.RequestID).Int("attempt", attempt).Msg("VTpass call failed, retrying")
			return err
		}
		reached = true

		switch resp.Outcome() {
		case vtpass.OutcomeSuccess:
			result = &SubmitResult{
				ProviderRef: resp.Content.Transactions.TransactionID,
				Provider:    "vtpass",
			}
			return nil
		case vtpass.OutcomePending:
			log.Info().Str("request_id", payReq.RequestID).Str("code", resp.Code).Msg("VTpass transaction pending")
			return errStillPending
		default:
			return backoff.Permanent(fmt.Errorf("vtpass rejected order: code=%s %s", resp.Code, resp.ResponseDescription))
		}
	}

	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return result, nil
}

var networkServiceIDs = map[string]string{
	"mtn":     "mtn",
	"airtel":  "airtel",
	"glo":     "glo",
	"9mobile": "etisalat",
}

// buildPayRequest maps an order to a VTpass payment. Plan ids double as VTpass variation codes.
func buildPayRequest(req *SubmitRequest) (vtpass.PayRequest, error) {
	o := req.Order
	pr := vtpass.PayRequest{
		RequestID: req.RequestID,
		Amount:    req.Quote.Charged,
	}

	switch o.Service {
	case models.ServiceAirtime:
		id, ok := networkServiceIDs[o.Provider]
		if !ok {
			return pr, fmt.Errorf("no vtpass service for network %q", o.Provider)
		}
		pr.ServiceID = id
		pr.Phone = o.Phone
		if o.Category == "share" && o.RecipientPhone != "" {
			pr.Phone = o.RecipientPhone
		}
	case models.ServiceData:
		id, ok := networkServiceIDs[o.Provider]
		if !ok {
			return pr, fmt.Errorf("no vtpass service for network %q", o.Provider)
		}
		pr.ServiceID = id + "-data"
		pr.BillersCode = o.Phone
		pr.Phone = o.Phone
		pr.VariationCode = o.PlanID
	case models.ServiceCable:
		pr.ServiceID = o.Provider
		pr.BillersCode = o.SmartCardNumber
		pr.Phone = o.CustomerPhone
		pr.VariationCode = o.PlanID
		pr.SubscriptionType = "change"
		pr.Quantity = req.Quote.Months
	default:
		return pr, fmt.Errorf("vtpass does not handle %s orders", o.Service)
	}

	if pr.Phone == "" {
		return pr, errors.New("vtpass orders need a phone number")
	}
	return pr, nil
}

// RoutingSubmitter dispatches orders by service, falling back when no route matches.
type RoutingSubmitter struct {
	routes   map[models.ServiceType]Submitter
	fallback Submitter
}

// NewRoutingSubmitter creates a RoutingSubmitter.
func NewRoutingSubmitter(fallback Submitter) *RoutingSubmitter {
	return &RoutingSubmitter{
		routes:   make(map[models.ServiceType]Submitter),
		fallback: fallback,
	}
}

// Route sends orders for service to s.
func (r *RoutingSubmitter) Route(service models.ServiceType, s Submitter) *RoutingSubmitter {
	r.routes[service] = s
	return r
}

// Submit forwards to the submitter registered for the order's service.
func (r *RoutingSubmitter) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	if s, ok := r.routes[req.Order.Service]; ok {
		return s.Submit(ctx, req)
	}
	if r.fallback == nil {
		return nil, fmt.Errorf("no submitter for %s orders", req.Order.Service)
	}
	return r.fallback.Submit(ctx, req)
}
