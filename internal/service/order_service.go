package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/vtu_api/internal/cache"
	"github.com/GTDGit/vtu_api/internal/engine"
	"github.com/GTDGit/vtu_api/internal/metrics"
	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/sse"
	"github.com/GTDGit/vtu_api/internal/utils"
)

const failedMessage = "Transaction failed, please try again"

// OrderRecorder persists resolved orders.
type OrderRecorder interface {
	Create(ctx context.Context, o *models.OrderRecord) error
	ListRecent(ctx context.Context, service models.ServiceType, limit int) ([]models.OrderRecord, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.OrderRecord, error)
}

// ValidationError is returned when a request fails validation. Result holds every field error.
type ValidationError struct {
	Result engine.ValidationResult
}

func (e *ValidationError) Error() string {
	return utils.ErrValidationFailed.Error()
}

func (e *ValidationError) Unwrap() error {
	return utils.ErrValidationFailed
}

// SessionPatch carries field edits; nil fields are left unchanged. The service of a session is fixed.
type SessionPatch struct {
	Provider        *string               `json:"provider"`
	Category        *string               `json:"category"`
	PlanID          *string               `json:"planId"`
	Amount          *string               `json:"amount"`
	Phone           *string               `json:"phoneNumber"`
	RecipientPhone  *string               `json:"recipientPhone"`
	AccountNumber   *string               `json:"accountNumber"`
	SmartCardNumber *string               `json:"smartCardNumber"`
	CustomerName    *string               `json:"customerName"`
	CustomerPhone   *string               `json:"customerPhone"`
	PaymentMethod   *models.PaymentMethod `json:"paymentMethod"`
	Bank            *string               `json:"bank"`
	Months          *int                  `json:"months"`
	BypassPhone     *bool                 `json:"bypassPhone"`
}

func (p *SessionPatch) apply(r *models.OrderRequest) {
	setString(&r.Provider, p.Provider)
	setString(&r.Category, p.Category)
	setString(&r.PlanID, p.PlanID)
	setString(&r.Amount, p.Amount)
	setString(&r.Phone, p.Phone)
	setString(&r.RecipientPhone, p.RecipientPhone)
	setString(&r.AccountNumber, p.AccountNumber)
	setString(&r.SmartCardNumber, p.SmartCardNumber)
	setString(&r.CustomerName, p.CustomerName)
	setString(&r.CustomerPhone, p.CustomerPhone)
	setString(&r.Bank, p.Bank)
	if p.PaymentMethod != nil {
		r.PaymentMethod = *p.PaymentMethod
	}
	if p.Months != nil {
		r.Months = *p.Months
	}
	if p.BypassPhone != nil {
		r.BypassPhone = *p.BypassPhone
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// OrderService runs form sessions through validation, quotation and submission.
type OrderService struct {
	engine    *engine.Engine
	plans     engine.PlanLookup
	sessions  cache.SessionStore
	submitter Submitter
	orders    OrderRecorder
	notifier  sse.SessionNotifier
	timeout   time.Duration
	now       func() time.Time
}

// NewOrderService creates an OrderService. orders may be nil when history is disabled.
func NewOrderService(
	eng *engine.Engine,
	plans engine.PlanLookup,
	sessions cache.SessionStore,
	submitter Submitter,
	orders OrderRecorder,
	notifier sse.SessionNotifier,
	timeout time.Duration,
) *OrderService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &OrderService{
		engine:    eng,
		plans:     plans,
		sessions:  sessions,
		submitter: submitter,
		orders:    orders,
		notifier:  notifier,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Validate runs one stateless validation pass.
func (s *OrderService) Validate(req *models.OrderRequest) engine.ValidationResult {
	res := s.engine.Validate(req)
	recordValidation(req.Service, res)
	return res
}

// Quote prices a request without validating its contact fields.
func (s *OrderService) Quote(req *models.OrderRequest) (*engine.Quotation, error) {
	q, err := s.engine.BuildQuotation(req)
	if err != nil {
		return nil, err
	}
	metrics.QuotedAmount.WithLabelValues(string(req.Service)).Observe(float64(q.Charged))
	return q, nil
}

// CreateSession opens a session for req. Credentials are never kept on the session.
func (s *OrderService) CreateSession(ctx context.Context, req models.OrderRequest) (*models.Session, error) {
	if _, err := s.engine.Rules(req.Service); err != nil {
		return nil, err
	}
	req.ClearSecrets()
	s.normalize(&req)

	now := s.now().UTC()
	sess := &models.Session{
		ID:        uuid.New().String(),
		Status:    models.SessionEditing,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	log.Debug().Str("session_id", sess.ID).Str("service", string(req.Service)).Msg("Session created")
	return sess, nil
}

// GetSession loads a session by id.
func (s *OrderService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return s.sessions.Get(ctx, id)
}

// UpdateSession applies field edits. Sessions that are submitting or finished reject edits.
func (s *OrderService) UpdateSession(ctx context.Context, id string, patch *SessionPatch) (*models.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkEditable(sess.Status); err != nil {
		return nil, err
	}

	patch.apply(&sess.Request)
	s.normalize(&sess.Request)
	prev := sess.Status
	sess.Status = models.SessionEditing
	sess.UpdatedAt = s.now().UTC()

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	if prev != sess.Status {
		s.notifier.NotifySessionStatusChanged(sess)
	}
	return sess, nil
}

// Submit validates the session with creds and, when valid, hands the order to
// the submitter. At most one submission per session runs at a time.
// On success the session is terminal and the share recipient is cleared; on
// failure every field is kept for correction.
func (s *OrderService) Submit(ctx context.Context, id string, creds models.Credentials) (*models.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == models.SessionSuccess {
		return nil, utils.ErrSessionClosed
	}

	token := uuid.New().String()
	ok, err := s.sessions.AcquireSubmitLock(ctx, id, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.SubmitConflictsTotal.Inc()
		return nil, utils.ErrSubmissionInProgress
	}
	// writes after the submitter returns must land even if the client went away
	persistCtx := context.WithoutCancel(ctx)
	defer func() {
		if err := s.sessions.ReleaseSubmitLock(persistCtx, id, token); err != nil {
			log.Error().Err(err).Str("session_id", id).Msg("Failed to release submit lock")
		}
	}()

	// the lock is renewed for as long as this submission runs; losing it
	// cancels the submitter so two orders never race for one session
	lockCtx, lockLost := context.WithCancel(ctx)
	defer lockLost()
	stopKeepAlive := s.keepSubmitLock(persistCtx, id, token, lockLost)
	defer stopKeepAlive()

	// reload under the lock; another submit may have finished in between.
	// A session left validating or submitting by a crashed holder is resumable here.
	sess, err = s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == models.SessionSuccess {
		return nil, utils.ErrSessionClosed
	}

	if err := s.transition(ctx, sess, models.SessionValidating); err != nil {
		return nil, err
	}

	req := sess.Request
	req.Credentials = creds
	defer req.ClearSecrets()

	result := s.engine.Validate(&req)
	recordValidation(req.Service, result)
	var quote *engine.Quotation
	if result.Valid() {
		quote, err = s.engine.BuildQuotation(&req)
		if err != nil {
			result = amountErrorResult(err)
		}
	}
	if !result.Valid() {
		sess.Errors = result.Messages()
		if err := s.transition(ctx, sess, models.SessionInvalid); err != nil {
			return nil, err
		}
		return sess, &ValidationError{Result: result}
	}

	sess.Errors = nil
	sess.Message = ""
	if err := s.transition(ctx, sess, models.SessionSubmitting); err != nil {
		return nil, err
	}

	requestID, err := utils.GenerateRequestID(s.now())
	if err != nil {
		return nil, fmt.Errorf("generate request id: %w", err)
	}
	submitCtx, cancel := context.WithTimeout(lockCtx, s.timeout)
	defer cancel()

	start := time.Now()
	res, submitErr := s.submitter.Submit(submitCtx, &SubmitRequest{
		RequestID: requestID,
		SessionID: sess.ID,
		Order:     req,
		Quote:     quote,
	})
	elapsed := time.Since(start)

	record := &models.OrderRecord{
		SessionID:  sess.ID,
		Service:    req.Service,
		Provider:   req.Provider,
		CustomerNo: customerNo(&req),
		Charged:    quote.Charged,
		Credited:   quote.Credited,
	}
	if quote.PlanID != "" {
		planID := quote.PlanID
		record.PlanID = &planID
	}
	if ref, err := utils.GenerateOrderReference(); err == nil {
		record.Reference = ref
	} else {
		record.Reference = "ORD-" + requestID
	}

	if submitErr != nil {
		metrics.ObserveSubmission(string(req.Service), string(models.OrderFailed), elapsed)
		log.Error().Err(submitErr).
			Str("session_id", sess.ID).
			Str("request_id", requestID).
			Str("service", string(req.Service)).
			Msg("Order submission failed")

		reason := utils.ErrSubmissionFailed.Error()
		record.Status = models.OrderFailed
		record.FailedReason = &reason
		s.recordOrder(persistCtx, record)

		sess.Message = failedMessage
		if err := s.transition(persistCtx, sess, models.SessionFailed); err != nil {
			return nil, err
		}
		return sess, utils.ErrSubmissionFailed
	}

	metrics.ObserveSubmission(string(req.Service), string(models.OrderSuccess), elapsed)
	log.Info().
		Str("session_id", sess.ID).
		Str("request_id", requestID).
		Str("service", string(req.Service)).
		Str("provider_ref", res.ProviderRef).
		Int("charged", quote.Charged).
		Msg("Order submitted")

	record.Status = models.OrderSuccess
	s.recordOrder(persistCtx, record)

	sess.Reference = record.Reference
	sess.Message = s.successMessage(&req, quote)
	if rules, err := s.engine.Rules(req.Service); err == nil && rules.RecipientCategory != "" && req.Category == rules.RecipientCategory {
		sess.Request.RecipientPhone = ""
	}
	if err := s.transition(persistCtx, sess, models.SessionSuccess); err != nil {
		return nil, err
	}
	s.notifier.NotifyOrderCompleted(sess)
	return sess, nil
}

// History lists recent orders, newest first. It is empty when history is disabled.
func (s *OrderService) History(ctx context.Context, service models.ServiceType, limit int) ([]models.OrderRecord, error) {
	if s.orders == nil {
		return []models.OrderRecord{}, nil
	}
	return s.orders.ListRecent(ctx, service, limit)
}

// SessionOrders lists every submission attempt recorded for a session, newest first.
func (s *OrderService) SessionOrders(ctx context.Context, id string) ([]models.OrderRecord, error) {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.orders == nil {
		return []models.OrderRecord{}, nil
	}
	return s.orders.ListBySession(ctx, id)
}

// keepSubmitLock extends the submit lock every third of its TTL until the
// returned stop func is called. stop waits for the renewal loop to exit.
func (s *OrderService) keepSubmitLock(ctx context.Context, id, token string, lost context.CancelFunc) (stop func()) {
	interval := s.sessions.SubmitLockTTL() / 3
	if interval <= 0 {
		return func() {}
	}

	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				ok, err := s.sessions.ExtendSubmitLock(ctx, id, token)
				if err != nil {
					log.Warn().Err(err).Str("session_id", id).Msg("Failed to extend submit lock")
					continue
				}
				if !ok {
					log.Error().Str("session_id", id).Msg("Submit lock lost, cancelling submission")
					lost()
					return
				}
			}
		}
	}()

	return func() {
		close(quit)
		<-done
	}
}

func (s *OrderService) transition(ctx context.Context, sess *models.Session, status models.SessionStatus) error {
	sess.Status = status
	sess.UpdatedAt = s.now().UTC()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	s.notifier.NotifySessionStatusChanged(sess)
	return nil
}

func (s *OrderService) recordOrder(ctx context.Context, rec *models.OrderRecord) {
	if s.orders == nil {
		return
	}
	if err := s.orders.Create(ctx, rec); err != nil {
		log.Error().Err(err).Str("reference", rec.Reference).Msg("Failed to record order")
	}
}

// normalize snaps a plan-priced request to the first plan of its category when
// the selected plan does not belong there.
func (s *OrderService) normalize(req *models.OrderRequest) {
	rules, err := s.engine.Rules(req.Service)
	if err != nil || !rules.PlanPriced || req.Provider == "" || req.Category == "" {
		return
	}
	plans, err := s.plans.LookupPlans(req.Service, req.Provider, req.Category)
	if err != nil || len(plans) == 0 {
		return
	}
	for _, p := range plans {
		if p.ID == req.PlanID {
			return
		}
	}
	req.PlanID = plans[0].ID
}

func (s *OrderService) successMessage(req *models.OrderRequest, q *engine.Quotation) string {
	amount := engine.FormatNaira(q.Charged)
	switch req.Service {
	case models.ServiceAirtime:
		if req.Category == "share" {
			return fmt.Sprintf("Successfully sent %s airtime to %s", amount, req.RecipientPhone)
		}
		if req.Phone == "" {
			return fmt.Sprintf("Successfully recharged %s", amount)
		}
		return fmt.Sprintf("Successfully recharged %s to %s", amount, req.Phone)
	case models.ServiceData:
		size := q.PlanLabel
		if p, err := s.plans.LookupPlanByID(req.Service, req.Provider, req.Category, req.PlanID); err == nil && p.Size != "" {
			size = p.Size
		}
		return strings.TrimSpace(fmt.Sprintf("Data purchase successful! %s for %s", size, req.Phone))
	case models.ServiceCable:
		return fmt.Sprintf("Cable subscription successful! %s activated for %s", q.PlanLabel, req.SmartCardNumber)
	case models.ServiceWallet:
		return fmt.Sprintf("Successfully funded wallet with %s", amount)
	}
	return "Order successful"
}

func checkEditable(status models.SessionStatus) error {
	switch {
	case status == models.SessionSubmitting || status == models.SessionValidating:
		return utils.ErrSubmissionInProgress
	case !status.Editable():
		return utils.ErrSessionClosed
	}
	return nil
}

func customerNo(req *models.OrderRequest) string {
	switch req.Service {
	case models.ServiceCable:
		return req.SmartCardNumber
	case models.ServiceAirtime:
		if req.Category == "share" {
			return req.RecipientPhone
		}
	case models.ServiceWallet:
		return req.AccountNumber
	}
	return req.Phone
}

func amountErrorResult(err error) engine.ValidationResult {
	var ae *engine.AmountError
	if errors.As(err, &ae) {
		return engine.ValidationResult{ae.Field: {Code: ae.Code, Message: ae.Message}}
	}
	return engine.ValidationResult{"service": {Code: utils.ErrInvalidSelection, Message: err.Error()}}
}

func recordValidation(service models.ServiceType, res engine.ValidationResult) {
	result := "valid"
	if !res.Valid() {
		result = "invalid"
	}
	metrics.ValidationsTotal.WithLabelValues(string(service), result).Inc()
	for field, fe := range res {
		metrics.FieldErrorsTotal.WithLabelValues(string(service), field, fe.Code.Error()).Inc()
	}
}
