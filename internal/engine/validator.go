package engine

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/utils"
)

var (
	phonePattern     = regexp.MustCompile(`^\d{11}$`)
	pinPattern       = regexp.MustCompile(`^\d{4,6}$`)
	cardPattern      = regexp.MustCompile(`^\d{16}$`)
	expiryPattern    = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvPattern       = regexp.MustCompile(`^\d{3,4}$`)
	accountPattern   = regexp.MustCompile(`^\d{10}$`)
	smartCardPattern = regexp.MustCompile(`^\d{10,14}$`)
)

// FieldError is one invalid field. Code is one of the utils validation sentinels.
type FieldError struct {
	Code    error
	Message string
}

// MarshalJSON renders the code as its string form.
func (e FieldError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    e.Code.Error(),
		Message: e.Message,
	})
}

// ValidationResult maps field names to errors. Only invalid fields have keys.
type ValidationResult map[string]FieldError

// Valid reports whether no field failed.
func (r ValidationResult) Valid() bool {
	return len(r) == 0
}

// Messages flattens the result to field -> message.
func (r ValidationResult) Messages() map[string]string {
	out := make(map[string]string, len(r))
	for field, fe := range r {
		out[field] = fe.Message
	}
	return out
}

func (r ValidationResult) add(field string, code error, msg string) {
	r[field] = FieldError{Code: code, Message: msg}
}

// ValidateWith runs every check that rules enable. Checks are independent, so
// the result can hold several errors at once. Credentials are read but never
// copied into the result.
func ValidateWith(req *models.OrderRequest, rules FlowRules, lookup PlanLookup) ValidationResult {
	result := ValidationResult{}

	if _, err := ResolveAmount(req, rules, lookup); err != nil {
		var ae *AmountError
		if errors.As(err, &ae) {
			result.add(ae.Field, ae.Code, ae.Message)
		} else {
			result.add("service", utils.ErrInvalidSelection, "Catalog is unavailable, try again")
		}
	}

	if rules.RequirePhone && !(rules.AllowBypassPhone && req.BypassPhone) {
		checkPattern(result, "phoneNumber", req.Phone, phonePattern,
			"Phone number is required", "Enter a valid 11-digit phone number")
	}
	if rules.RecipientCategory != "" && req.Category == rules.RecipientCategory {
		checkPattern(result, "recipientPhone", req.RecipientPhone, phonePattern,
			"Recipient phone number is required", "Enter a valid 11-digit recipient number")
	}
	if rules.RequireSmartCard {
		checkPattern(result, "smartCardNumber", req.SmartCardNumber, smartCardPattern,
			"Smart card/IUC number is required", "Enter a valid 10-14 digit number")
	}
	if rules.RequireCustomerName && strings.TrimSpace(req.CustomerName) == "" {
		result.add("customerName", utils.ErrMissingField, "Customer name is required")
	}
	if rules.RequireCustomerPhone {
		checkPattern(result, "customerPhone", req.CustomerPhone, phonePattern,
			"Customer phone number is required", "Enter a valid 11-digit phone number")
	}

	if len(rules.PaymentMethods) > 0 {
		validatePayment(result, req, rules)
	}

	if rules.RequirePIN {
		pin := req.Credentials.PIN
		switch {
		case pin == "":
			result.add("pin", utils.ErrMissingField, "Transaction PIN is required")
		case !pinPattern.MatchString(pin):
			result.add("pin", utils.ErrFormat, "PIN should be 4-6 digits")
		}
	}

	return result
}

func validatePayment(result ValidationResult, req *models.OrderRequest, rules FlowRules) {
	switch {
	case req.PaymentMethod == "":
		result.add("paymentMethod", utils.ErrMissingField, "Select a payment method")
		return
	case !rules.AcceptsMethod(req.PaymentMethod):
		result.add("paymentMethod", utils.ErrInvalidSelection, "Select a valid payment method")
		return
	}

	creds := req.Credentials
	switch req.PaymentMethod {
	case models.PaymentCard:
		checkPattern(result, "cardNumber", creds.CardNumber, cardPattern,
			"Card number is required", "Enter a valid 16-digit card number")
		// expiry is matched as typed; MM/YY with no calendar check
		switch {
		case creds.CardExpiry == "":
			result.add("cardExpiry", utils.ErrMissingField, "Expiry date is required")
		case !expiryPattern.MatchString(creds.CardExpiry):
			result.add("cardExpiry", utils.ErrFormat, "Format: MM/YY")
		}
		switch {
		case creds.CardCVV == "":
			result.add("cardCVV", utils.ErrMissingField, "CVV is required")
		case !cvvPattern.MatchString(creds.CardCVV):
			result.add("cardCVV", utils.ErrFormat, "Enter a valid CVV (3-4 digits)")
		}
	case models.PaymentBank, models.PaymentTransfer:
		checkPattern(result, "accountNumber", req.AccountNumber, accountPattern,
			"Account number is required", "Enter a valid 10-digit account number")
	}
}

// checkPattern tests a whitespace-stripped value: empty is MISSING_FIELD,
// a pattern miss is FORMAT_ERROR.
func checkPattern(result ValidationResult, field, value string, pattern *regexp.Regexp, missing, invalid string) {
	v := stripSpaces(value)
	switch {
	case v == "":
		result.add(field, utils.ErrMissingField, missing)
	case !pattern.MatchString(v):
		result.add(field, utils.ErrFormat, invalid)
	}
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
