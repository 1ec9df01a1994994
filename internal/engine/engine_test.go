package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/vtu_api/internal/catalog"
	"github.com/GTDGit/vtu_api/internal/config"
	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/utils"
)

var testLimits = config.LimitsConfig{
	AirtimeMin: 50,
	AirtimeMax: 50000,
	WalletMin:  100,
	WalletMax:  1000000,
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return New(c, DefaultRules(testLimits))
}

func airtimeRequest(amount string) *models.OrderRequest {
	return &models.OrderRequest{
		Service:     models.ServiceAirtime,
		Provider:    "mtn",
		Category:    "regular",
		Amount:      amount,
		Phone:       "08012345678",
		Credentials: models.Credentials{PIN: "1234"},
	}
}

func walletRequest(amount string) *models.OrderRequest {
	return &models.OrderRequest{
		Service:       models.ServiceWallet,
		Amount:        amount,
		PaymentMethod: models.PaymentUSSD,
		Credentials:   models.Credentials{PIN: "1234"},
	}
}

func cableRequest(planID string, months int) *models.OrderRequest {
	return &models.OrderRequest{
		Service:         models.ServiceCable,
		Provider:        "dstv",
		Category:        "compact",
		PlanID:          planID,
		Months:          months,
		SmartCardNumber: "1234567890",
		CustomerName:    "Ada Obi",
		CustomerPhone:   "08012345678",
		Credentials:     models.Credentials{PIN: "1234"},
	}
}

func TestResolveAmount_InvalidInputs(t *testing.T) {
	e := newTestEngine(t)

	for _, raw := range []string{"", "0", "-5", "abc", "1.5"} {
		t.Run("airtime "+raw, func(t *testing.T) {
			_, err := e.ResolveAmount(airtimeRequest(raw))
			assert.ErrorIs(t, err, utils.ErrInvalidAmount)
		})
		t.Run("wallet "+raw, func(t *testing.T) {
			_, err := e.ResolveAmount(walletRequest(raw))
			assert.ErrorIs(t, err, utils.ErrInvalidAmount)
		})
	}
}

func TestResolveAmount_EmptyAndZeroShareMessage(t *testing.T) {
	e := newTestEngine(t)

	_, errEmpty := e.ResolveAmount(airtimeRequest(""))
	_, errZero := e.ResolveAmount(airtimeRequest("0"))
	require.Error(t, errEmpty)
	require.Error(t, errZero)
	assert.Equal(t, errEmpty.Error(), errZero.Error())
}

func TestResolveAmount_Bounds(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		req  *models.OrderRequest
		ok   bool
		msg  string
	}{
		{name: "airtime min", req: airtimeRequest("50"), ok: true},
		{name: "airtime max", req: airtimeRequest("50000"), ok: true},
		{name: "airtime below", req: airtimeRequest("49"), msg: "Minimum recharge amount is ₦50"},
		{name: "airtime above", req: airtimeRequest("50001"), msg: "Maximum recharge amount is ₦50,000"},
		{name: "wallet min", req: walletRequest("100"), ok: true},
		{name: "wallet max", req: walletRequest("1000000"), ok: true},
		{name: "wallet below", req: walletRequest("99"), msg: "Minimum funding amount is ₦100"},
		{name: "wallet above", req: walletRequest("1000001"), msg: "Maximum funding amount is ₦1,000,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.ResolveAmount(tt.req)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, SourceAmount, res.Source)
				assert.Equal(t, res.Charged, res.Credited)
				return
			}
			var ae *AmountError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, "amount", ae.Field)
			assert.Equal(t, tt.msg, ae.Message)
		})
	}
}

func TestResolveAmount_BonusPlan(t *testing.T) {
	e := newTestEngine(t)

	req := airtimeRequest("100")
	req.Category = "bonus"

	res, err := e.ResolveAmount(req)
	require.NoError(t, err)
	assert.Equal(t, SourceBonus, res.Source)
	assert.Equal(t, 100, res.Charged)
	assert.Equal(t, 110, res.Credited)
	require.NotNil(t, res.Plan)
	assert.Equal(t, "mtn-bonus-100", res.Plan.ID)

	// no matching bonus plan falls back to the free-form amount
	req.Amount = "250"
	res, err = e.ResolveAmount(req)
	require.NoError(t, err)
	assert.Equal(t, SourceAmount, res.Source)
	assert.Equal(t, 250, res.Credited)
}

func TestResolveAmount_PlanPricedIgnoresRawAmount(t *testing.T) {
	e := newTestEngine(t)

	req := &models.OrderRequest{
		Service:  models.ServiceData,
		Provider: "mtn",
		Category: "sme",
		PlanID:   "mtn-sme-1gb",
		Amount:   "abc",
	}
	res, err := e.ResolveAmount(req)
	require.NoError(t, err)
	assert.Equal(t, SourcePlan, res.Source)
	assert.Equal(t, 350, res.Charged)
}

func TestResolveAmount_Selection(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name  string
		req   *models.OrderRequest
		field string
	}{
		{
			name:  "missing plan",
			req:   &models.OrderRequest{Service: models.ServiceData, Provider: "mtn", Category: "sme"},
			field: "plan",
		},
		{
			name:  "plan from another category",
			req:   &models.OrderRequest{Service: models.ServiceData, Provider: "mtn", Category: "sme", PlanID: "mtn-gift-1gb"},
			field: "plan",
		},
		{
			name:  "unknown provider",
			req:   &models.OrderRequest{Service: models.ServiceData, Provider: "vodafone", Category: "sme", PlanID: "x"},
			field: "provider",
		},
		{
			name:  "unknown category",
			req:   &models.OrderRequest{Service: models.ServiceCable, Provider: "dstv", Category: "sme", PlanID: "x"},
			field: "category",
		},
		{
			name:  "negative months",
			req:   cableRequest("dstv-compact-monthly", -1),
			field: "duration",
		},
		{
			name:  "unknown service",
			req:   &models.OrderRequest{Service: "insurance"},
			field: "service",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ResolveAmount(tt.req)
			var ae *AmountError
			require.ErrorAs(t, err, &ae)
			assert.ErrorIs(t, err, utils.ErrInvalidSelection)
			assert.Equal(t, tt.field, ae.Field)
		})
	}
}

func TestResolveAmount_Durations(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name    string
		months  int
		charged int
		valid   bool
	}{
		{name: "default", months: 0, charged: 12500, valid: true},
		{name: "two months", months: 2, charged: 25000, valid: true},
		{name: "one year", months: 12, charged: 127500, valid: true},
		{name: "not offered", months: 4},
		{name: "past the longest duration", months: 24},
		{name: "huge", months: 1 << 61},
		{name: "negative", months: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := cableRequest("dstv-compact-monthly", tt.months)
			res, err := e.ResolveAmount(req)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.charged, res.Charged)
				assert.Empty(t, e.Validate(req))
				return
			}

			var ae *AmountError
			require.ErrorAs(t, err, &ae)
			assert.ErrorIs(t, err, utils.ErrInvalidSelection)
			assert.Equal(t, "duration", ae.Field)

			vr := e.Validate(req)
			require.Contains(t, vr, "duration")
			assert.Equal(t, utils.ErrInvalidSelection, vr["duration"].Code)

			_, err = e.BuildQuotation(req)
			assert.ErrorIs(t, err, utils.ErrInvalidSelection)
		})
	}
}

func TestValidate_Phone(t *testing.T) {
	e := newTestEngine(t)

	req := airtimeRequest("1000")
	req.Phone = "0801 234 5678"
	assert.Empty(t, e.Validate(req))

	req.Phone = "080123"
	res := e.Validate(req)
	require.Contains(t, res, "phoneNumber")
	assert.Equal(t, utils.ErrFormat, res["phoneNumber"].Code)
	assert.Equal(t, "Enter a valid 11-digit phone number", res["phoneNumber"].Message)

	req.Phone = ""
	res = e.Validate(req)
	require.Contains(t, res, "phoneNumber")
	assert.Equal(t, utils.ErrMissingField, res["phoneNumber"].Code)

	req.BypassPhone = true
	assert.Empty(t, e.Validate(req))
}

func TestRequirePhoneFor(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	rules := DefaultRules(testLimits)
	RequirePhoneFor(rules, models.ServiceAirtime, models.ServiceData, "insurance")
	e := New(c, rules)

	req := airtimeRequest("1000")
	req.Phone = ""
	req.BypassPhone = true
	res := e.Validate(req)
	require.Contains(t, res, "phoneNumber")
	assert.Equal(t, utils.ErrMissingField, res["phoneNumber"].Code)

	assert.NotContains(t, rules, models.ServiceType("insurance"))
	assert.True(t, DefaultRules(testLimits)[models.ServiceAirtime].AllowBypassPhone, "defaults untouched")
}

func TestValidate_BypassNotAllowedForCustomerPhone(t *testing.T) {
	e := newTestEngine(t)

	req := cableRequest("dstv-compact-monthly", 1)
	req.CustomerPhone = ""
	req.BypassPhone = true

	res := e.Validate(req)
	require.Contains(t, res, "customerPhone")
	assert.Equal(t, "Customer phone number is required", res["customerPhone"].Message)
}

func TestValidate_PIN(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		pin  string
		code error
	}{
		{pin: "1234"},
		{pin: "123456"},
		{pin: "123", code: utils.ErrFormat},
		{pin: "1234567", code: utils.ErrFormat},
		{pin: "12a4", code: utils.ErrFormat},
		{pin: "", code: utils.ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			req := airtimeRequest("1000")
			req.Credentials.PIN = tt.pin
			res := e.Validate(req)
			if tt.code == nil {
				assert.NotContains(t, res, "pin")
				return
			}
			require.Contains(t, res, "pin")
			assert.Equal(t, tt.code, res["pin"].Code)
			if tt.pin != "" {
				assert.NotContains(t, res["pin"].Message, tt.pin)
			}
		})
	}
}

func TestValidate_RecipientForShare(t *testing.T) {
	e := newTestEngine(t)

	req := airtimeRequest("1000")
	req.Category = "share"
	res := e.Validate(req)
	require.Contains(t, res, "recipientPhone")
	assert.Equal(t, "Recipient phone number is required", res["recipientPhone"].Message)

	req.RecipientPhone = "0803"
	res = e.Validate(req)
	assert.Equal(t, "Enter a valid 11-digit recipient number", res["recipientPhone"].Message)

	req.RecipientPhone = "08031234567"
	assert.Empty(t, e.Validate(req))
}

func TestValidate_WalletCard(t *testing.T) {
	e := newTestEngine(t)

	req := walletRequest("5000")
	req.PaymentMethod = models.PaymentCard
	res := e.Validate(req)
	assert.Equal(t, "Card number is required", res["cardNumber"].Message)
	assert.Equal(t, "Expiry date is required", res["cardExpiry"].Message)
	assert.Equal(t, "CVV is required", res["cardCVV"].Message)

	req.Credentials.CardNumber = "4111 1111 1111 1111"
	req.Credentials.CardExpiry = "1/26"
	req.Credentials.CardCVV = "12"
	res = e.Validate(req)
	assert.NotContains(t, res, "cardNumber")
	assert.Equal(t, "Format: MM/YY", res["cardExpiry"].Message)
	assert.Equal(t, "Enter a valid CVV (3-4 digits)", res["cardCVV"].Message)

	// expired dates pass: the check is format only
	req.Credentials.CardExpiry = "01/20"
	req.Credentials.CardCVV = "123"
	assert.Empty(t, e.Validate(req))
}

func TestValidate_WalletAccountNumber(t *testing.T) {
	e := newTestEngine(t)

	for _, method := range []models.PaymentMethod{models.PaymentBank, models.PaymentTransfer} {
		req := walletRequest("5000")
		req.PaymentMethod = method
		res := e.Validate(req)
		assert.Equal(t, "Account number is required", res["accountNumber"].Message, method)

		req.AccountNumber = "12345"
		res = e.Validate(req)
		assert.Equal(t, "Enter a valid 10-digit account number", res["accountNumber"].Message, method)

		req.AccountNumber = "01234 56789"
		assert.Empty(t, e.Validate(req), method)
	}

	req := walletRequest("5000")
	req.PaymentMethod = "crypto"
	res := e.Validate(req)
	assert.Equal(t, utils.ErrInvalidSelection, res["paymentMethod"].Code)
}

func TestValidate_Cable(t *testing.T) {
	e := newTestEngine(t)

	req := cableRequest("dstv-compact-monthly", 6)
	assert.Empty(t, e.Validate(req))

	req.SmartCardNumber = "123"
	req.CustomerName = "   "
	res := e.Validate(req)
	assert.Equal(t, "Enter a valid 10-14 digit number", res["smartCardNumber"].Message)
	assert.Equal(t, "Customer name is required", res["customerName"].Message)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	e := newTestEngine(t)

	req := &models.OrderRequest{
		Service:  models.ServiceAirtime,
		Provider: "mtn",
		Category: "share",
	}
	res := e.Validate(req)
	assert.Len(t, res, 4)
	for _, field := range []string{"amount", "phoneNumber", "recipientPhone", "pin"} {
		assert.Contains(t, res, field)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	e := newTestEngine(t)

	req := airtimeRequest("abc")
	req.Phone = "080"
	first := e.Validate(req)
	second := e.Validate(req)
	assert.Equal(t, first, second)
}

func TestValidate_UnknownService(t *testing.T) {
	e := newTestEngine(t)

	res := e.Validate(&models.OrderRequest{Service: "insurance"})
	require.Contains(t, res, "service")
	assert.Equal(t, utils.ErrInvalidSelection, res["service"].Code)
}

func TestValidationResult_JSON(t *testing.T) {
	res := ValidationResult{}
	res.add("pin", utils.ErrMissingField, "Transaction PIN is required")

	b, err := res["pin"].MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"MISSING_FIELD","message":"Transaction PIN is required"}`, string(b))
	assert.Equal(t, map[string]string{"pin": "Transaction PIN is required"}, res.Messages())
}
