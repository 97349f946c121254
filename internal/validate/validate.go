// Package validate holds the pure per-step form validators and the input
// normalizers applied by the engine's UpdateField.
package validate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rpatil/bankflow/pkg/api"
)

// MaxTransferMinor is the per-transfer ceiling in minor units (₹50,000).
const MaxTransferMinor int64 = 5_000_000

// Field length caps applied during normalization.
const (
	phoneLen  = 10
	otpLen    = 6
	pinLen    = 4
	amountLen = 9
)

// NormalizeField filters raw input for the given field. Masked numeric
// fields keep only digits, capped at their fixed length; amounts keep
// digits and the first decimal point. The result is always storable:
// normalization never fails.
func NormalizeField(field, raw string) string {
	switch field {
	case api.FieldPhone, api.FieldReceiverPhone:
		return Digits(raw, phoneLen)
	case api.FieldOTP:
		return Digits(raw, otpLen)
	case api.FieldPIN:
		return Digits(raw, pinLen)
	case api.FieldAmount:
		return amountChars(raw, amountLen)
	case api.FieldReceiverName:
		return strings.TrimSpace(raw)
	default:
		return raw
	}
}

// Digits strips everything but ASCII digits from raw and caps the result
// at max characters. The result is always a prefix of the digits of raw.
func Digits(raw string, max int) string {
	var b strings.Builder
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == max {
			break
		}
	}
	return b.String()
}

func amountChars(raw string, max int) string {
	var b strings.Builder
	dot := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !dot:
			dot = true
			b.WriteRune(r)
		default:
			continue
		}
		if b.Len() >= max {
			break
		}
	}
	return b.String()
}

// ParseAmountMinor converts a decimal rupee string into minor units
// (paise). At most two decimal places are allowed.
func ParseAmountMinor(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("empty amount")
	}
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, errors.New("malformed amount")
	}
	if len(fracPart) > 2 {
		return 0, errors.New("more than two decimal places")
	}
	var minor int64
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return 0, errors.New("malformed amount")
		}
		minor = minor*10 + int64(r-'0')
	}
	minor *= 100
	scale := int64(10)
	for _, r := range fracPart {
		if r < '0' || r > '9' {
			return 0, errors.New("malformed amount")
		}
		minor += int64(r-'0') * scale
		scale /= 10
	}
	return minor, nil
}

// FormatAmount renders minor units back into the plain decimal string a
// user would have typed ("100", "100.50"). It is the inverse of
// ParseAmountMinor for canonical inputs.
func FormatAmount(minor int64) string {
	if minor%100 == 0 {
		return strconv.FormatInt(minor/100, 10)
	}
	return strconv.FormatInt(minor/100, 10) + "." + fmt.Sprintf("%02d", minor%100)
}

// Step applies the current step's validation rules to form. A nil return
// means the form is valid. Validators are pure: same input, same result,
// no side effects.
func Step(step api.StepID, form map[string]string) *api.ValidationError {
	switch step {
	case api.StepLogin:
		if form[api.FieldLanguage] == "" {
			return &api.ValidationError{Field: api.FieldLanguage, Reason: "select a language"}
		}
		if len(form[api.FieldPhone]) != phoneLen {
			return &api.ValidationError{Field: api.FieldPhone, Reason: "must be exactly 10 digits"}
		}
	case api.StepOTPEntry:
		if len(form[api.FieldOTP]) != otpLen {
			return &api.ValidationError{Field: api.FieldOTP, Reason: "must be exactly 6 digits"}
		}
	case api.StepAccountSelection:
		if form[api.FieldAccount] == "" {
			return &api.ValidationError{Field: api.FieldAccount, Reason: "select an account"}
		}
	case api.StepPINEntry:
		if len(form[api.FieldPIN]) != pinLen {
			return &api.ValidationError{Field: api.FieldPIN, Reason: "must be exactly 4 digits"}
		}
	case api.StepMainMenu:
		switch form[api.FieldService] {
		case api.ServiceCheckBalance, api.ServiceSendMoney, api.ServiceFraudAlert:
		default:
			return &api.ValidationError{Field: api.FieldService, Reason: "choose a service"}
		}
	case api.StepSendMoneyDetails:
		if form[api.FieldReceiverName] == "" {
			return &api.ValidationError{Field: api.FieldReceiverName, Reason: "recipient name is required"}
		}
		if len(form[api.FieldReceiverPhone]) != phoneLen {
			return &api.ValidationError{Field: api.FieldReceiverPhone, Reason: "must be exactly 10 digits"}
		}
		minor, err := ParseAmountMinor(form[api.FieldAmount])
		if err != nil || minor <= 0 || minor > MaxTransferMinor {
			return &api.ValidationError{Field: api.FieldAmount, Reason: "must be between ₹1 and ₹50,000"}
		}
	case api.StepSendMoneyComplete:
		switch form[api.FieldNext] {
		case api.NextAnotherTransfer, api.NextMainMenu:
		default:
			return &api.ValidationError{Field: api.FieldNext, Reason: "choose next action"}
		}
	}
	return nil
}
