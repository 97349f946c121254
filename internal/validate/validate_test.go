package validate

import (
	"strings"
	"testing"

	"github.com/rpatil/bankflow/pkg/api"
)

func TestNormalizeField_MaskedDigits(t *testing.T) {
	cases := []struct {
		field string
		raw   string
		want  string
	}{
		{api.FieldPhone, "98765 43210", "9876543210"},
		{api.FieldPhone, "+91-9876543210", "9198765432"},
		{api.FieldPhone, "abc", ""},
		{api.FieldOTP, "12 34 56 78", "123456"},
		{api.FieldOTP, "1a2b3c", "123"},
		{api.FieldPIN, "12345", "1234"},
		{api.FieldPIN, "**12**34**", "1234"},
		{api.FieldReceiverPhone, "(912) 345-6780", "9123456780"},
	}

	for _, c := range cases {
		if got := NormalizeField(c.field, c.raw); got != c.want {
			t.Fatalf("NormalizeField(%q, %q) = %q, want %q", c.field, c.raw, got, c.want)
		}
	}
}

func TestNormalizeField_PrefixProperty(t *testing.T) {
	// Typing one character at a time must never change what was already
	// accepted: each normalized result is a prefix of the next.
	raw := "+91 98x76-543210"
	prev := ""
	for i := 1; i <= len(raw); i++ {
		got := NormalizeField(api.FieldPhone, raw[:i])
		if !strings.HasPrefix(got, prev) {
			t.Fatalf("normalization not prefix-stable: %q then %q", prev, got)
		}
		prev = got
	}
}

func TestNormalizeField_Amount(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"100", "100"},
		{"₹100.50", "100.50"},
		{"1.2.3", "1.23"},
		{"abc", ""},
		{"000123456789", "000123456"},
	}

	for _, c := range cases {
		if got := NormalizeField(api.FieldAmount, c.raw); got != c.want {
			t.Fatalf("NormalizeField(amount, %q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestNormalizeField_ReceiverNameTrimmed(t *testing.T) {
	if got := NormalizeField(api.FieldReceiverName, "  Asha Rao  "); got != "Asha Rao" {
		t.Fatalf("expected trimmed name, got %q", got)
	}
}

func TestParseAmountMinor(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"100", 10_000, false},
		{"100.5", 10_050, false},
		{"100.50", 10_050, false},
		{"0.01", 1, false},
		{".50", 50, false},
		{"50000", 5_000_000, false},
		{"", 0, true},
		{".", 0, true},
		{"100.123", 0, true},
		{"12a", 0, true},
	}

	for _, c := range cases {
		got, err := ParseAmountMinor(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("ParseAmountMinor(%q): expected error, got %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseAmountMinor(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseAmountMinor(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFormatAmount_RoundTrip(t *testing.T) {
	for _, s := range []string{"1", "100", "100.50", "0.01", "50000"} {
		minor, err := ParseAmountMinor(s)
		if err != nil {
			t.Fatalf("ParseAmountMinor(%q) failed: %v", s, err)
		}
		if got := FormatAmount(minor); got != s {
			t.Fatalf("FormatAmount(ParseAmountMinor(%q)) = %q", s, got)
		}
	}
}

func TestStep_Login(t *testing.T) {
	form := map[string]string{}

	verr := Step(api.StepLogin, form)
	if verr == nil || verr.Field != api.FieldLanguage {
		t.Fatalf("expected language error, got %v", verr)
	}

	form[api.FieldLanguage] = "en"
	form[api.FieldPhone] = "987654321"
	verr = Step(api.StepLogin, form)
	if verr == nil || verr.Field != api.FieldPhone {
		t.Fatalf("expected phone error, got %v", verr)
	}

	form[api.FieldPhone] = "9876543210"
	if verr = Step(api.StepLogin, form); verr != nil {
		t.Fatalf("expected valid login form, got %v", verr)
	}
}

func TestStep_OTPAndPINLengths(t *testing.T) {
	if verr := Step(api.StepOTPEntry, map[string]string{api.FieldOTP: "12345"}); verr == nil {
		t.Fatal("expected error for 5-digit OTP")
	}
	if verr := Step(api.StepOTPEntry, map[string]string{api.FieldOTP: "123456"}); verr != nil {
		t.Fatalf("expected valid OTP, got %v", verr)
	}
	if verr := Step(api.StepPINEntry, map[string]string{api.FieldPIN: "123"}); verr == nil {
		t.Fatal("expected error for 3-digit PIN")
	}
	if verr := Step(api.StepPINEntry, map[string]string{api.FieldPIN: "0000"}); verr != nil {
		t.Fatalf("PIN validation checks shape only, got %v", verr)
	}
}

func TestStep_MainMenuServiceMembership(t *testing.T) {
	for _, svc := range []string{api.ServiceCheckBalance, api.ServiceSendMoney, api.ServiceFraudAlert} {
		if verr := Step(api.StepMainMenu, map[string]string{api.FieldService: svc}); verr != nil {
			t.Fatalf("service %q rejected: %v", svc, verr)
		}
	}
	if verr := Step(api.StepMainMenu, map[string]string{api.FieldService: "loans"}); verr == nil {
		t.Fatal("expected error for unknown service")
	}
}

func TestStep_SendMoneyDetails(t *testing.T) {
	form := map[string]string{
		api.FieldReceiverName:  "Asha Rao",
		api.FieldReceiverPhone: "9123456780",
		api.FieldAmount:        "100",
	}
	if verr := Step(api.StepSendMoneyDetails, form); verr != nil {
		t.Fatalf("expected valid details, got %v", verr)
	}

	// The ceiling is inclusive; one paisa above it is rejected.
	form[api.FieldAmount] = "50000"
	if verr := Step(api.StepSendMoneyDetails, form); verr != nil {
		t.Fatalf("₹50,000 should be accepted, got %v", verr)
	}
	form[api.FieldAmount] = "50000.01"
	if verr := Step(api.StepSendMoneyDetails, form); verr == nil || verr.Field != api.FieldAmount {
		t.Fatalf("expected amount error above ceiling, got %v", verr)
	}

	form[api.FieldAmount] = "0"
	if verr := Step(api.StepSendMoneyDetails, form); verr == nil || verr.Field != api.FieldAmount {
		t.Fatalf("expected amount error for zero, got %v", verr)
	}

	form[api.FieldAmount] = "100"
	form[api.FieldReceiverName] = ""
	if verr := Step(api.StepSendMoneyDetails, form); verr == nil || verr.Field != api.FieldReceiverName {
		t.Fatalf("expected receiver name error, got %v", verr)
	}
}

func TestStep_SendMoneyCompleteNext(t *testing.T) {
	if verr := Step(api.StepSendMoneyComplete, map[string]string{api.FieldNext: api.NextAnotherTransfer}); verr != nil {
		t.Fatalf("expected valid next, got %v", verr)
	}
	if verr := Step(api.StepSendMoneyComplete, map[string]string{api.FieldNext: "exit"}); verr == nil {
		t.Fatal("expected error for unknown next action")
	}
}
