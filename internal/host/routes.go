package host

import "github.com/rpatil/bankflow/pkg/api"

// Display paths per step, matching the reference client's routing table.
// Purely a presentation concern: the engine never sees paths.
var stepToPath = map[api.StepID]string{
	api.StepLogin:             "/",
	api.StepOTPEntry:          "/",
	api.StepAccountSelection:  "/account-selection",
	api.StepPINEntry:          "/pin-confirmation",
	api.StepMainMenu:          "/main-options",
	api.StepCheckBalance:      "/check-balance",
	api.StepSendMoneyDetails:  "/send-money",
	api.StepSendMoneyConfirm:  "/send-money",
	api.StepSendMoneyComplete: "/send-money",
	api.StepFraudAlert:        "/fraud-alert",
}

var pathToStep = map[string]api.StepID{
	"/":                  api.StepLogin,
	"/account-selection": api.StepAccountSelection,
	"/pin-confirmation":  api.StepPINEntry,
	"/main-options":      api.StepMainMenu,
	"/check-balance":     api.StepCheckBalance,
	"/send-money":        api.StepSendMoneyDetails,
	"/fraud-alert":       api.StepFraudAlert,
}

// PathFor returns the display path for a step. Terminal steps and unknown
// steps fall through to the catch-all.
func PathFor(step api.StepID) string {
	if p, ok := stepToPath[step]; ok {
		return p
	}
	return "*"
}

// StepFor resolves a display path to its step. The second result is false
// for paths outside the routing table, which the host turns into a
// NotFound navigation.
func StepFor(path string) (api.StepID, bool) {
	step, ok := pathToStep[path]
	return step, ok
}
