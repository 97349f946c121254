// Package bank provides the simulated banking backend: a fixed in-memory
// directory of mock data and a gateway of delay-then-resolve operations
// standing in for server round-trips.
package bank

import "github.com/rpatil/bankflow/pkg/api"

// Directory serves the hard-coded mock state: linked accounts, recent
// activity, fraud alerts, and the login language list. All lookups are
// read-only and deterministic.
type Directory struct {
	accounts  []api.Account
	recent    map[string][]api.Transaction
	alerts    []api.FraudAlert
	languages []api.Language
}

// NewDirectory returns the reference mock data set.
func NewDirectory() *Directory {
	accounts := []api.Account{
		{
			ID:             "sbi-001",
			BankName:       "State Bank of India",
			Number:         "****1234",
			Type:           "Savings",
			BalanceMinor:   2_564_050,
			AvailableMinor: 2_514_050,
		},
		{
			ID:             "hdfc-002",
			BankName:       "HDFC Bank",
			Number:         "****5678",
			Type:           "Current",
			BalanceMinor:   11_289_075,
			AvailableMinor: 11_289_075,
		},
		{
			ID:             "icici-003",
			BankName:       "ICICI Bank",
			Number:         "****9012",
			Type:           "Savings",
			BalanceMinor:   4_523_020,
			AvailableMinor: 4_523_020,
		},
	}

	recent := []api.Transaction{
		{ID: "txn-1", Kind: "credit", AmountMinor: 550_000, Description: "Salary Credit", When: "Today, 10:30 AM"},
		{ID: "txn-2", Kind: "debit", AmountMinor: 85_000, Description: "ATM Withdrawal", When: "Yesterday, 3:45 PM"},
		{ID: "txn-3", Kind: "debit", AmountMinor: 29_900, Description: "Online Payment", When: "2 days ago, 11:20 AM"},
	}
	recentByAccount := make(map[string][]api.Transaction, len(accounts))
	for _, a := range accounts {
		recentByAccount[a.ID] = recent
	}

	alerts := []api.FraudAlert{
		{
			ID:          "alert-001",
			Type:        "suspicious_login",
			Title:       "Suspicious Login Attempt",
			Description: "Login attempt from new device detected",
			Location:    "Mumbai, Maharashtra",
			When:        "2 hours ago",
			Severity:    "high",
			Status:      "active",
			Details: map[string]string{
				"device":    "Unknown Android Device",
				"ipAddress": "103.xx.xx.xx",
				"timestamp": "Today, 12:30 PM",
				"action":    "Login attempt blocked automatically",
			},
		},
		{
			ID:          "alert-002",
			Type:        "unusual_transaction",
			Title:       "Unusual Transaction Pattern",
			Description: "Multiple small transactions detected",
			Location:    "Online",
			When:        "1 day ago",
			Severity:    "medium",
			Status:      "reviewed",
			Details: map[string]string{
				"transactionCount": "5 transactions",
				"totalAmount":      "₹2,450",
				"timeframe":        "Within 30 minutes",
				"action":           "Transactions were legitimate - No action needed",
			},
		},
		{
			ID:          "alert-003",
			Type:        "phishing_attempt",
			Title:       "Phishing Attempt Blocked",
			Description: "Fake banking website blocked",
			Location:    "Web Browser",
			When:        "3 days ago",
			Severity:    "high",
			Status:      "resolved",
			Details: map[string]string{
				"website":   "fake-bank-site.com",
				"browser":   "Chrome Mobile",
				"timestamp": "Monday, 9:15 AM",
				"action":    "Website blocked and reported to authorities",
			},
		},
	}

	languages := []api.Language{
		{Code: "en", Label: "English"},
		{Code: "hi", Label: "हिंदी (Hindi)"},
		{Code: "ta", Label: "தமிழ் (Tamil)"},
	}

	return &Directory{
		accounts:  accounts,
		recent:    recentByAccount,
		alerts:    alerts,
		languages: languages,
	}
}

// Accounts lists the mock accounts linked to the phone number.
func (d *Directory) Accounts() []api.Account {
	out := make([]api.Account, len(d.accounts))
	copy(out, d.accounts)
	return out
}

// Account looks up one account by ID.
func (d *Directory) Account(id string) (api.Account, bool) {
	for _, a := range d.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return api.Account{}, false
}

// RecentTransactions returns the mock recent activity for an account.
func (d *Directory) RecentTransactions(accountID string) []api.Transaction {
	txns := d.recent[accountID]
	out := make([]api.Transaction, len(txns))
	copy(out, txns)
	return out
}

// Alerts lists the mock fraud alerts.
func (d *Directory) Alerts() []api.FraudAlert {
	out := make([]api.FraudAlert, len(d.alerts))
	copy(out, d.alerts)
	return out
}

// Languages lists the login language options.
func (d *Directory) Languages() []api.Language {
	out := make([]api.Language, len(d.languages))
	copy(out, d.languages)
	return out
}
