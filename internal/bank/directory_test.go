package bank

import "testing"

func TestDirectory_Accounts(t *testing.T) {
	dir := NewDirectory()

	accounts := dir.Accounts()
	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(accounts))
	}
	if accounts[0].ID != "sbi-001" || accounts[0].BalanceMinor != 2_564_050 {
		t.Fatalf("unexpected first account: %+v", accounts[0])
	}

	acct, ok := dir.Account("hdfc-002")
	if !ok {
		t.Fatal("expected hdfc-002 to exist")
	}
	if acct.Number != "****5678" {
		t.Fatalf("unexpected account number %q", acct.Number)
	}

	if _, ok := dir.Account("nope"); ok {
		t.Fatal("expected lookup miss for unknown ID")
	}
}

func TestDirectory_ReturnsCopies(t *testing.T) {
	dir := NewDirectory()

	accounts := dir.Accounts()
	accounts[0].BalanceMinor = 0

	again := dir.Accounts()
	if again[0].BalanceMinor != 2_564_050 {
		t.Fatal("mutating a returned slice leaked into the directory")
	}
}

func TestDirectory_RecentTransactions(t *testing.T) {
	dir := NewDirectory()

	txns := dir.RecentTransactions("sbi-001")
	if len(txns) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txns))
	}
	if txns[0].Kind != "credit" || txns[0].AmountMinor != 550_000 {
		t.Fatalf("unexpected first transaction: %+v", txns[0])
	}

	if got := dir.RecentTransactions("nope"); len(got) != 0 {
		t.Fatalf("expected no transactions for unknown account, got %d", len(got))
	}
}

func TestDirectory_AlertsAndLanguages(t *testing.T) {
	dir := NewDirectory()

	alerts := dir.Alerts()
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	if alerts[0].ID != "alert-001" || alerts[0].Severity != "high" {
		t.Fatalf("unexpected first alert: %+v", alerts[0])
	}

	langs := dir.Languages()
	if len(langs) != 3 {
		t.Fatalf("expected 3 languages, got %d", len(langs))
	}
	if langs[0].Code != "en" {
		t.Fatalf("unexpected first language %q", langs[0].Code)
	}
}
