package decision

import (
	"time"

	"github.com/shopspring/decimal"

	"payrecon/internal/decision/ports"
)

var (
	decidedAt = time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

	acme = ports.Customer{
		ID:               "cust_001",
		Name:             "Acme Corporation",
		Email:            "contact@acme.com",
		AccountReference: "ACC-789123456",
		Status:           ports.CustomerActive,
		CreditLimit:      dec("50000"),
		CurrentBalance:   dec("12500"),
	}
	techSolutions = ports.Customer{
		ID:               "cust_002",
		Name:             "Tech Solutions Ltd",
		Email:            "billing@techsolutions.com",
		AccountReference: "ACC-456789123",
		Status:           ports.CustomerActive,
		CreditLimit:      dec("25000"),
		CurrentBalance:   dec("8750"),
	}
	globalManufacturing = ports.Customer{
		ID:               "cust_003",
		Name:             "Global Manufacturing Inc",
		Email:            "accounts@globalmanuf.com",
		AccountReference: "ACC-123456789",
		Status:           ports.CustomerSuspended,
		CreditLimit:      dec("75000"),
		CurrentBalance:   dec("45000"),
	}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func invoice(id, account, due string, dueDate string, status ports.InvoiceStatus) ports.Invoice {
	return ports.Invoice{
		ID:               id,
		AccountReference: account,
		Amount:           dec(due),
		AmountDue:        dec(due),
		Status:           status,
		DueDate:          day(dueDate),
		IssueDate:        day(dueDate).AddDate(0, -1, 0),
	}
}

func inv001() ports.Invoice {
	return invoice("INV-2025-001", "ACC-789123456", "12500", "2025-07-15", ports.InvoicePending)
}

func inv002() ports.Invoice {
	return invoice("INV-2025-002", "ACC-456789123", "8750", "2025-05-30", ports.InvoiceOverdue)
}

func inv003() ports.Invoice {
	return invoice("INV-2025-003", "ACC-123456789", "45000", "2025-06-30", ports.InvoicePending)
}

func txn(id, account, amount, invoiceRef string) Transaction {
	return Transaction{
		ID:               id,
		AccountReference: account,
		Amount:           dec(amount),
		InvoiceReference: invoiceRef,
		Timestamp:        decidedAt.Add(-time.Hour),
		Method:           "bank_transfer",
	}
}

// evidenceFor ranks invoices for txn the way the matcher does.
func evidenceFor(t Transaction, customer ports.Customer, invoices ...ports.Invoice) *Evidence {
	c := customer
	return &Evidence{
		Customer:   &c,
		Candidates: RankCandidates(t, invoices, DefaultConfig()),
	}
}

func invoiceIDs(lines []AllocationLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if l.InvoiceID == nil {
			out[i] = "<credit>"
			continue
		}
		out[i] = *l.InvoiceID
	}
	return out
}
