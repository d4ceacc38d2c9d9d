// Package fixtures embeds the mock collaborator seed data and the catalogue of
// reconciliation scenarios that exercise it.
package fixtures

import (
	_ "embed"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"payrecon/internal/decision"
	"payrecon/internal/directory"
	"payrecon/internal/ledger"
)

var (
	//go:embed seed.yaml
	seedYAML []byte

	//go:embed scenarios.yaml
	scenariosYAML []byte
)

// Seed is the initial state of the mock CRM and ERP.
type Seed struct {
	Customers []CustomerSeed `yaml:"customers"`
	Invoices  []InvoiceSeed  `yaml:"invoices"`
}

type CustomerSeed struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Email          string `yaml:"email"`
	Phone          string `yaml:"phone"`
	AccountNumber  string `yaml:"account_number"`
	Status         string `yaml:"status"`
	CreditLimit    string `yaml:"credit_limit"`
	CurrentBalance string `yaml:"current_balance"`
	CreatedDate    string `yaml:"created_date"`
}

type InvoiceSeed struct {
	ID              string         `yaml:"id"`
	CustomerAccount string         `yaml:"customer_account"`
	Amount          string         `yaml:"amount"`
	PaidAmount      string         `yaml:"paid_amount"`
	Status          string         `yaml:"status"`
	DueDate         string         `yaml:"due_date"`
	IssueDate       string         `yaml:"issue_date"`
	Description     string         `yaml:"description"`
	PaymentTerms    string         `yaml:"payment_terms"`
	LineItems       []LineItemSeed `yaml:"line_items"`
}

type LineItemSeed struct {
	Product   string `yaml:"product"`
	Quantity  int    `yaml:"quantity"`
	UnitPrice string `yaml:"unit_price"`
}

// LoadSeed parses the embedded seed.
func LoadSeed() (*Seed, error) {
	return ParseSeed(seedYAML)
}

// ParseSeed parses seed data in the embedded format.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &seed, nil
}

// DirectoryCustomers converts the seed into CRM records.
func (s *Seed) DirectoryCustomers() ([]*directory.Customer, error) {
	out := make([]*directory.Customer, 0, len(s.Customers))
	for _, c := range s.Customers {
		status, err := directory.ParseStatus(c.Status)
		if err != nil {
			return nil, fmt.Errorf("customer %s: %w", c.ID, err)
		}
		limit, err := parseAmount(c.CreditLimit)
		if err != nil {
			return nil, fmt.Errorf("customer %s credit_limit: %w", c.ID, err)
		}
		balance, err := parseAmount(c.CurrentBalance)
		if err != nil {
			return nil, fmt.Errorf("customer %s current_balance: %w", c.ID, err)
		}
		created, err := parseDate(c.CreatedDate)
		if err != nil {
			return nil, fmt.Errorf("customer %s created_date: %w", c.ID, err)
		}
		out = append(out, &directory.Customer{
			ID:             c.ID,
			Name:           c.Name,
			Email:          c.Email,
			Phone:          c.Phone,
			AccountNumber:  c.AccountNumber,
			Status:         status,
			CreditLimit:    limit,
			CurrentBalance: balance,
			CreatedDate:    created,
		})
	}
	return out, nil
}

// LedgerInvoices converts the seed into ERP records.
func (s *Seed) LedgerInvoices() ([]*ledger.Invoice, error) {
	out := make([]*ledger.Invoice, 0, len(s.Invoices))
	for _, in := range s.Invoices {
		inv, err := in.invoice()
		if err != nil {
			return nil, fmt.Errorf("invoice %s: %w", in.ID, err)
		}
		out = append(out, inv)
	}
	return out, nil
}

func (in InvoiceSeed) invoice() (*ledger.Invoice, error) {
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	paid, err := parseAmount(in.PaidAmount)
	if err != nil {
		return nil, fmt.Errorf("paid_amount: %w", err)
	}
	var status ledger.Status
	if in.Status != "" {
		if status, err = ledger.ParseStatus(in.Status); err != nil {
			return nil, err
		}
	}
	due, err := parseDate(in.DueDate)
	if err != nil {
		return nil, fmt.Errorf("due_date: %w", err)
	}
	issued, err := parseDate(in.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("issue_date: %w", err)
	}

	items := make([]ledger.LineItem, 0, len(in.LineItems))
	for _, li := range in.LineItems {
		price, err := parseAmount(li.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("line item %q: %w", li.Product, err)
		}
		items = append(items, ledger.LineItem{Product: li.Product, Quantity: li.Quantity, UnitPrice: price})
	}

	return &ledger.Invoice{
		ID:              in.ID,
		CustomerAccount: in.CustomerAccount,
		Amount:          amount,
		PaidAmount:      paid,
		Status:          status,
		DueDate:         due,
		IssueDate:       issued,
		Description:     in.Description,
		PaymentTerms:    in.PaymentTerms,
		LineItems:       items,
	}, nil
}

// Scenario is a transaction paired with the outcome it must produce against
// the embedded seed.
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Transaction TransactionSeed `yaml:"transaction"`
	Expected    Expectation     `yaml:"expected"`
}

type TransactionSeed struct {
	TransactionID     string `yaml:"transaction_id"`
	AccountNumber     string `yaml:"account_number"`
	Amount            string `yaml:"amount"`
	Reference         string `yaml:"reference"`
	Timestamp         string `yaml:"timestamp"`
	Method            string `yaml:"method"`
	ExternalReference string `yaml:"external_reference"`
	Description       string `yaml:"description"`
}

// Expectation describes the outcome a scenario must yield. Empty fields are
// not checked, except Notification, where empty means no notification.
type Expectation struct {
	Action       string   `yaml:"action"`
	Reasons      []string `yaml:"reasons"`
	AuditReasons []string `yaml:"audit_reasons"`
	Notification string   `yaml:"notification"`
	Credit       string   `yaml:"credit"`
}

// LoadScenarios parses the embedded scenario catalogue.
func LoadScenarios() ([]Scenario, error) {
	var scenarios []Scenario
	if err := yaml.Unmarshal(scenariosYAML, &scenarios); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	return scenarios, nil
}

// FindScenario returns the named scenario from the embedded catalogue.
func FindScenario(name string) (Scenario, error) {
	scenarios, err := LoadScenarios()
	if err != nil {
		return Scenario{}, err
	}
	for _, s := range scenarios {
		if s.Name == name {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("unknown scenario %q", name)
}

// ToTransaction builds the domain transaction for the scenario.
func (t TransactionSeed) ToTransaction() (decision.Transaction, error) {
	amount, err := decimal.NewFromString(t.Amount)
	if err != nil {
		return decision.Transaction{}, fmt.Errorf("transaction %s amount: %w", t.TransactionID, err)
	}
	var ts time.Time
	if t.Timestamp != "" {
		if ts, err = time.Parse(time.RFC3339, t.Timestamp); err != nil {
			return decision.Transaction{}, fmt.Errorf("transaction %s timestamp: %w", t.TransactionID, err)
		}
	}
	return decision.Transaction{
		ID:                t.TransactionID,
		AccountReference:  t.AccountNumber,
		Amount:            amount,
		InvoiceReference:  t.Reference,
		Timestamp:         ts,
		Method:            t.Method,
		ExternalReference: t.ExternalReference,
		Description:       t.Description,
	}, nil
}

// Mismatches lists the ways outcome departs from the expectation. An empty
// result means the scenario passed.
func (e Expectation) Mismatches(outcome *decision.Outcome) []string {
	var out []string
	if e.Action != "" && string(outcome.Action()) != e.Action {
		out = append(out, fmt.Sprintf("action: want %s, got %s", e.Action, outcome.Action()))
	}
	if e.Reasons != nil {
		if got := reasonStrings(outcome.Reasons()); !slices.Equal(got, e.Reasons) {
			out = append(out, fmt.Sprintf("reasons: want %v, got %v", e.Reasons, got))
		}
	}
	if e.AuditReasons != nil {
		if got := reasonStrings(outcome.AuditReasons()); !slices.Equal(got, e.AuditReasons) {
			out = append(out, fmt.Sprintf("audit reasons: want %v, got %v", e.AuditReasons, got))
		}
	}

	got := ""
	if n := outcome.Notification(); n != nil {
		got = n.TemplateID
	}
	if got != e.Notification {
		out = append(out, fmt.Sprintf("notification: want %q, got %q", e.Notification, got))
	}

	if e.Credit != "" {
		want, err := decimal.NewFromString(e.Credit)
		if err != nil {
			return append(out, fmt.Sprintf("credit: bad expectation %q", e.Credit))
		}
		credit := decimal.Zero
		for _, line := range outcome.Allocation() {
			if line.IsCredit() {
				credit = credit.Add(line.Amount)
			}
		}
		if !credit.Equal(want) {
			out = append(out, fmt.Sprintf("credit: want %s, got %s", want.StringFixed(2), credit.StringFixed(2)))
		}
	}
	return out
}

func reasonStrings(reasons []decision.Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}
