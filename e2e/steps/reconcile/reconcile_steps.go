package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string) error
	GetResponseField(field string) (interface{}, error)
}

// RegisterSteps registers reconciliation step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &reconcileSteps{tc: tc}

	ctx.Step(`^transaction "([^"]*)" pays "([^"]*)" from account "([^"]*)" quoting "([^"]*)"$`, steps.decide)
	ctx.Step(`^the action should be "([^"]*)"$`, steps.actionShouldBe)
	ctx.Step(`^the reasons should be "([^"]*)"$`, steps.reasonsShouldBe)
	ctx.Step(`^the audit reasons should be "([^"]*)"$`, steps.auditReasonsShouldBe)
	ctx.Step(`^the notification should be "([^"]*)"$`, steps.notificationShouldBe)
	ctx.Step(`^the decision for "([^"]*)" can be looked up$`, steps.lookup)
}

type reconcileSteps struct {
	tc TestContext
}

func (s *reconcileSteps) decide(_ context.Context, txnID, amount, account, reference string) error {
	body := map[string]interface{}{
		"transaction_id": txnID,
		"account_number": account,
		"amount":         amount,
	}
	if reference != "" {
		body["reference"] = reference
	}
	return s.tc.POST("/reconcile/decide", body)
}

func (s *reconcileSteps) actionShouldBe(_ context.Context, want string) error {
	got, err := s.tc.GetResponseField("action")
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected action %q, got %v", want, got)
	}
	return nil
}

func (s *reconcileSteps) reasonsShouldBe(_ context.Context, want string) error {
	return s.listShouldBe("reasons", want)
}

func (s *reconcileSteps) auditReasonsShouldBe(_ context.Context, want string) error {
	return s.listShouldBe("audit_reasons", want)
}

// notificationShouldBe accepts "none" for outcomes that notify nobody.
func (s *reconcileSteps) notificationShouldBe(_ context.Context, want string) error {
	got, err := s.tc.GetResponseField("notification")
	if err != nil {
		return err
	}
	if want == "none" {
		if got != nil {
			return fmt.Errorf("expected no notification, got %v", got)
		}
		return nil
	}
	template, err := s.tc.GetResponseField("notification.template_id")
	if err != nil {
		return err
	}
	if template != want {
		return fmt.Errorf("expected notification %q, got %v", want, template)
	}
	return nil
}

func (s *reconcileSteps) lookup(_ context.Context, txnID string) error {
	if err := s.tc.GET("/reconcile/decisions/" + txnID); err != nil {
		return err
	}
	got, err := s.tc.GetResponseField("transaction_id")
	if err != nil {
		return err
	}
	if got != txnID {
		return fmt.Errorf("expected record for %s, got %v", txnID, got)
	}
	return nil
}

func (s *reconcileSteps) listShouldBe(field, want string) error {
	got, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	items, _ := got.([]interface{})
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprint(item)
	}
	if joined := strings.Join(parts, ","); joined != want {
		return fmt.Errorf("expected %s %q, got %q", field, want, joined)
	}
	return nil
}
