package e2e

import (
	"github.com/cucumber/godog"

	"payrecon/e2e/steps/common"
	"payrecon/e2e/steps/reconcile"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (server availability, status and field assertions)
	common.RegisterSteps(ctx, tc)

	// Register reconciliation-specific steps
	reconcile.RegisterSteps(ctx, tc)
}
