package models

import "errors"

var (
	errPlanValidatedWithoutPlan               = errors.New("planValidated is set without a plan")
	errExecutionWithoutValidatedPlan          = errors.New("executionResult is set without a validated plan")
	errVerificationWithoutSuccessfulExecution = errors.New("verificationResult is set without a fully successful execution")
)
