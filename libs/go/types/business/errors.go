package business

import (
	"fmt"
	"strings"
)

// ValidationErrors is the collected list of user-correctable input
// violations. The whole list is returned at once so callers can display
// every violation together.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(v, "; ")
}

// HasErrors reports whether any violation was collected
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// UnknownJurisdictionError indicates a jurisdiction code with no active
// policy. Unknown codes fail closed; no default policy is substituted.
type UnknownJurisdictionError struct {
	Code string
}

func (e *UnknownJurisdictionError) Error() string {
	return fmt.Sprintf("unknown jurisdiction code: %q", e.Code)
}

// MissingTermsError indicates a finance or lease deal submitted without
// the terms its deal type requires. This is a caller-contract defect,
// not a validation warning.
type MissingTermsError struct {
	DealType DealType
}

func (e *MissingTermsError) Error() string {
	return fmt.Sprintf("deal type %q requires terms that were not provided", e.DealType)
}

// RuleConfigError indicates a broken policy configuration, e.g. a fee
// code with no taxability entry and no category default.
type RuleConfigError struct {
	Detail string
}

func (e *RuleConfigError) Error() string {
	return "rule configuration error: " + e.Detail
}
