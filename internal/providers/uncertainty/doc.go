// Package uncertainty exposes measured values, measurement series and
// uncertainty budgets as service tools.
//
// Series and budgets live in a Workspace between calls and are addressed
// by prefixed ULIDs (series_..., budget_...). Measured values are passed
// inline as {value, uncertainty, unit, confidence} objects.
package uncertainty
