// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

import "github.com/KodiakSystems/KodiakAML/services/normalizer"

// Source values for dashboard result sets.
const (
	SourceLive   = "live"
	SourceSample = "sample"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeValidationError       = "VALIDATION_ERROR"
	CodeSessionCreationFailed = "SESSION_CREATION_FAILED"
	CodeAnalysisRequestFailed = "ANALYSIS_REQUEST_FAILED"
	CodeAnalysisTimeout       = "ANALYSIS_TIMEOUT"
	CodeInternalError         = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON error body. Retryable hints the UI whether a
// retry button makes sense.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
}

// AnalyzeRequest is the body of POST /v1/aml/customers/analyze.
type AnalyzeRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
}

// DashboardResponse is the body of GET /v1/aml/dashboard. Sources maps each
// result-set name (highRiskCustomers, multipleLocations, largeTransactions,
// frequentTransactions) to live or sample, so the UI can badge stale data.
type DashboardResponse struct {
	HighRiskCustomers    []normalizer.CustomerSummary   `json:"highRiskCustomers"`
	MultipleLocations    []normalizer.LocationSpan      `json:"multipleLocations"`
	LargeTransactions    []normalizer.LargeTxSummary    `json:"largeTransactions"`
	FrequentTransactions []normalizer.FrequentTxSummary `json:"frequentTransactions"`
	Sources              map[string]string              `json:"sources"`
	Generation           uint64                         `json:"generation"`
}
