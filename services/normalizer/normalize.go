// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalizer

import (
	"log/slog"
	"strings"
)

// =============================================================================
// Single-Customer Normalization
// =============================================================================

// accountCreationDate is a fixed placeholder until the agent supplies the
// real field.
const accountCreationDate = "2022-01-15"

// Normalize assembles the complete single-customer analysis view from
// resolved step-events.
//
// Description:
//
//	Orchestrates the extraction pipeline: report text parsing (profile,
//	risk score, risk factors), transaction building from the large-amount
//	function results, date-descending truncation to the 10 most recent,
//	derived location history, and the computed profile statistics. When
//	the report lists no risk factors, SynthesizeDefaultRiskFactors fills
//	in from transaction heuristics.
//
//	Degradation is layered. A report without an identity block but with
//	transaction data yields a default "Unknown Customer" profile so the
//	numbers still render. Only when nothing at all was extracted, or when
//	extraction panics on pathological input, is the whole result replaced
//	by FallbackResult. Normalize never returns an error and never returns
//	nil.
//
// Thread Safety: pure function, safe for concurrent use.
func Normalize(events []StepEvent, customerID string) (result *AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Recovered panic while normalizing analysis output",
				slog.Any("panic", r),
				slog.String("customer_id", customerID))
			fallbackTotal.Inc()
			result = FallbackResult(customerID)
		}
	}()

	reportText, hasReport := ReportText(events)
	if hasReport {
		reportText = CleanReportText(reportText)
	}

	var profile *ReportProfile
	var score *ReportRiskScore
	var factors []RiskFactor
	if hasReport {
		profile, _ = ParseReportProfile(reportText)
		score, _ = ParseReportRiskScore(reportText)
		factors = ParseRiskFactors(reportText)
	}

	rows := ExtractFunctionResults(events, FnLargeAmountTransactions)
	transactions := KeepRecent(BuildTransactions(rows, customerID))

	if len(factors) > 0 {
		riskFactorSource.WithLabelValues("report").Add(float64(len(factors)))
	} else {
		factors = SynthesizeDefaultRiskFactors(transactions)
		riskFactorSource.WithLabelValues("synthesized").Add(float64(len(factors)))
	}

	if profile == nil && len(transactions) == 0 && len(factors) == 0 {
		slog.Warn("Agent output carried no extractable analysis data",
			slog.String("customer_id", customerID),
			slog.Int("event_count", len(events)))
		fallbackTotal.Inc()
		return FallbackResult(customerID)
	}

	return &AnalysisResult{
		Profile:      buildProfile(profile, score, transactions, customerID),
		Transactions: transactions,
		Locations:    DeriveLocationHistory(transactions),
		RiskFactors:  factors,
	}
}

// buildProfile merges the parsed report blocks with statistics computed from
// the kept transaction set. A nil report profile gets "Unknown Customer"
// identity defaults; a nil score block gets zero scores and the default
// threshold.
func buildProfile(rp *ReportProfile, score *ReportRiskScore, transactions []Transaction, customerID string) *CustomerProfile {
	p := &CustomerProfile{
		CustomerID:          customerID,
		CustomerName:        "Unknown Customer",
		Accounts:            []string{"N/A"},
		PrimaryLocation:     "Unknown",
		Email:               "N/A",
		Phone:               "N/A",
		RiskThreshold:       DefaultRiskThreshold,
		AccountCreationDate: accountCreationDate,
	}
	if rp != nil {
		p.CustomerID = rp.CustomerID
		p.CustomerName = rp.CustomerName
		p.PrimaryLocation = rp.PrimaryLocation
		p.Contact = rp.Contact
		p.Email = rp.Email
		p.Phone = rp.Phone
		if len(rp.Accounts) > 0 {
			p.Accounts = rp.Accounts
		}
	}
	if score != nil {
		p.RiskScore = score.Current
		p.PreviousRiskScore = score.Previous
		p.RiskThreshold = score.Threshold
	}

	p.TotalTransactions = len(transactions)
	p.AverageTransactionAmount = AverageAmount(transactions)
	p.LastActivity = "N/A"
	if len(transactions) > 0 {
		p.LastActivity = dateOnly(transactions[0].Date)
	}
	return p
}

// dateOnly reduces a transaction date to its calendar day.
func dateOnly(date string) string {
	if t, ok := parseTxDate(date); ok {
		return t.Format("2006-01-02")
	}
	if i := strings.IndexAny(date, "T "); i > 0 {
		return date[:i]
	}
	return date
}

// FallbackResult is the sentinel record set rendered when analysis output
// could not be processed at all. It is deliberately shaped like a real
// result so the UI renders it without special cases.
func FallbackResult(customerID string) *AnalysisResult {
	return &AnalysisResult{
		Profile: &CustomerProfile{
			CustomerID:          customerID,
			CustomerName:        "Data Processing Error",
			Accounts:            []string{"Error"},
			PrimaryLocation:     "Unknown",
			Email:               "error@processing.data",
			Phone:               "N/A",
			RiskScore:           0,
			PreviousRiskScore:   0,
			RiskThreshold:       DefaultRiskThreshold,
			TotalTransactions:   0,
			LastActivity:        "N/A",
			AccountCreationDate: "N/A",
		},
		Transactions: []Transaction{},
		Locations:    []LocationActivity{},
		RiskFactors: []RiskFactor{{
			Factor:      "Data Processing Error",
			Severity:    SeverityHigh,
			Description: "Failed to process analysis response. Please try again or contact support.",
		}},
	}
}
