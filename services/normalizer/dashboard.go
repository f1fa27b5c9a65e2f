// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalizer

import (
	"encoding/json"
	"log/slog"
)

// =============================================================================
// Dashboard Normalization
// =============================================================================

// Snake_case wire shapes of the four dashboard function results. Like txRow,
// numeric fields that some agent builds serialize as strings decode via
// RawMessage plus parseAmount.
type highRiskRow struct {
	CustomerID string          `json:"customer_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	RiskScore  json.RawMessage `json:"risk_score"`
}

type multiLocationRow struct {
	CustomerID    string `json:"customer_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	LocationCount int    `json:"location_count"`
}

type largeTxCountRow struct {
	CustomerID            string `json:"customer_id"`
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	LargeTransactionCount int    `json:"large_transaction_count"`
}

type frequentTxRow struct {
	CustomerID       string          `json:"customer_id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	SentTime         string          `json:"sent_time"`
	EndTime          string          `json:"end_time"`
	TransactionCount int             `json:"transaction_count"`
	TotalAmount      json.RawMessage `json:"total_amount"`
}

// NormalizeDashboard extracts the four dashboard result sets from resolved
// step-events.
//
// Description:
//
//	Each set is extracted independently from its own function's result
//	rows. A set whose function response is absent stays empty; callers
//	decide whether to substitute sample data per set. An undecodable row
//	is skipped with a warning and never poisons the rest of its set.
//
// Thread Safety: pure function, safe for concurrent use.
func NormalizeDashboard(events []StepEvent) *DashboardResult {
	result := &DashboardResult{}

	for _, raw := range ExtractFunctionResults(events, FnHighRiskCustomers) {
		var row highRiskRow
		if !decodeRow(raw, &row, FnHighRiskCustomers) {
			continue
		}
		result.HighRiskCustomers = append(result.HighRiskCustomers, CustomerSummary{
			CustomerID:   row.CustomerID,
			CustomerName: row.Name,
			Email:        row.Email,
			RiskScore:    parseAmount(row.RiskScore),
		})
	}

	for _, raw := range ExtractFunctionResults(events, FnMultipleLocationTransactions) {
		var row multiLocationRow
		if !decodeRow(raw, &row, FnMultipleLocationTransactions) {
			continue
		}
		result.MultipleLocations = append(result.MultipleLocations, LocationSpan{
			CustomerID:    row.CustomerID,
			CustomerName:  row.Name,
			Email:         row.Email,
			StartTime:     row.StartTime,
			EndTime:       row.EndTime,
			LocationCount: row.LocationCount,
		})
	}

	for _, raw := range ExtractFunctionResults(events, FnLargeTransactionCustomers) {
		var row largeTxCountRow
		if !decodeRow(raw, &row, FnLargeTransactionCustomers) {
			continue
		}
		result.LargeTransactions = append(result.LargeTransactions, LargeTxSummary{
			CustomerID:            row.CustomerID,
			CustomerName:          row.Name,
			Email:                 row.Email,
			LargeTransactionCount: row.LargeTransactionCount,
		})
	}

	for _, raw := range ExtractFunctionResults(events, FnFrequentSmallTransactions) {
		var row frequentTxRow
		if !decodeRow(raw, &row, FnFrequentSmallTransactions) {
			continue
		}
		result.FrequentTransactions = append(result.FrequentTransactions, FrequentTxSummary{
			CustomerID:       row.CustomerID,
			CustomerName:     row.Name,
			Email:            row.Email,
			FirstTime:        row.SentTime,
			LastTime:         row.EndTime,
			TransactionCount: row.TransactionCount,
			TotalAmount:      parseAmount(row.TotalAmount),
		})
	}

	return result
}

func decodeRow(raw json.RawMessage, dst any, function string) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		slog.Warn("Skipping undecodable dashboard row",
			slog.String("function", function),
			slog.String("error", err.Error()))
		return false
	}
	return true
}
