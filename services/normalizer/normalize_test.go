// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalizer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// analysisPayload mirrors a real agent response: tool events first, the
// report generator's text last.
func analysisPayload() []byte {
	report := "Customer ID: C10045\\nName: Raju Sharma\\nAccounts: ACC-1001, ACC-1002\\nPrimary Location: Mumbai\\nContact: raju.sharma@example.com / +91 98765 43210\\n\\nCurrent Risk Score: 92\\nPrevious Risk Score: 78\\nThreshold: 85\\n\\nRisk Factors:\\n- Multiple high-value transactions in a short window.\\n- Counterparties span several jurisdictions with minor documentation gaps."
	return []byte(fmt.Sprintf(`[
		{"author":"aml_agent","content":{"parts":[{"functionResponse":{"name":"detect_large_amount_transactions","response":{"result":[
			{"transaction_id":"TX1","transaction_date":"2023-05-26T10:00:00Z","amount":25000,"customer_id_send":"C10045","customer_id_dest":"C10099","location_sender":"Mumbai","location_receiver":"Dubai"},
			{"transaction_id":"TX2","transaction_date":"2023-05-27T10:00:00Z","amount":11600,"customer_id_send":"C10045","customer_id_dest":"C10098","location_sender":"Mumbai","location_receiver":"London"}
		]}}}]}},
		{"author":"report_generator_agent","content":{"parts":[{"text":"%s"}]}}
	]`, report))
}

func TestNormalizeEndToEnd(t *testing.T) {
	events := ResolveRaw(analysisPayload())
	result := Normalize(events, "C10045")
	require.NotNil(t, result)
	require.NotNil(t, result.Profile)

	p := result.Profile
	assert.Equal(t, "C10045", p.CustomerID)
	assert.Equal(t, "Raju Sharma", p.CustomerName)
	assert.Equal(t, 92.0, p.RiskScore)
	assert.Equal(t, 78.0, p.PreviousRiskScore)
	assert.Equal(t, 85.0, p.RiskThreshold)
	assert.Equal(t, 2, p.TotalTransactions)
	assert.Equal(t, 18300.0, p.AverageTransactionAmount)
	assert.Equal(t, "2023-05-27", p.LastActivity)
	assert.Equal(t, accountCreationDate, p.AccountCreationDate)

	require.Len(t, result.Transactions, 2)
	assert.Equal(t, "TX2", result.Transactions[0].TransactionID)
	assert.Equal(t, DirectionOutgoing, result.Transactions[0].Direction)
	assert.Equal(t, DirectionOutgoing, result.Transactions[1].Direction)

	require.Len(t, result.Locations, 2)
	assert.Equal(t, "London", result.Locations[0].Location)
	assert.Equal(t, "Wire Transfer - Outgoing $11,600", result.Locations[0].Activity)

	require.Len(t, result.RiskFactors, 2)
	assert.Equal(t, SeverityHigh, result.RiskFactors[0].Severity)
}

func TestNormalizeEmptyInputIsFallback(t *testing.T) {
	result := Normalize(nil, "C10045")
	require.NotNil(t, result)
	require.NotNil(t, result.Profile)

	assert.Equal(t, "C10045", result.Profile.CustomerID)
	assert.Equal(t, "Data Processing Error", result.Profile.CustomerName)
	assert.Equal(t, "error@processing.data", result.Profile.Email)
	assert.Equal(t, []string{"Error"}, result.Profile.Accounts)
	assert.Equal(t, float64(DefaultRiskThreshold), result.Profile.RiskThreshold)
	assert.Empty(t, result.Transactions)
	assert.Empty(t, result.Locations)

	require.Len(t, result.RiskFactors, 1)
	assert.Equal(t, "Data Processing Error", result.RiskFactors[0].Factor)
	assert.Equal(t, SeverityHigh, result.RiskFactors[0].Severity)
}

func TestNormalizeTransactionsWithoutReportGetsDefaultProfile(t *testing.T) {
	raw := []byte(`[{"author":"aml_agent","content":{"parts":[{"functionResponse":{"name":"detect_large_amount_transactions","response":{"result":[
		{"transaction_id":"TX1","transaction_date":"2023-05-26T10:00:00Z","amount":500,"customer_id_send":"C10045","customer_id_dest":"C2","location_sender":"Mumbai","location_receiver":"Mumbai"}
	]}}}]}}]`)

	result := Normalize(ResolveRaw(raw), "C10045")
	require.NotNil(t, result.Profile)
	assert.Equal(t, "Unknown Customer", result.Profile.CustomerName)
	assert.Equal(t, "C10045", result.Profile.CustomerID)
	assert.Equal(t, 1, result.Profile.TotalTransactions)
	require.Len(t, result.Transactions, 1)
}

func TestNormalizeSynthesizesFactorsWhenReportHasNone(t *testing.T) {
	raw := []byte(`[
		{"author":"aml_agent","content":{"parts":[{"functionResponse":{"name":"detect_large_amount_transactions","response":{"result":[
			{"transaction_id":"TX1","transaction_date":"2023-05-26T10:00:00Z","amount":25000,"customer_id_send":"C1","customer_id_dest":"C2","location_sender":"Mumbai","location_receiver":"Dubai"}
		]}}}]}},
		{"author":"report_generator_agent","content":{"parts":[{"text":"Customer ID: C1\nName: Jo\nAccounts: A1\nPrimary Location: Mumbai\nContact: jo@x.io"}]}}
	]`)

	result := Normalize(ResolveRaw(raw), "C1")
	require.NotEmpty(t, result.RiskFactors)
	assert.Equal(t, "Large Amount Transactions", result.RiskFactors[0].Factor)
}

func TestNormalizeNeverReturnsNil(t *testing.T) {
	events := []StepEvent{{Kind: EventUnrecognized}, {Kind: EventUnrecognized}}
	result := Normalize(events, "C9")
	require.NotNil(t, result)
	assert.Equal(t, "Data Processing Error", result.Profile.CustomerName)
}

func TestDateOnly(t *testing.T) {
	assert.Equal(t, "2023-05-27", dateOnly("2023-05-27T10:00:00Z"))
	assert.Equal(t, "2023-05-27", dateOnly("2023-05-27 10:00:00"))
	assert.Equal(t, "2023-05-27", dateOnly("2023-05-27"))
	assert.Equal(t, "mangled", dateOnly("mangled"))
}
