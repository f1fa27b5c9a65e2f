// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dashboardPayload() []byte {
	return []byte(`[
		{"author":"aml_agent","content":{"parts":[
			{"functionResponse":{"name":"detect_high_risk_customers","response":{"result":[
				{"customer_id":"C10048","name":"Raju Sharma","email":"raju.sharma@gmail.com","risk_score":95},
				{"customer_id":"C10047","name":"Mohammad Ali Patel","email":"mohammad.ali@gmail.com","risk_score":"92"}
			]}}},
			{"functionResponse":{"name":"detect_multiple_location_transactions","response":{"result":[
				{"customer_id":"C10048","name":"Raju Sharma","email":"raju.sharma@gmail.com","start_time":"2023-05-27T09:00:00Z","end_time":"2023-05-27T10:30:00Z","location_count":3}
			]}}}
		]}},
		{"author":"aml_agent","content":{"parts":[
			{"functionResponse":{"name":"detect_large_transaction_customers","response":{"result":[
				{"customer_id":"C10048","name":"Raju Sharma","email":"raju.sharma@gmail.com","large_transaction_count":7}
			]}}},
			{"functionResponse":{"name":"detect_frequent_small_transactions","response":{"result":[
				{"customer_id":"C10045","name":"Raju Sharma","email":"raju.sharma@gmail.com","sent_time":"2023-05-27T23:30:00Z","end_time":"2023-05-27T20:30:00Z","transaction_count":5,"total_amount":18000}
			]}}}
		]}}
	]`)
}

func TestNormalizeDashboard(t *testing.T) {
	result := NormalizeDashboard(ResolveRaw(dashboardPayload()))
	require.NotNil(t, result)

	require.Len(t, result.HighRiskCustomers, 2)
	assert.Equal(t, "C10048", result.HighRiskCustomers[0].CustomerID)
	assert.Equal(t, 95.0, result.HighRiskCustomers[0].RiskScore)
	// String-typed scores decode too.
	assert.Equal(t, 92.0, result.HighRiskCustomers[1].RiskScore)

	require.Len(t, result.MultipleLocations, 1)
	assert.Equal(t, 3, result.MultipleLocations[0].LocationCount)
	assert.Equal(t, "2023-05-27T09:00:00Z", result.MultipleLocations[0].StartTime)

	require.Len(t, result.LargeTransactions, 1)
	assert.Equal(t, 7, result.LargeTransactions[0].LargeTransactionCount)

	require.Len(t, result.FrequentTransactions, 1)
	ft := result.FrequentTransactions[0]
	assert.Equal(t, "C10045", ft.CustomerID)
	assert.Equal(t, 5, ft.TransactionCount)
	assert.Equal(t, 18000.0, ft.TotalAmount)
	assert.Equal(t, "2023-05-27T23:30:00Z", ft.FirstTime)
}

func TestNormalizeDashboardAbsentSetsStayEmpty(t *testing.T) {
	raw := []byte(`[{"author":"aml_agent","content":{"parts":[
		{"functionResponse":{"name":"detect_high_risk_customers","response":{"result":[
			{"customer_id":"C1","name":"Jo","email":"jo@x.io","risk_score":70}
		]}}}
	]}}]`)

	result := NormalizeDashboard(ResolveRaw(raw))
	assert.Len(t, result.HighRiskCustomers, 1)
	assert.Empty(t, result.MultipleLocations)
	assert.Empty(t, result.LargeTransactions)
	assert.Empty(t, result.FrequentTransactions)
}

func TestNormalizeDashboardSkipsBadRows(t *testing.T) {
	raw := []byte(`[{"author":"aml_agent","content":{"parts":[
		{"functionResponse":{"name":"detect_high_risk_customers","response":{"result":[
			"not an object",
			{"customer_id":"C2","name":"Ann","email":"ann@x.io","risk_score":80}
		]}}}
	]}}]`)

	result := NormalizeDashboard(ResolveRaw(raw))
	require.Len(t, result.HighRiskCustomers, 1)
	assert.Equal(t, "C2", result.HighRiskCustomers[0].CustomerID)
}
