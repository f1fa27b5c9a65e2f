// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSamples(t *testing.T) {
	provider := NewSampleProvider()
	data := provider.Dashboard()

	require.Len(t, data.HighRiskCustomers, 10)
	assert.Equal(t, "C10048", data.HighRiskCustomers[0].CustomerID)
	assert.Equal(t, "Raju Sharma", data.HighRiskCustomers[0].CustomerName)
	assert.Equal(t, 95.0, data.HighRiskCustomers[0].RiskScore)

	require.Len(t, data.MultipleLocations, 10)
	assert.Equal(t, 3, data.MultipleLocations[0].LocationCount)

	require.Len(t, data.LargeTransactions, 10)
	assert.Equal(t, 7, data.LargeTransactions[0].LargeTransactionCount)

	require.Len(t, data.FrequentTransactions, 1)
	ft := data.FrequentTransactions[0]
	assert.Equal(t, "C10045", ft.CustomerID)
	assert.Equal(t, 5, ft.TransactionCount)
	assert.Equal(t, 18000.0, ft.TotalAmount)
}

func TestReloadOverride(t *testing.T) {
	provider := NewSampleProvider()

	override := filepath.Join(t.TempDir(), "samples.yaml")
	content := `high_risk_customers:
  - { customer_id: C1, name: Override Person, email: o@x.io, risk_score: 50 }
`
	require.NoError(t, os.WriteFile(override, []byte(content), 0o644))

	require.NoError(t, provider.Reload(override))
	data := provider.Dashboard()
	require.Len(t, data.HighRiskCustomers, 1)
	assert.Equal(t, "Override Person", data.HighRiskCustomers[0].CustomerName)
	assert.Empty(t, data.MultipleLocations)
}

func TestReloadInvalidFileKeepsCurrentDataset(t *testing.T) {
	provider := NewSampleProvider()

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("high_risk_customers: {not: a list}"), 0o644))

	assert.Error(t, provider.Reload(bad))
	assert.Len(t, provider.Dashboard().HighRiskCustomers, 10)

	assert.Error(t, provider.Reload(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Len(t, provider.Dashboard().HighRiskCustomers, 10)
}
