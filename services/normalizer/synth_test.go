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

func TestSynthesizeLargeAmount(t *testing.T) {
	txs := []Transaction{
		{Amount: 10000, SenderLocation: "Oslo", RecipientLocation: "Oslo"},
		{Amount: 10000.01, SenderLocation: "Oslo", RecipientLocation: "Oslo"},
	}
	factors := SynthesizeDefaultRiskFactors(txs)
	require.Len(t, factors, 1)
	assert.Equal(t, "Large Amount Transactions", factors[0].Factor)
	assert.Equal(t, SeverityHigh, factors[0].Severity)
	assert.Equal(t, "Multiple high-value transactions detected above $10,000", factors[0].Description)
}

func TestSynthesizeExactThresholdDoesNotTrigger(t *testing.T) {
	txs := []Transaction{{Amount: 10000, SenderLocation: "Oslo", RecipientLocation: "Oslo"}}
	assert.Empty(t, SynthesizeDefaultRiskFactors(txs))
}

func TestSynthesizeMultiJurisdictional(t *testing.T) {
	txs := []Transaction{
		{Amount: 100, SenderLocation: "Mumbai", RecipientLocation: "Dubai"},
		{Amount: 100, SenderLocation: "London", RecipientLocation: "Unknown"},
		{Amount: 100, SenderLocation: "Mumbai", RecipientLocation: "Zurich"},
	}
	factors := SynthesizeDefaultRiskFactors(txs)
	require.Len(t, factors, 2)

	assert.Equal(t, "Multi-Jurisdictional Activity", factors[0].Factor)
	assert.Equal(t, SeverityHigh, factors[0].Severity)
	// Senders first, recipients after, "Unknown" excluded, first three named.
	assert.Equal(t, "Transactions across 4 different locations: Mumbai, London, Dubai", factors[0].Description)

	assert.Equal(t, "Cross-Border Transactions", factors[1].Factor)
	assert.Equal(t, SeverityMedium, factors[1].Severity)
	assert.Equal(t, "International wire transfers requiring enhanced monitoring", factors[1].Description)
}

func TestSynthesizeUnknownLocationsNeverCount(t *testing.T) {
	txs := []Transaction{
		{Amount: 100, SenderLocation: "Unknown", RecipientLocation: "Unknown"},
		{Amount: 100, SenderLocation: "Unknown", RecipientLocation: "Unknown"},
		{Amount: 100, SenderLocation: "Unknown", RecipientLocation: "Unknown"},
	}
	assert.Empty(t, SynthesizeDefaultRiskFactors(txs))
}

func TestSynthesizeCrossBorderOnly(t *testing.T) {
	txs := []Transaction{
		{Amount: 50, SenderLocation: "Paris", RecipientLocation: "Lyon"},
	}
	factors := SynthesizeDefaultRiskFactors(txs)
	require.Len(t, factors, 1)
	assert.Equal(t, "Cross-Border Transactions", factors[0].Factor)
}

func TestSynthesizeEmptyTransactions(t *testing.T) {
	assert.Empty(t, SynthesizeDefaultRiskFactors(nil))
}
