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

func TestParseRiskFactors(t *testing.T) {
	factors := ParseRiskFactors(sampleReport)
	require.Len(t, factors, 2)

	assert.Equal(t, "Multiple high-value transactions in a short window", factors[0].Factor)
	assert.Equal(t, SeverityHigh, factors[0].Severity)
	assert.Equal(t, "Multiple high-value transactions in a short window.", factors[0].Description)

	assert.Equal(t, SeverityLow, factors[1].Severity)
}

func TestParseRiskFactorsBulletVariants(t *testing.T) {
	text := "Risk Factors:\n• Suspicious structuring of deposits observed.\n• Transfers routed through shell entities."
	factors := ParseRiskFactors(text)
	require.Len(t, factors, 2)
	assert.Equal(t, "Suspicious structuring of deposits observed", factors[0].Factor)
	assert.Equal(t, SeverityHigh, factors[0].Severity)
	assert.Equal(t, SeverityMedium, factors[1].Severity)
}

func TestParseRiskFactorsDropsShortFragments(t *testing.T) {
	text := "Risk Factors:\n- ok\n- Repeated transfers just under the reporting limit."
	factors := ParseRiskFactors(text)
	require.Len(t, factors, 1)
	assert.Equal(t, "Repeated transfers just under the reporting limit", factors[0].Factor)
}

func TestParseRiskFactorsAbsentSection(t *testing.T) {
	assert.Nil(t, ParseRiskFactors("Current Risk Score: 10"))
}

func TestClassifySeverity(t *testing.T) {
	cases := []struct {
		desc string
		want string
	}{
		{"Critical exposure to sanctioned entities", SeverityHigh},
		{"Significant volume increase", SeverityHigh},
		{"suspicious timing of transfers", SeverityHigh},
		{"Minor documentation gap", SeverityLow},
		{"low transaction velocity", SeverityLow},
		{"Unusual counterparty pattern", SeverityMedium},
		{"HIGH-value and low-frequency mix", SeverityHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifySeverity(tc.desc), tc.desc)
	}
}
