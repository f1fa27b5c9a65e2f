// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalizer

import (
	"fmt"
	"strings"
)

// largeAmountThreshold marks a transaction as high value for the synthesized
// risk heuristics.
const largeAmountThreshold = 10000

// SynthesizeDefaultRiskFactors derives risk factors from transaction data
// when the report text lists none.
//
// Description:
//
//	Runs three independent heuristics in fixed order; each contributes at
//	most one factor. No transactions, or transactions triggering nothing,
//	yields an empty set.
//
//	  1. Any amount above 10000 adds Large Amount Transactions (High).
//	  2. More than two distinct known locations across senders and
//	     recipients adds Multi-Jurisdictional Activity (High) naming up to
//	     three of them. "Unknown" never counts as a location.
//	  3. Any transaction whose sender and recipient locations differ adds
//	     Cross-Border Transactions (Medium).
func SynthesizeDefaultRiskFactors(transactions []Transaction) []RiskFactor {
	var factors []RiskFactor

	for _, tx := range transactions {
		if tx.Amount > largeAmountThreshold {
			factors = append(factors, RiskFactor{
				Factor:      "Large Amount Transactions",
				Severity:    SeverityHigh,
				Description: "Multiple high-value transactions detected above $10,000",
			})
			break
		}
	}

	if locs := distinctKnownLocations(transactions); len(locs) > 2 {
		named := locs
		if len(named) > 3 {
			named = named[:3]
		}
		factors = append(factors, RiskFactor{
			Factor:   "Multi-Jurisdictional Activity",
			Severity: SeverityHigh,
			Description: fmt.Sprintf("Transactions across %d different locations: %s",
				len(locs), strings.Join(named, ", ")),
		})
	}

	for _, tx := range transactions {
		if tx.SenderLocation != tx.RecipientLocation {
			factors = append(factors, RiskFactor{
				Factor:      "Cross-Border Transactions",
				Severity:    SeverityMedium,
				Description: "International wire transfers requiring enhanced monitoring",
			})
			break
		}
	}

	return factors
}

// distinctKnownLocations returns first-seen-ordered unique locations,
// scanning all sender locations before all recipient locations so the
// named examples in the synthesized description are deterministic.
func distinctKnownLocations(transactions []Transaction) []string {
	seen := make(map[string]struct{})
	var locs []string
	add := func(loc string) {
		if loc == "" || loc == "Unknown" {
			return
		}
		if _, ok := seen[loc]; ok {
			return
		}
		seen[loc] = struct{}{}
		locs = append(locs, loc)
	}
	for _, tx := range transactions {
		add(tx.SenderLocation)
	}
	for _, tx := range transactions {
		add(tx.RecipientLocation)
	}
	return locs
}
