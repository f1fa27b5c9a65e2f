// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalizer

import "strings"

// =============================================================================
// Risk Factor Extraction
// =============================================================================

// minRiskFragmentLen drops bullet fragments too short to be real factors
// (stray dashes, orphaned list markers).
const minRiskFragmentLen = 10

// ParseRiskFactors extracts the bulleted "Risk Factors:" section from report
// text.
//
// Description:
//
//	The section runs from the "Risk Factors:" label to the next blank line,
//	a line starting with "Based on", or end of text. Bullets may use "-" or
//	"•"; both split the list. Fragments of 10 characters or fewer are
//	dropped. Each kept fragment becomes a RiskFactor whose Factor is the
//	text up to the first period and whose Severity comes from
//	ClassifySeverity. An absent section yields nil, not an error; callers
//	fall back to SynthesizeDefaultRiskFactors.
func ParseRiskFactors(text string) []RiskFactor {
	m := riskFactorsSectionRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	section := strings.TrimSpace(m[1])
	section = strings.ReplaceAll(section, "\n•", "\n-")
	section = strings.TrimPrefix(section, "-")
	section = strings.TrimPrefix(section, "•")

	var factors []RiskFactor
	for _, frag := range strings.Split(section, "\n-") {
		frag = strings.TrimSpace(frag)
		if len(frag) <= minRiskFragmentLen {
			continue
		}
		factor := strings.TrimSpace(strings.SplitN(frag, ".", 2)[0])
		factors = append(factors, RiskFactor{
			Factor:      factor,
			Severity:    ClassifySeverity(frag),
			Description: frag,
		})
	}
	return factors
}

// ClassifySeverity ranks a risk description by keyword.
//
// High keywords win over Low when both appear. Anything without a
// recognized keyword is Medium.
func ClassifySeverity(description string) string {
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "high"),
		strings.Contains(lower, "significant"),
		strings.Contains(lower, "critical"),
		strings.Contains(lower, "suspicious"):
		return SeverityHigh
	case strings.Contains(lower, "low"),
		strings.Contains(lower, "minor"):
		return SeverityLow
	default:
		return SeverityMedium
	}
}
