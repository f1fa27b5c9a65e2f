// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalizer

import (
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// Report Text Parsing
// =============================================================================

// The report is a fixed-label block the agent writes for human reading:
//
//	Customer ID: C10045
//	Name: Raju Sharma
//	Accounts: ACC-1001, ACC-1002
//	Primary Location: Mumbai
//	Contact: raju.sharma@example.com / +91 98765 43210
//
//	Current Risk Score: 92
//	Previous Risk Score: 78
//	Threshold: 85
//
//	Risk Factors:
//	- Multiple high-value transactions in a short window.
//	- Suspicious counterparties across jurisdictions.
var (
	profileBlockRe = regexp.MustCompile(
		`Customer ID:\s*([^\n]+)\nName:\s*([^\n]+)\nAccounts:\s*([^\n]+)\nPrimary Location:\s*([^\n]+)\nContact:\s*([^\n]+)`)

	riskScoreBlockRe = regexp.MustCompile(
		`Current Risk Score:\s*([^\n]+)\nPrevious Risk Score:\s*([^\n]+)\nThreshold:\s*([^\n]+)`)

	riskFactorsSectionRe = regexp.MustCompile(
		`(?s)Risk Factors:\s*\n(.*?)(?:\n\n|\nBased on|$)`)

	emailTokenRe   = regexp.MustCompile(`[^\s]+@[^\s]+`)
	phoneTokenRe   = regexp.MustCompile(`\+?\d[\d\s\-()]*`)
	leadingFloatRe = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)
)

// ReportProfile is the identity block parsed from report text. It carries
// only what the report states; derived profile fields are computed later.
type ReportProfile struct {
	CustomerID      string
	CustomerName    string
	Accounts        []string
	PrimaryLocation string
	Contact         string
	Email           string
	Phone           string
}

// ReportRiskScore is the scoring block parsed from report text.
type ReportRiskScore struct {
	Current   float64
	Previous  float64
	Threshold float64
}

// CleanReportText prepares raw report text for label matching.
//
// Description:
//
//	Strips markdown code fences and rewrites literal \n and \t escape
//	sequences left behind when the report travelled as a nested JSON string
//	(the state_delta path). Idempotent on already-clean text.
func CleanReportText(text string) string {
	text = strings.ReplaceAll(text, "```", "")
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\t`, "\t")
	return strings.TrimSpace(text)
}

// ParseReportProfile locates the five-label identity block in report text.
//
// Description:
//
//	Returns (nil, false) when the block is not found. That is NOT an error:
//	reports without an identity block are common and callers substitute a
//	default profile.
//
//	The contact field is split into an email (the token containing "@") and
//	a phone number (the first digit run in the remainder). Either defaults
//	to "N/A" when absent.
func ParseReportProfile(text string) (*ReportProfile, bool) {
	m := profileBlockRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	contact := strings.TrimSpace(m[5])
	email, phone := splitContact(contact)

	return &ReportProfile{
		CustomerID:      strings.TrimSpace(m[1]),
		CustomerName:    strings.TrimSpace(m[2]),
		Accounts:        splitAccounts(m[3]),
		PrimaryLocation: strings.TrimSpace(m[4]),
		Contact:         contact,
		Email:           email,
		Phone:           phone,
	}, true
}

// splitContact separates a free-form contact field ("email / phone") into
// its parts. The email is the @-containing token; the phone is the first
// digit run in whatever remains after the email is removed, so digits
// inside the email address can never be mistaken for a phone number.
func splitContact(contact string) (email, phone string) {
	email = "N/A"
	phone = "N/A"

	rest := contact
	if m := emailTokenRe.FindString(contact); m != "" {
		email = m
		rest = strings.Replace(contact, m, "", 1)
	}
	if m := phoneTokenRe.FindString(rest); strings.TrimSpace(m) != "" {
		phone = strings.TrimSpace(m)
	}
	return email, phone
}

func splitAccounts(field string) []string {
	var accounts []string
	for _, acc := range strings.FieldsFunc(field, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		if acc = strings.TrimSpace(acc); acc != "" {
			accounts = append(accounts, acc)
		}
	}
	return accounts
}

// ParseReportRiskScore locates the risk scoring block in report text.
//
// Description:
//
//	Returns (nil, false) when the three-label block is not found. When the
//	block exists, each field is parsed independently: a mangled current or
//	previous score defaults to 0 and a mangled threshold defaults to
//	DefaultRiskThreshold. A single bad number never aborts the extraction.
func ParseReportRiskScore(text string) (*ReportRiskScore, bool) {
	m := riskScoreBlockRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return &ReportRiskScore{
		Current:   parseLeadingFloat(m[1], 0),
		Previous:  parseLeadingFloat(m[2], 0),
		Threshold: parseLeadingFloat(m[3], DefaultRiskThreshold),
	}, true
}

// parseLeadingFloat extracts the first decimal number in s, tolerating
// trailing annotations like "92 (High)". Returns def when no number exists.
func parseLeadingFloat(s string, def float64) float64 {
	m := leadingFloatRe.FindString(s)
	if m == "" {
		return def
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return def
	}
	return f
}
