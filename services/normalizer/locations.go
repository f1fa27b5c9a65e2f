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

// DeriveLocationHistory builds the geographic activity log from the kept
// transaction set: one row per transaction, using the counterparty location
// (recipient for Outgoing, sender for Incoming).
func DeriveLocationHistory(transactions []Transaction) []LocationActivity {
	locs := make([]LocationActivity, 0, len(transactions))
	for _, tx := range transactions {
		loc := tx.SenderLocation
		if tx.Direction == DirectionOutgoing {
			loc = tx.RecipientLocation
		}
		locs = append(locs, LocationActivity{
			Date:     tx.Date,
			Location: loc,
			Activity: fmt.Sprintf("%s - %s %s", tx.TransactionType, tx.Direction, formatCurrency(tx.Amount)),
		})
	}
	return locs
}

// formatCurrency renders an amount as "$1,234,567.89" with thousands
// separators. Fractional cents show only when present.
func formatCurrency(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := fmt.Sprintf("%.2f", amount)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	b.WriteString(fracPart)
	return b.String()
}
