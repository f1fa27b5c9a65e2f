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
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Transaction Extraction
// =============================================================================

// maxRecentTransactions caps the kept transaction history.
const maxRecentTransactions = 10

// txRow is the snake_case wire shape of one detect_large_amount_transactions
// result row. Amount arrives as either a JSON number or a numeric string
// depending on the agent's serializer, so it decodes via RawMessage.
type txRow struct {
	TransactionID    string          `json:"transaction_id"`
	TransactionDate  string          `json:"transaction_date"`
	Amount           json.RawMessage `json:"amount"`
	CustomerIDSend   string          `json:"customer_id_send"`
	CustomerIDDest   string          `json:"customer_id_dest"`
	LocationSender   string          `json:"location_sender"`
	LocationReceiver string          `json:"location_receiver"`
	TransactionType  string          `json:"transaction_type"`
	RiskType         string          `json:"risk_type"`
}

// BuildTransactions decodes raw function-result rows into Transaction view
// records relative to the queried customer id.
//
// Description:
//
//	A row that fails to decode is skipped with a warning. Missing fields
//	take fallbacks: a generated TX id, the current time as the date, zero
//	amount, "Unknown" parties and locations, "Wire Transfer" type and
//	"Standard" risk type. Direction is Outgoing when the row's sender id
//	equals the queried id by exact string comparison, Incoming otherwise.
func BuildTransactions(rows []json.RawMessage, customerID string) []Transaction {
	txs := make([]Transaction, 0, len(rows))
	for _, raw := range rows {
		var row txRow
		if err := json.Unmarshal(raw, &row); err != nil {
			slog.Warn("Skipping undecodable transaction row",
				slog.String("error", err.Error()))
			continue
		}
		txs = append(txs, buildTransaction(row, customerID))
	}
	return txs
}

func buildTransaction(row txRow, customerID string) Transaction {
	tx := Transaction{
		TransactionID:     row.TransactionID,
		Date:              row.TransactionDate,
		Amount:            parseAmount(row.Amount),
		SenderID:          orDefault(row.CustomerIDSend, "Unknown"),
		RecipientID:       orDefault(row.CustomerIDDest, "Unknown"),
		SenderLocation:    orDefault(row.LocationSender, "Unknown"),
		RecipientLocation: orDefault(row.LocationReceiver, "Unknown"),
		TransactionType:   orDefault(row.TransactionType, "Wire Transfer"),
		RiskType:          orDefault(row.RiskType, "Standard"),
	}
	if tx.TransactionID == "" {
		tx.TransactionID = "TX" + uuid.NewString()[:8]
	}
	if tx.Date == "" {
		tx.Date = time.Now().UTC().Format(time.RFC3339)
	}
	// Exact match, no trimming or case folding. Agent ids and queried ids
	// come from the same upstream source and already agree on form.
	if row.CustomerIDSend == customerID {
		tx.Direction = DirectionOutgoing
	} else {
		tx.Direction = DirectionIncoming
	}
	return tx
}

// parseAmount accepts a JSON number or a numeric string; anything else is 0.
func parseAmount(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// txDateLayouts covers the date forms the agent has been seen emitting.
var txDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTxDate(s string) (time.Time, bool) {
	for _, layout := range txDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// KeepRecent sorts transactions by date descending and keeps the first 10.
//
// Description:
//
//	The sort is stable: rows whose dates are equal or unparseable keep
//	their input order. Unparseable dates sort as the zero time, pushing
//	those rows to the end. The input slice is not modified.
func KeepRecent(transactions []Transaction) []Transaction {
	sorted := make([]Transaction, len(transactions))
	copy(sorted, transactions)

	sort.SliceStable(sorted, func(i, j int) bool {
		ti, _ := parseTxDate(sorted[i].Date)
		tj, _ := parseTxDate(sorted[j].Date)
		return ti.After(tj)
	})

	if len(sorted) > maxRecentTransactions {
		sorted = sorted[:maxRecentTransactions]
	}
	return sorted
}

// AverageAmount is the arithmetic mean of transaction amounts, 0 for an
// empty set.
func AverageAmount(transactions []Transaction) float64 {
	if len(transactions) == 0 {
		return 0
	}
	var sum float64
	for _, tx := range transactions {
		sum += tx.Amount
	}
	return sum / float64(len(transactions))
}
