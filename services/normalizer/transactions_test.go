// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalizer

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTransactionsDirectionExactMatch(t *testing.T) {
	rows := []json.RawMessage{
		json.RawMessage(`{"transaction_id":"TX1","transaction_date":"2023-05-27T10:00:00Z","amount":25000,"customer_id_send":"C10045","customer_id_dest":"C10099","location_sender":"Mumbai","location_receiver":"Dubai"}`),
		json.RawMessage(`{"transaction_id":"TX2","transaction_date":"2023-05-26T10:00:00Z","amount":"11600","customer_id_send":"C10099","customer_id_dest":"C10045","location_sender":"Dubai","location_receiver":"Mumbai"}`),
		json.RawMessage(`{"transaction_id":"TX3","transaction_date":"2023-05-25T10:00:00Z","amount":10,"customer_id_send":" C10045","customer_id_dest":"C10099"}`),
	}

	txs := BuildTransactions(rows, "C10045")
	require.Len(t, txs, 3)

	assert.Equal(t, DirectionOutgoing, txs[0].Direction)
	assert.Equal(t, 25000.0, txs[0].Amount)

	assert.Equal(t, DirectionIncoming, txs[1].Direction)
	assert.Equal(t, 11600.0, txs[1].Amount)

	// Whitespace breaks the exact match: the padded sender id is Incoming.
	assert.Equal(t, DirectionIncoming, txs[2].Direction)
}

func TestBuildTransactionsFieldFallbacks(t *testing.T) {
	txs := BuildTransactions([]json.RawMessage{json.RawMessage(`{}`)}, "C1")
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.True(t, len(tx.TransactionID) > 2 && tx.TransactionID[:2] == "TX")
	assert.NotEmpty(t, tx.Date)
	assert.Equal(t, 0.0, tx.Amount)
	assert.Equal(t, "Unknown", tx.SenderID)
	assert.Equal(t, "Unknown", tx.RecipientID)
	assert.Equal(t, "Unknown", tx.SenderLocation)
	assert.Equal(t, "Unknown", tx.RecipientLocation)
	assert.Equal(t, "Wire Transfer", tx.TransactionType)
	assert.Equal(t, "Standard", tx.RiskType)
	assert.Equal(t, DirectionIncoming, tx.Direction)
}

func TestBuildTransactionsSkipsUndecodableRow(t *testing.T) {
	rows := []json.RawMessage{
		json.RawMessage(`"not an object"`),
		json.RawMessage(`{"transaction_id":"TX1"}`),
	}
	txs := BuildTransactions(rows, "C1")
	require.Len(t, txs, 1)
	assert.Equal(t, "TX1", txs[0].TransactionID)
}

func TestParseAmountVariants(t *testing.T) {
	assert.Equal(t, 12.5, parseAmount(json.RawMessage(`12.5`)))
	assert.Equal(t, 12.5, parseAmount(json.RawMessage(`"12.5"`)))
	assert.Equal(t, 0.0, parseAmount(json.RawMessage(`"twelve"`)))
	assert.Equal(t, 0.0, parseAmount(json.RawMessage(`null`)))
	assert.Equal(t, 0.0, parseAmount(nil))
}

func TestKeepRecentSortsDescendingAndCaps(t *testing.T) {
	var txs []Transaction
	for i := 0; i < 15; i++ {
		txs = append(txs, Transaction{
			TransactionID: fmt.Sprintf("TX%02d", i),
			Date:          fmt.Sprintf("2023-05-%02dT10:00:00Z", i+1),
		})
	}

	kept := KeepRecent(txs)
	require.Len(t, kept, maxRecentTransactions)
	assert.Equal(t, "TX14", kept[0].TransactionID)
	assert.Equal(t, "TX05", kept[9].TransactionID)

	// Input order untouched.
	assert.Equal(t, "TX00", txs[0].TransactionID)
}

func TestKeepRecentStableForEqualAndUnparseableDates(t *testing.T) {
	txs := []Transaction{
		{TransactionID: "A", Date: "not a date"},
		{TransactionID: "B", Date: "2023-05-27T10:00:00Z"},
		{TransactionID: "C", Date: "2023-05-27T10:00:00Z"},
		{TransactionID: "D", Date: "garbage"},
	}
	kept := KeepRecent(txs)
	require.Len(t, kept, 4)
	assert.Equal(t, "B", kept[0].TransactionID)
	assert.Equal(t, "C", kept[1].TransactionID)
	// Unparseable dates sink to the end in input order.
	assert.Equal(t, "A", kept[2].TransactionID)
	assert.Equal(t, "D", kept[3].TransactionID)
}

func TestKeepRecentDateOnlyLayout(t *testing.T) {
	txs := []Transaction{
		{TransactionID: "OLD", Date: "2023-01-02"},
		{TransactionID: "NEW", Date: "2023-03-04"},
	}
	kept := KeepRecent(txs)
	assert.Equal(t, "NEW", kept[0].TransactionID)
}

func TestAverageAmount(t *testing.T) {
	assert.Equal(t, 0.0, AverageAmount(nil))
	txs := []Transaction{{Amount: 25000}, {Amount: 11600}}
	assert.Equal(t, 18300.0, AverageAmount(txs))
}
