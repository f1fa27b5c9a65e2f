// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalizer

import (
	"bytes"
	"encoding/json"
	"log/slog"
)

// =============================================================================
// Step-Event Ingestion
// =============================================================================

// Agent function names whose results this package knows how to extract.
const (
	FnLargeAmountTransactions      = "detect_large_amount_transactions"
	FnHighRiskCustomers            = "detect_high_risk_customers"
	FnMultipleLocationTransactions = "detect_multiple_location_transactions"
	FnLargeTransactionCustomers    = "detect_large_transaction_customers"
	FnFrequentSmallTransactions    = "detect_frequent_small_transactions"
)

// reportAuthor tags the step-event that carries the human-readable report.
const reportAuthor = "report_generator_agent"

// EventKind discriminates the step-event tagged union.
type EventKind int

const (
	// EventUnrecognized is a step-event carrying neither report text nor
	// function results (or one that failed to decode). Kept so event-order
	// positions stay stable, ignored by every extractor.
	EventUnrecognized EventKind = iota

	// EventFunctionResult is a step-event carrying at least one structured
	// function-call result.
	EventFunctionResult

	// EventReportText is a step-event carrying free-text report fragments
	// but no function results.
	EventReportText
)

// FunctionResult is a named, structured result embedded in a step-event,
// analogous to a tool-call return value. Rows keep their raw JSON shape;
// the extractors that consume them decode per-function wire types.
type FunctionResult struct {
	Name string
	Rows []json.RawMessage
}

// StepEvent is one unit of agent output with its polymorphic wire shape
// resolved into an explicit variant. A single event may carry both text
// fragments and function results; Kind reflects the dominant variant
// (function results win over text).
type StepEvent struct {
	Author    string
	Kind      EventKind
	Texts     []string
	Functions []FunctionResult
}

// Wire shapes. Unknown fields are ignored by encoding/json, which is the
// tolerance the agent contract requires.
type wireEvent struct {
	Author  string `json:"author"`
	Content *struct {
		Parts []wirePart `json:"parts"`
	} `json:"content"`
	Actions *struct {
		StateDelta map[string]json.RawMessage `json:"state_delta"`
	} `json:"actions"`
}

type wirePart struct {
	Text             string `json:"text"`
	FunctionResponse *struct {
		Name     string `json:"name"`
		Response struct {
			Result []json.RawMessage `json:"result"`
		} `json:"response"`
	} `json:"functionResponse"`
}

// ResolveRaw resolves a complete raw agent payload into step-events.
//
// Description:
//
//	The agent returns either a JSON array of step-events or a single JSON
//	object. A single object is treated as a one-event sequence. Anything
//	that cannot be split yields a single Unrecognized event rather than an
//	error: downstream extraction simply finds nothing.
func ResolveRaw(raw []byte) []StepEvent {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		var msgs []json.RawMessage
		if err := json.Unmarshal(trimmed, &msgs); err != nil {
			slog.Warn("Agent payload is not a valid step-event array",
				slog.String("error", err.Error()))
			return []StepEvent{{Kind: EventUnrecognized}}
		}
		return ResolveEvents(msgs)
	}
	return ResolveEvents([]json.RawMessage{trimmed})
}

// ResolveEvents resolves pre-split raw step-event messages into the tagged
// union, preserving input order. A message that fails to decode becomes an
// Unrecognized event.
func ResolveEvents(msgs []json.RawMessage) []StepEvent {
	events := make([]StepEvent, 0, len(msgs))
	for _, msg := range msgs {
		events = append(events, resolveOne(msg))
	}
	return events
}

func resolveOne(msg json.RawMessage) StepEvent {
	var we wireEvent
	if err := json.Unmarshal(msg, &we); err != nil {
		slog.Warn("Skipping undecodable step-event", slog.String("error", err.Error()))
		return StepEvent{Kind: EventUnrecognized}
	}

	ev := StepEvent{Author: we.Author}

	if we.Content != nil {
		for _, part := range we.Content.Parts {
			if part.FunctionResponse != nil && part.FunctionResponse.Name != "" {
				ev.Functions = append(ev.Functions, FunctionResult{
					Name: part.FunctionResponse.Name,
					Rows: part.FunctionResponse.Response.Result,
				})
				continue
			}
			if part.Text != "" {
				ev.Texts = append(ev.Texts, part.Text)
			}
		}
	}

	// state_delta values are free-text report fields nested as JSON strings
	// (they still contain literal \n escapes; CleanReportText handles that).
	if we.Actions != nil {
		for _, rawVal := range we.Actions.StateDelta {
			var s string
			if err := json.Unmarshal(rawVal, &s); err == nil && s != "" {
				ev.Texts = append(ev.Texts, s)
			}
		}
	}

	switch {
	case len(ev.Functions) > 0:
		ev.Kind = EventFunctionResult
	case len(ev.Texts) > 0:
		ev.Kind = EventReportText
	default:
		ev.Kind = EventUnrecognized
	}
	return ev
}

// ExtractFunctionResults scans every step-event for function responses whose
// name matches functionName and concatenates their result rows in event
// order. An unknown or absent function name yields an empty slice, not an
// error.
func ExtractFunctionResults(events []StepEvent, functionName string) []json.RawMessage {
	var rows []json.RawMessage
	for _, ev := range events {
		for _, fn := range ev.Functions {
			if fn.Name == functionName {
				rows = append(rows, fn.Rows...)
			}
		}
	}
	return rows
}

// ReportText locates the report text block in the event sequence.
//
// Description:
//
//	Prefers the report generator agent's text; falls back to the first text
//	fragment from any other event. Returns false when no event carries text
//	at all — this is not an error, callers substitute a default profile.
func ReportText(events []StepEvent) (string, bool) {
	for _, ev := range events {
		if ev.Author == reportAuthor && len(ev.Texts) > 0 {
			return ev.Texts[0], true
		}
	}
	for _, ev := range events {
		if len(ev.Texts) > 0 {
			return ev.Texts[0], true
		}
	}
	return "", false
}
