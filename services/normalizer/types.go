// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package normalizer turns raw AML agent output into the typed view records
// consumed by the dashboard and customer-analysis screens.
//
// The agent returns an ordered sequence of heterogeneous step-events: some
// carry free-text report fragments meant for human reading, some carry
// structured function-call results, and some carry both or neither. This
// package resolves that polymorphic shape once at ingestion (see events.go)
// and then applies a set of pure, individually testable extraction functions.
// Every extraction that can fail returns an absent/empty value instead of an
// error; Normalize substitutes defaults so callers always receive something
// renderable.
package normalizer

// Direction values for a transaction relative to the queried customer.
const (
	DirectionOutgoing = "Outgoing"
	DirectionIncoming = "Incoming"
)

// Severity values for risk factors. Unrecognized classifications default
// to SeverityMedium.
const (
	SeverityHigh   = "High"
	SeverityMedium = "Medium"
	SeverityLow    = "Low"
)

// DefaultRiskThreshold is used when the report omits or mangles the
// "Threshold:" field.
const DefaultRiskThreshold = 85

// CustomerSummary is one row in the high-risk customers table.
type CustomerSummary struct {
	CustomerID   string  `json:"customerId"`
	CustomerName string  `json:"customerName"`
	Email        string  `json:"email"`
	RiskScore    float64 `json:"riskScore"`
}

// LocationSpan is one row in the multi-location activity table: a window of
// time in which a customer transacted from locationCount distinct locations.
type LocationSpan struct {
	CustomerID    string `json:"customerId"`
	CustomerName  string `json:"customerName"`
	Email         string `json:"email"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	LocationCount int    `json:"locationCount"`
}

// LargeTxSummary is one row in the large-transaction-count table.
type LargeTxSummary struct {
	CustomerID            string `json:"customerId"`
	CustomerName          string `json:"customerName"`
	Email                 string `json:"email"`
	LargeTransactionCount int    `json:"largeTransactionCount"`
}

// FrequentTxSummary is one row in the small frequent transfers table.
type FrequentTxSummary struct {
	CustomerID       string  `json:"customerId"`
	CustomerName     string  `json:"customerName"`
	Email            string  `json:"email"`
	FirstTime        string  `json:"firstTime"`
	LastTime         string  `json:"lastTime"`
	TransactionCount int     `json:"transactionCount"`
	TotalAmount      float64 `json:"totalAmount"`
}

// CustomerProfile is the single-customer lookup view model. The derived
// fields (TotalTransactions, AverageTransactionAmount, LastActivity) are
// computed from the kept transaction set, not taken from the report.
type CustomerProfile struct {
	CustomerID               string   `json:"customerId"`
	CustomerName             string   `json:"customerName"`
	Accounts                 []string `json:"accounts"`
	PrimaryLocation          string   `json:"primaryLocation"`
	Contact                  string   `json:"contact,omitempty"`
	Email                    string   `json:"email"`
	Phone                    string   `json:"phone"`
	RiskScore                float64  `json:"riskScore"`
	PreviousRiskScore        float64  `json:"previousRiskScore"`
	RiskThreshold            float64  `json:"riskThreshold"`
	TotalTransactions        int      `json:"totalTransactions"`
	AverageTransactionAmount float64  `json:"averageTransactionAmount"`
	LastActivity             string   `json:"lastActivity"`
	AccountCreationDate      string   `json:"accountCreationDate"`
}

// Transaction is one row of a customer's recent transaction history.
// Direction is relative to the queried customer: a row whose sender id
// equals the queried id (exact string match) is Outgoing, anything else is
// Incoming. Date is kept as received; sorting parses it leniently.
type Transaction struct {
	TransactionID     string  `json:"transactionId"`
	Date              string  `json:"date"`
	Amount            float64 `json:"amount"`
	Direction         string  `json:"type"`
	SenderID          string  `json:"senderId"`
	RecipientID       string  `json:"recipientId"`
	SenderLocation    string  `json:"senderLocation"`
	RecipientLocation string  `json:"recipientLocation"`
	TransactionType   string  `json:"transactionType"`
	RiskType          string  `json:"riskType"`
}

// RiskFactor is a labeled, severity-ranked reason contributing to a
// customer's risk assessment. Parsed from report text or synthesized from
// transaction heuristics when the report lists none.
type RiskFactor struct {
	Factor      string `json:"factor"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// LocationActivity is one row of the derived geographic activity log:
// the counterparty location of a kept transaction plus a short activity
// description.
type LocationActivity struct {
	Date     string `json:"date"`
	Location string `json:"location"`
	Activity string `json:"activity"`
}

// AnalysisResult is the complete single-customer view: profile, recent
// transactions, derived location history, and risk factors.
type AnalysisResult struct {
	Profile      *CustomerProfile   `json:"customerDetails"`
	Transactions []Transaction      `json:"transactions"`
	Locations    []LocationActivity `json:"locations"`
	RiskFactors  []RiskFactor       `json:"riskFactors"`
}

// DashboardResult holds the four independent dashboard result sets. A set
// left empty means the corresponding function response was absent from the
// agent output; callers decide whether to substitute sample data.
type DashboardResult struct {
	HighRiskCustomers    []CustomerSummary   `json:"highRiskCustomers"`
	MultipleLocations    []LocationSpan      `json:"multipleLocations"`
	LargeTransactions    []LargeTxSummary    `json:"largeTransactions"`
	FrequentTransactions []FrequentTxSummary `json:"frequentTransactions"`
}
