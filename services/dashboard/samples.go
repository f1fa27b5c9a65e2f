// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/KodiakSystems/KodiakAML/services/normalizer"
)

// =============================================================================
// Sample Dataset
// =============================================================================

//go:embed samples.yaml
var embeddedSamples []byte

// sampleFile is the YAML shape of the sample dataset.
type sampleFile struct {
	HighRiskCustomers []struct {
		CustomerID string  `yaml:"customer_id"`
		Name       string  `yaml:"name"`
		Email      string  `yaml:"email"`
		RiskScore  float64 `yaml:"risk_score"`
	} `yaml:"high_risk_customers"`
	MultipleLocations []struct {
		CustomerID    string `yaml:"customer_id"`
		Name          string `yaml:"name"`
		Email         string `yaml:"email"`
		StartTime     string `yaml:"start_time"`
		EndTime       string `yaml:"end_time"`
		LocationCount int    `yaml:"location_count"`
	} `yaml:"multiple_locations"`
	LargeTransactions []struct {
		CustomerID            string `yaml:"customer_id"`
		Name                  string `yaml:"name"`
		Email                 string `yaml:"email"`
		LargeTransactionCount int    `yaml:"large_transaction_count"`
	} `yaml:"large_transactions"`
	FrequentTransactions []struct {
		CustomerID       string  `yaml:"customer_id"`
		Name             string  `yaml:"name"`
		Email            string  `yaml:"email"`
		FirstTime        string  `yaml:"first_time"`
		LastTime         string  `yaml:"last_time"`
		TransactionCount int     `yaml:"transaction_count"`
		TotalAmount      float64 `yaml:"total_amount"`
	} `yaml:"frequent_transactions"`
}

// SampleProvider serves the static fallback dataset. The embedded file is
// always available; an operator override file can replace it at runtime via
// Reload (see watch.go for the fsnotify wiring).
//
// Thread Safety: safe for concurrent use.
type SampleProvider struct {
	mu   sync.RWMutex
	data *normalizer.DashboardResult
}

// NewSampleProvider parses the embedded dataset. The embedded file is part
// of the binary, so a parse failure here is a build defect and panics.
func NewSampleProvider() *SampleProvider {
	data, err := parseSamples(embeddedSamples)
	if err != nil {
		panic(fmt.Sprintf("embedded samples.yaml is invalid: %v", err))
	}
	return &SampleProvider{data: data}
}

// Dashboard returns the current sample dataset.
func (p *SampleProvider) Dashboard() *normalizer.DashboardResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data
}

// Reload replaces the dataset from an override file. A missing or invalid
// file leaves the current dataset in place and returns the error.
func (p *SampleProvider) Reload(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading samples override: %w", err)
	}
	data, err := parseSamples(raw)
	if err != nil {
		return fmt.Errorf("parsing samples override: %w", err)
	}

	p.mu.Lock()
	p.data = data
	p.mu.Unlock()
	return nil
}

func parseSamples(raw []byte) (*normalizer.DashboardResult, error) {
	var f sampleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}

	result := &normalizer.DashboardResult{}
	for _, r := range f.HighRiskCustomers {
		result.HighRiskCustomers = append(result.HighRiskCustomers, normalizer.CustomerSummary{
			CustomerID: r.CustomerID, CustomerName: r.Name, Email: r.Email, RiskScore: r.RiskScore,
		})
	}
	for _, r := range f.MultipleLocations {
		result.MultipleLocations = append(result.MultipleLocations, normalizer.LocationSpan{
			CustomerID: r.CustomerID, CustomerName: r.Name, Email: r.Email,
			StartTime: r.StartTime, EndTime: r.EndTime, LocationCount: r.LocationCount,
		})
	}
	for _, r := range f.LargeTransactions {
		result.LargeTransactions = append(result.LargeTransactions, normalizer.LargeTxSummary{
			CustomerID: r.CustomerID, CustomerName: r.Name, Email: r.Email,
			LargeTransactionCount: r.LargeTransactionCount,
		})
	}
	for _, r := range f.FrequentTransactions {
		result.FrequentTransactions = append(result.FrequentTransactions, normalizer.FrequentTxSummary{
			CustomerID: r.CustomerID, CustomerName: r.Name, Email: r.Email,
			FirstTime: r.FirstTime, LastTime: r.LastTime,
			TransactionCount: r.TransactionCount, TotalAmount: r.TotalAmount,
		})
	}
	return result, nil
}
