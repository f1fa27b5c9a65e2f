// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package dashboard serves the two AML monitoring screens: the dashboard
// overview (four independent result sets) and the single-customer analysis
// lookup. It owns the fallback policy: network failures toward the agent
// surface as JSON errors on the analysis path and as sample data on the
// dashboard path, while data-shape problems inside agent output never
// surface as errors at all (the normalizer degrades them to sentinel data).
package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/KodiakSystems/KodiakAML/services/agent"
	"github.com/KodiakSystems/KodiakAML/services/normalizer"
)

// dashboardQuery is the message that asks the agent for the overview sets.
const dashboardQuery = "dashboard overview"

// AgentClient is the slice of the agent API this service consumes.
type AgentClient interface {
	CreateSession(ctx context.Context) (agent.Session, error)
	Analyze(ctx context.Context, session agent.Session, text string) ([]json.RawMessage, error)
}

// Service coordinates agent calls, normalization, caching and fallback.
//
// Thread Safety: safe for concurrent use.
type Service struct {
	agent   AgentClient
	samples *SampleProvider
	cache   *AnalysisCache

	// generation orders dashboard refreshes. A refresh only publishes its
	// snapshot when no newer refresh finished first, so slow responses can
	// never clobber fresh data.
	generation atomic.Uint64

	snapMu   sync.RWMutex
	snapshot *DashboardResponse

	refresh singleflight.Group
}

// NewService wires a Service. cache may be nil (caching disabled).
func NewService(agentClient AgentClient, samples *SampleProvider, cache *AnalysisCache) *Service {
	return &Service{
		agent:   agentClient,
		samples: samples,
		cache:   cache,
	}
}

// Dashboard returns the overview result sets.
//
// Description:
//
//	Refreshes from the agent, deduplicating concurrent refreshes through
//	singleflight. Each of the four sets independently falls back to the
//	sample dataset when the agent call fails or the set comes back empty;
//	the response's Sources map records live or sample per set. Dashboard
//	never returns an error: the sample dataset is always available.
func (s *Service) Dashboard(ctx context.Context) *DashboardResponse {
	gen := s.generation.Add(1)

	v, _, _ := s.refresh.Do("dashboard", func() (any, error) {
		return s.refreshDashboard(ctx, gen), nil
	})
	resp := v.(*DashboardResponse)

	// A deduplicated caller may receive a snapshot published by an earlier
	// generation; that snapshot is still the newest one available.
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	if s.snapshot != nil && s.snapshot.Generation > resp.Generation {
		return s.snapshot
	}
	return resp
}

func (s *Service) refreshDashboard(ctx context.Context, gen uint64) *DashboardResponse {
	live := s.fetchLive(ctx)
	sample := s.samples.Dashboard()

	resp := &DashboardResponse{
		Generation: gen,
		Sources:    make(map[string]string, 4),
	}

	resp.HighRiskCustomers = live.HighRiskCustomers
	resp.Sources["highRiskCustomers"] = SourceLive
	if len(resp.HighRiskCustomers) == 0 {
		resp.HighRiskCustomers = sample.HighRiskCustomers
		resp.Sources["highRiskCustomers"] = SourceSample
	}

	resp.MultipleLocations = live.MultipleLocations
	resp.Sources["multipleLocations"] = SourceLive
	if len(resp.MultipleLocations) == 0 {
		resp.MultipleLocations = sample.MultipleLocations
		resp.Sources["multipleLocations"] = SourceSample
	}

	resp.LargeTransactions = live.LargeTransactions
	resp.Sources["largeTransactions"] = SourceLive
	if len(resp.LargeTransactions) == 0 {
		resp.LargeTransactions = sample.LargeTransactions
		resp.Sources["largeTransactions"] = SourceSample
	}

	resp.FrequentTransactions = live.FrequentTransactions
	resp.Sources["frequentTransactions"] = SourceLive
	if len(resp.FrequentTransactions) == 0 {
		resp.FrequentTransactions = sample.FrequentTransactions
		resp.Sources["frequentTransactions"] = SourceSample
	}

	s.publish(resp)
	return s.newestSnapshot(resp)
}

// fetchLive runs the agent round trip for the overview. Any failure yields
// an empty result so every set falls back to samples.
func (s *Service) fetchLive(ctx context.Context) *normalizer.DashboardResult {
	session, err := s.agent.CreateSession(ctx)
	if err != nil {
		slog.Warn("Dashboard refresh could not open agent session, serving samples",
			slog.String("error", err.Error()))
		return &normalizer.DashboardResult{}
	}

	msgs, err := s.agent.Analyze(ctx, session, dashboardQuery)
	if err != nil {
		slog.Warn("Dashboard refresh analysis failed, serving samples",
			slog.String("error", err.Error()))
		return &normalizer.DashboardResult{}
	}

	return normalizer.NormalizeDashboard(normalizer.ResolveEvents(msgs))
}

// publish installs resp as the current snapshot unless a newer generation
// already landed.
func (s *Service) publish(resp *DashboardResponse) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if s.snapshot != nil && s.snapshot.Generation > resp.Generation {
		slog.Debug("Discarding stale dashboard refresh",
			slog.Uint64("stale_generation", resp.Generation),
			slog.Uint64("current_generation", s.snapshot.Generation))
		return
	}
	s.snapshot = resp
}

func (s *Service) newestSnapshot(fallback *DashboardResponse) *DashboardResponse {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	if s.snapshot != nil {
		return s.snapshot
	}
	return fallback
}

// AnalyzeCustomer runs the single-customer analysis flow.
//
// Description:
//
//	Cache hit short-circuits the agent entirely. Otherwise: session create,
//	analyze, normalize. Agent-layer errors (session, request, timeout)
//	propagate to the handler for JSON error mapping; normalization always
//	succeeds, possibly with the sentinel fallback record set, and
//	successful results are cached.
func (s *Service) AnalyzeCustomer(ctx context.Context, customerID string) (*normalizer.AnalysisResult, error) {
	if cached, ok := s.cache.Get(customerID); ok {
		slog.Debug("Serving analysis from cache", slog.String("customer_id", customerID))
		return cached, nil
	}

	session, err := s.agent.CreateSession(ctx)
	if err != nil {
		return nil, err
	}

	msgs, err := s.agent.Analyze(ctx, session, customerID)
	if err != nil {
		return nil, err
	}

	result := normalizer.Normalize(normalizer.ResolveEvents(msgs), customerID)
	if result.Profile != nil && result.Profile.CustomerName != "Data Processing Error" {
		s.cache.Put(customerID, result)
	}
	return result, nil
}
