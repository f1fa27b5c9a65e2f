// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package agent is the HTTP client for the remote AML analysis agent. The
// agent exposes a session-scoped run API: a session is created per query,
// then the customer id is submitted as a message and the agent answers with
// an ordered array of step-events (see services/normalizer for their shape).
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

// Session identifies one analysis conversation with the agent.
type Session struct {
	UserID    string
	SessionID string
}

// Client talks to the agent API.
//
// Thread Safety: safe for concurrent use. The rate limiter serializes
// admission; the underlying http.Client is concurrency-safe.
type Client struct {
	baseURL string
	appName string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a Client from the given configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		appName: cfg.AppName,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.MaxRPS), cfg.MaxRPS),
	}
}

// NewClientFromEnv builds a Client from environment configuration.
func NewClientFromEnv() (*Client, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewClient(cfg), nil
}

// runRequest is the wire shape of the /run and /run_sse request body.
type runRequest struct {
	AppName    string     `json:"app_name"`
	UserID     string     `json:"user_id"`
	SessionID  string     `json:"session_id"`
	NewMessage runMessage `json:"new_message"`
	Streaming  bool       `json:"streaming"`
}

type runMessage struct {
	Role  string    `json:"role"`
	Parts []runPart `json:"parts"`
}

type runPart struct {
	Text string `json:"text"`
}

// CreateSession opens a fresh analysis session.
//
// Description:
//
//	Generates unique user and session ids, POSTs the session resource and
//	verifies the response carries an id. A non-2xx status yields a
//	*SessionCreationError; a deadline overrun yields a *TimeoutError.
//
// Outputs: the created Session, or an error.
func (c *Client) CreateSession(ctx context.Context) (Session, error) {
	ctx, span := tracer.Start(ctx, "agent.CreateSession")
	defer span.End()
	start := time.Now()
	defer func() { callDuration.WithLabelValues("create_session").Observe(time.Since(start).Seconds()) }()

	session := Session{
		UserID:    "user_" + uuid.NewString(),
		SessionID: "session_" + uuid.NewString(),
	}
	span.SetAttributes(attribute.String("agent.session_id", session.SessionID))

	url := fmt.Sprintf("%s/apps/%s/users/%s/sessions/%s",
		c.baseURL, c.appName, session.UserID, session.SessionID)

	body, status, err := c.post(ctx, "create_session", url, map[string]any{"state": map[string]any{}})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Session{}, err
	}
	if status < 200 || status >= 300 {
		callErrors.WithLabelValues("create_session", "status").Inc()
		span.SetStatus(codes.Error, "non-2xx status")
		return Session{}, &SessionCreationError{Status: status}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		callErrors.WithLabelValues("create_session", "body").Inc()
		span.SetStatus(codes.Error, "session response missing id")
		return Session{}, fmt.Errorf("agent session response carried no id")
	}
	return session, nil
}

// Analyze submits text (a customer id) for analysis and returns the raw
// step-event messages.
//
// Description:
//
//	POSTs /run with streaming disabled. The agent normally answers with a
//	JSON array of step-events; a single-object answer is wrapped as a
//	one-event sequence. A non-2xx status yields an *AnalysisRequestError;
//	a deadline overrun yields a *TimeoutError.
func (c *Client) Analyze(ctx context.Context, session Session, text string) ([]json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "agent.Analyze")
	defer span.End()
	start := time.Now()
	defer func() { callDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds()) }()

	req := runRequest{
		AppName:    c.appName,
		UserID:     session.UserID,
		SessionID:  session.SessionID,
		NewMessage: runMessage{Role: "user", Parts: []runPart{{Text: text}}},
		Streaming:  false,
	}

	body, status, err := c.post(ctx, "analyze", c.baseURL+"/run", req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if status < 200 || status >= 300 {
		callErrors.WithLabelValues("analyze", "status").Inc()
		span.SetStatus(codes.Error, "non-2xx status")
		return nil, &AnalysisRequestError{Status: status}
	}

	msgs, err := splitEventPayload(body)
	if err != nil {
		callErrors.WithLabelValues("analyze", "body").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("agent.event_count", len(msgs)))
	return msgs, nil
}

// AnalyzeStream submits text for analysis over the streaming endpoint and
// collects the streamed step-events.
//
// Description:
//
//	POSTs /run_sse with streaming enabled and parses the server-sent event
//	stream ("data: <json>" lines). Malformed lines are skipped with a
//	warning; they never abort the stream. Returns the events received in
//	order.
func (c *Client) AnalyzeStream(ctx context.Context, session Session, text string) ([]json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "agent.AnalyzeStream")
	defer span.End()
	start := time.Now()
	defer func() { callDuration.WithLabelValues("analyze_stream").Observe(time.Since(start).Seconds()) }()

	req := runRequest{
		AppName:    c.appName,
		UserID:     session.UserID,
		SessionID:  session.SessionID,
		NewMessage: runMessage{Role: "user", Parts: []runPart{{Text: text}}},
		Streaming:  true,
	}

	resp, err := c.postStream(ctx, "analyze_stream", c.baseURL+"/run_sse", req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		callErrors.WithLabelValues("analyze_stream", "status").Inc()
		span.SetStatus(codes.Error, "non-2xx status")
		return nil, &AnalysisRequestError{Status: resp.StatusCode}
	}

	msgs, err := readSSE(resp.Body)
	if err != nil {
		if wrapped := c.classifyTimeout("analyze_stream", err); wrapped != nil {
			span.SetStatus(codes.Error, wrapped.Error())
			return nil, wrapped
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("reading agent event stream: %w", err)
	}
	span.SetAttributes(attribute.Int("agent.event_count", len(msgs)))
	return msgs, nil
}

// post sends a JSON body and drains the response. Transport errors are
// classified into *TimeoutError where applicable.
func (c *Client) post(ctx context.Context, op, url string, payload any) ([]byte, int, error) {
	resp, err := c.postStream(ctx, op, url, payload)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if wrapped := c.classifyTimeout(op, err); wrapped != nil {
			return nil, 0, wrapped
		}
		return nil, 0, fmt.Errorf("reading agent response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) postStream(ctx context.Context, op, url string, payload any) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for agent rate limit: %w", err)
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding agent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("building agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		callErrors.WithLabelValues(op, "transport").Inc()
		if wrapped := c.classifyTimeout(op, err); wrapped != nil {
			return nil, wrapped
		}
		return nil, fmt.Errorf("calling agent: %w", err)
	}
	return resp, nil
}

// classifyTimeout maps deadline-style transport failures onto *TimeoutError.
// Returns nil when err is not a timeout.
func (c *Client) classifyTimeout(op string, err error) error {
	var ne interface{ Timeout() bool }
	switch {
	case errors.Is(err, context.DeadlineExceeded):
	case errors.As(err, &ne) && ne.Timeout():
	default:
		return nil
	}
	slog.Warn("Agent call exceeded its deadline",
		slog.String("operation", op),
		slog.String("error", err.Error()))
	callErrors.WithLabelValues(op, "timeout").Inc()
	return &TimeoutError{Op: op, Err: err}
}

// splitEventPayload splits a /run response into raw step-event messages,
// wrapping a single-object response as one event.
func splitEventPayload(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var msgs []json.RawMessage
		if err := json.Unmarshal(trimmed, &msgs); err != nil {
			return nil, fmt.Errorf("decoding agent event array: %w", err)
		}
		return msgs, nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("agent response is not valid JSON")
	}
	return []json.RawMessage{trimmed}, nil
}
