// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KodiakSystems/KodiakAML/services/agent"
)

// getOrCreateRequestID reuses an upstream X-Request-ID or mints one.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// handleDashboard serves GET /v1/aml/dashboard.
func (s *Service) handleDashboard(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	log := slog.With(slog.String("request_id", requestID))

	resp := s.Dashboard(c.Request.Context())
	log.Info("Dashboard served",
		slog.Uint64("generation", resp.Generation),
		slog.String("high_risk_source", resp.Sources["highRiskCustomers"]))

	c.Header("X-Request-ID", requestID)
	c.JSON(http.StatusOK, resp)
}

// handleAnalyze serves POST /v1/aml/customers/analyze.
//
// Validation failures never reach the agent. Agent-layer failures map to
// stable error codes so the UI can decide between its dismissible banner
// and a retry prompt.
func (s *Service) handleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	log := slog.With(slog.String("request_id", requestID))
	c.Header("X-Request-ID", requestID)

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.CustomerID) == "" {
		log.Warn("Rejected analysis request without customer id")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "customer_id is required",
			Code:      CodeValidationError,
			Retryable: false,
		})
		return
	}
	customerID := strings.TrimSpace(req.CustomerID)

	result, err := s.AnalyzeCustomer(c.Request.Context(), customerID)
	if err != nil {
		status, body := mapAgentError(err)
		log.Error("Customer analysis failed",
			slog.String("customer_id", customerID),
			slog.String("code", body.Code),
			slog.String("error", err.Error()))
		c.JSON(status, body)
		return
	}

	log.Info("Customer analysis served",
		slog.String("customer_id", customerID),
		slog.Int("transactions", len(result.Transactions)),
		slog.Int("risk_factors", len(result.RiskFactors)))
	c.JSON(http.StatusOK, result)
}

// mapAgentError translates agent client errors into HTTP status plus error
// body. Unknown errors stay generic.
func mapAgentError(err error) (int, ErrorResponse) {
	var scErr *agent.SessionCreationError
	if errors.As(err, &scErr) {
		return http.StatusBadGateway, ErrorResponse{
			Error:     "could not open an analysis session with the monitoring agent",
			Code:      CodeSessionCreationFailed,
			Retryable: true,
		}
	}

	var arErr *agent.AnalysisRequestError
	if errors.As(err, &arErr) {
		return http.StatusBadGateway, ErrorResponse{
			Error:     "the monitoring agent rejected the analysis request",
			Code:      CodeAnalysisRequestFailed,
			Retryable: true,
		}
	}

	var toErr *agent.TimeoutError
	if errors.As(err, &toErr) {
		return http.StatusGatewayTimeout, ErrorResponse{
			Error:     "the analysis did not complete in time",
			Code:      CodeAnalysisTimeout,
			Retryable: true,
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error:     "internal error",
		Code:      CodeInternalError,
		Retryable: false,
	}
}

// handleHealth reports liveness.
func (s *Service) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleReady reports readiness. The service is ready as soon as the sample
// dataset is loaded; agent reachability is intentionally not a readiness
// condition because the dashboard degrades to samples.
func (s *Service) handleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
