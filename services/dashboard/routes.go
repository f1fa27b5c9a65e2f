// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the AML API under /v1/aml.
func (s *Service) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/v1/aml")
	{
		v1.GET("/dashboard", s.handleDashboard)
		v1.POST("/customers/analyze", s.handleAnalyze)
		v1.GET("/health", s.handleHealth)
		v1.GET("/ready", s.handleReady)
	}
}
