// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import "fmt"

// SessionCreationError reports a non-2xx response while creating an agent
// session.
type SessionCreationError struct {
	Status int
}

func (e *SessionCreationError) Error() string {
	return fmt.Sprintf("agent session creation failed with status %d", e.Status)
}

// AnalysisRequestError reports a non-2xx response from an analysis run.
type AnalysisRequestError struct {
	Status int
}

func (e *AnalysisRequestError) Error() string {
	return fmt.Sprintf("agent analysis request failed with status %d", e.Status)
}

// TimeoutError reports that an agent call exceeded its deadline. Op names
// the operation that timed out (e.g. "create_session", "analyze").
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("agent %s timed out: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
