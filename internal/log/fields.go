// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService    = "service"
	FieldVersion    = "version"
	FieldRequestID  = "request_id"
	FieldStudyID    = "study_id"
	FieldSolutionID = "solution_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Physics fields
	FieldKind   = "kind"
	FieldParams = "params"
	FieldPoints = "points"

	// Path fields
	FieldPath = "path"
)
