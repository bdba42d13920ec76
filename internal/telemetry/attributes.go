// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys used on spans.
const (
	SolutionKindKey   = "solution.kind"
	SolutionParamsKey = "solution.params"
	SolutionIDKey     = "solution.id"

	StudyIDKey    = "study.id"
	StudyCasesKey = "study.cases"

	TablePointsKey = "table.points"

	ViabilityAcceptableKey = "viability.acceptable"
	ViabilityFailedKey     = "viability.failed"

	ErrorTypeKey = "error.type"
)

// SolutionAttributes describes the solution a span works on.
func SolutionAttributes(kind, params, id string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(SolutionKindKey, kind),
		attribute.String(SolutionParamsKey, params),
	}
	if id != "" {
		attrs = append(attrs, attribute.String(SolutionIDKey, id))
	}
	return attrs
}

// StudyAttributes describes a study run.
func StudyAttributes(id string, cases int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(StudyIDKey, id),
		attribute.Int(StudyCasesKey, cases),
	}
}

// ViabilityAttributes records the outcome of an evaluation.
func ViabilityAttributes(points int, acceptable bool, failed []string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(TablePointsKey, points),
		attribute.Bool(ViabilityAcceptableKey, acceptable),
		attribute.StringSlice(ViabilityFailedKey, failed),
	}
}

// ErrorAttributes classifies a failure.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ErrorTypeKey, errorType),
	}
}
