// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package catalog persists studies and the solutions they produced.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/ManuGH/eosgen/internal/solution"
)

// ErrNotFound is returned when a study or solution does not exist.
var ErrNotFound = errors.New("not found")

// StudyStatus is running|ok|degraded|failed|canceled.
type StudyStatus string

const (
	StudyRunning  StudyStatus = "running"
	StudyOK       StudyStatus = "ok"       // every case produced a table
	StudyDegraded StudyStatus = "degraded" // some cases failed
	StudyFailed   StudyStatus = "failed"   // no case succeeded
	StudyCanceled StudyStatus = "canceled"
)

// String returns the string representation of StudyStatus.
func (s StudyStatus) String() string {
	return string(s)
}

// Study is one parameter study run.
type Study struct {
	ID         string      `json:"id"`
	Status     StudyStatus `json:"status"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
	TotalCases int         `json:"total_cases"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Acceptable int         `json:"acceptable"`
	Error      string      `json:"error,omitempty"`
}

// StudyOutcome is recorded when a study finishes.
type StudyOutcome struct {
	Status     StudyStatus
	Successful int
	Failed     int
	Acceptable int
	Error      string
}

// Record is a catalogued solution. Report holds the viability report as JSON.
type Record struct {
	ID              string             `json:"id"`
	Kind            solution.Kind      `json:"kind"`
	Params          map[string]float64 `json:"params"`
	StudyID         string             `json:"study_id,omitempty"`
	File            string             `json:"file"`
	Points          int                `json:"points"`
	Acceptable      bool               `json:"acceptable"`
	CentralDensity  float64            `json:"central_density"`
	CentralPressure float64            `json:"central_pressure"`
	BoundaryRadius  float64            `json:"boundary_radius"`
	Compactness     float64            `json:"compactness"`
	Report          json.RawMessage    `json:"report,omitempty"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Filter narrows ListSolutions. Zero values match everything.
type Filter struct {
	Kind       solution.Kind
	StudyID    string
	Acceptable *bool
}

// SolutionID derives a stable identifier from kind and parameters, so the
// same configuration generated by two studies maps to one record.
func SolutionID(kind solution.Kind, params solution.Params) string {
	sum := sha256.Sum256([]byte(string(kind) + "|" + params.String()))
	return "sol-" + hex.EncodeToString(sum[:8])
}
