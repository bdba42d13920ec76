// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package study runs parameter studies: every case is sampled, evaluated,
// written to the data directory and catalogued.
package study

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/eosgen/internal/catalog"
	"github.com/ManuGH/eosgen/internal/dataset"
	xglog "github.com/ManuGH/eosgen/internal/log"
	"github.com/ManuGH/eosgen/internal/metrics"
	"github.com/ManuGH/eosgen/internal/profile"
	"github.com/ManuGH/eosgen/internal/telemetry"
	"github.com/ManuGH/eosgen/internal/viability"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ErrRunning is returned when a study is already in progress.
var ErrRunning = errors.New("study already running")

// Catalog is the subset of the catalogue store used by the runner.
type Catalog interface {
	CreateStudy(ctx context.Context, id string, totalCases int) (*catalog.Study, error)
	FinishStudy(ctx context.Context, id string, out catalog.StudyOutcome) error
	UpsertSolution(ctx context.Context, rec catalog.Record) error
}

// Options configures a Runner.
type Options struct {
	OutputDir  string
	Points     int
	Workers    int
	Profile    profile.Options
	Tolerances viability.Tolerances
}

// Result is the outcome of a finished study.
type Result struct {
	StudyID    string
	Status     catalog.StudyStatus
	Acceptable int
	Summary    dataset.Summary
	Err        error
}

// Runner executes one study at a time.
type Runner struct {
	store Catalog
	opts  Options

	mu sync.Mutex // held while a study runs
	wg sync.WaitGroup

	now   func() time.Time
	newID func() string
}

// NewRunner creates a runner. store may be nil, in which case nothing is
// catalogued.
func NewRunner(store Catalog, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{
		store: store,
		opts:  opts,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Start begins a study in the background and returns its ID and a channel
// that receives the result once. It returns ErrRunning while another study
// holds the runner.
func (r *Runner) Start(ctx context.Context, cases []Case) (string, <-chan Result, error) {
	if !r.mu.TryLock() {
		return "", nil, ErrRunning
	}
	id := r.newID()
	if r.store != nil {
		if _, err := r.store.CreateStudy(ctx, id, len(cases)); err != nil {
			r.mu.Unlock()
			return "", nil, fmt.Errorf("create study: %w", err)
		}
	}

	done := make(chan Result, 1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		res := r.execute(ctx, id, cases)
		r.mu.Unlock()
		done <- res
		close(done)
	}()
	return id, done, nil
}

// Run executes a study and waits for it.
func (r *Runner) Run(ctx context.Context, cases []Case) (Result, error) {
	_, done, err := r.Start(ctx, cases)
	if err != nil {
		return Result{}, err
	}
	res := <-done
	return res, res.Err
}

// Running reports whether a study holds the runner.
func (r *Runner) Running() bool {
	if r.mu.TryLock() {
		r.mu.Unlock()
		return false
	}
	return true
}

// Wait blocks until background studies have finished.
func (r *Runner) Wait() { r.wg.Wait() }

func (r *Runner) execute(ctx context.Context, id string, cases []Case) Result {
	started := r.now()
	metrics.StudiesRunning.Inc()
	defer metrics.StudiesRunning.Dec()

	ctx = xglog.ContextWithStudyID(ctx, id)
	logger := xglog.WithComponentFromContext(ctx, "study")
	ctx, span := telemetry.Tracer("eosgen/study").Start(ctx, "study.run",
		trace.WithAttributes(telemetry.StudyAttributes(id, len(cases))...))
	defer span.End()

	logger.Info().
		Str(xglog.FieldEvent, "study.started").
		Int("cases", len(cases)).
		Int("workers", r.opts.Workers).
		Msg("study started")

	results := make([]dataset.CaseResult, len(cases))
	for i, c := range cases {
		results[i] = dataset.CaseResult{Kind: c.Kind, Params: c.Params, Error: "not run"}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, c := range cases {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.runCase(gctx, id, c)
			return nil
		})
	}
	runErr := g.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}

	res := Result{StudyID: id}
	summary := dataset.Summary{StudyID: id, Timestamp: started.UTC(), TotalCases: len(cases), Results: results}
	for _, cr := range results {
		if cr.Valid {
			summary.Successful++
		} else {
			summary.Failed++
		}
		if cr.Acceptable {
			res.Acceptable++
		}
	}
	res.Summary = summary

	switch {
	case runErr != nil:
		res.Status = catalog.StudyCanceled
		res.Err = runErr
	case len(cases) > 0 && summary.Successful == 0:
		res.Status = catalog.StudyFailed
	case summary.Failed > 0:
		res.Status = catalog.StudyDegraded
	default:
		res.Status = catalog.StudyOK
	}

	// The artefacts and the catalogue row are written even for canceled
	// studies so the partial outcome stays inspectable.
	finishCtx := context.WithoutCancel(ctx)
	if err := dataset.WriteSummary(finishCtx, filepath.Join(r.opts.OutputDir, dataset.SummaryFile), summary); err != nil {
		res.Err = errors.Join(res.Err, err)
	}
	if err := dataset.WriteIndex(finishCtx, filepath.Join(r.opts.OutputDir, dataset.IndexFile), results); err != nil {
		res.Err = errors.Join(res.Err, err)
	}
	if res.Err != nil && res.Status != catalog.StudyCanceled {
		res.Status = catalog.StudyFailed
	}

	if r.store != nil {
		out := catalog.StudyOutcome{
			Status:     res.Status,
			Successful: summary.Successful,
			Failed:     summary.Failed,
			Acceptable: res.Acceptable,
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		if err := r.store.FinishStudy(finishCtx, id, out); err != nil {
			res.Err = errors.Join(res.Err, fmt.Errorf("finish study: %w", err))
		}
	}

	elapsed := r.now().Sub(started)
	metrics.ObserveStudy(res.Status.String(), elapsed)
	span.SetAttributes(telemetry.StudyAttributes(id, len(cases))...)
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Status.String())
	}

	evt := logger.Info()
	if res.Status != catalog.StudyOK {
		evt = logger.Warn().AnErr("error", res.Err)
	}
	evt.
		Str(xglog.FieldEvent, "study.finished").
		Str("status", res.Status.String()).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Int("acceptable", res.Acceptable).
		Dur("duration", elapsed).
		Msg("study finished")
	return res
}

func (r *Runner) runCase(ctx context.Context, studyID string, c Case) dataset.CaseResult {
	res := dataset.CaseResult{Kind: c.Kind, Params: c.Params}
	kind := string(c.Kind)

	ctx, span := telemetry.Tracer("eosgen/study").Start(ctx, "study.case")
	defer span.End()
	logger := xglog.WithComponentFromContext(ctx, "study").With().
		Str(xglog.FieldKind, kind).
		Str(xglog.FieldParams, c.ordered().String()).
		Logger()

	fail := func(stage string, err error) dataset.CaseResult {
		res.Valid = false
		res.Error = err.Error()
		metrics.RecordCase(kind, metrics.OutcomeFailed)
		span.RecordError(err)
		span.SetAttributes(telemetry.ErrorAttributes(stage)...)
		span.SetStatus(codes.Error, stage)
		logger.Warn().Err(err).Str(xglog.FieldEvent, "study.case_failed").Str("stage", stage).Msg("case failed")
		return res
	}

	an, err := Analyze(c, r.opts.Points, r.opts.Profile, r.opts.Tolerances)
	if err != nil {
		return fail("analyze", err)
	}
	table, rep := an.Table, an.Report
	params := an.Solution.Params()
	res.SolutionID = catalog.SolutionID(c.Kind, params)
	span.SetAttributes(telemetry.SolutionAttributes(kind, params.String(), res.SolutionID)...)

	name := dataset.FileName(c.Kind, params)
	if err := dataset.WriteTable(ctx, filepath.Join(r.opts.OutputDir, name), table); err != nil {
		return fail("write", err)
	}

	res.Valid = true
	res.Acceptable = rep.Acceptable
	res.DataPoints = len(table.Rows)
	res.File = name
	res.CentralDensity = rep.CentralDensity
	res.CentralPressure = rep.CentralPressure
	res.BoundaryRadius = rep.BoundaryRadius
	res.Compactness = rep.Compactness
	res.PhysicalChecks = make(map[viability.Criterion]bool, len(rep.Checks))
	for _, check := range rep.Checks {
		res.PhysicalChecks[check.Criterion] = check.Passed
	}
	if rep.EoS != nil {
		maxErr := rep.EoS.MaxPercent
		res.EoSError = &maxErr
	}

	if r.store != nil {
		raw, err := json.Marshal(rep)
		if err != nil {
			return fail("report", err)
		}
		rec := catalog.Record{
			ID:              res.SolutionID,
			Kind:            c.Kind,
			Params:          params.Map(),
			StudyID:         studyID,
			File:            name,
			Points:          res.DataPoints,
			Acceptable:      rep.Acceptable,
			CentralDensity:  rep.CentralDensity,
			CentralPressure: rep.CentralPressure,
			BoundaryRadius:  rep.BoundaryRadius,
			Compactness:     rep.Compactness,
			Report:          raw,
		}
		if err := r.store.UpsertSolution(ctx, rec); err != nil {
			return fail("catalog", err)
		}
	}

	failed := rep.Failed()
	names := make([]string, len(failed))
	for i, f := range failed {
		names[i] = string(f)
		metrics.RecordCriterionFailure(kind, string(f))
	}
	accepted := 0
	for _, row := range table.Rows {
		accepted += row.Label
	}
	metrics.RecordPoints(kind, accepted, len(table.Rows)-accepted)
	outcome := metrics.OutcomeRejected
	if rep.Acceptable {
		outcome = metrics.OutcomeAcceptable
	}
	metrics.RecordCase(kind, outcome)
	span.SetAttributes(telemetry.ViabilityAttributes(len(table.Rows), rep.Acceptable, names)...)

	logger.Debug().
		Str(xglog.FieldEvent, "study.case_done").
		Str(xglog.FieldSolutionID, res.SolutionID).
		Int(xglog.FieldPoints, len(table.Rows)).
		Bool("acceptable", rep.Acceptable).
		Str("failed", strings.Join(names, ",")).
		Msg("case processed")
	return res
}
