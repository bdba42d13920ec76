// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// PingChecker reports unhealthy when ping fails. Used for the catalog
// database and a remote cache.
type PingChecker struct {
	name    string
	ping    func(context.Context) error
	timeout time.Duration
}

// NewPingChecker creates a checker around ping.
func NewPingChecker(name string, ping func(context.Context) error) *PingChecker {
	return &PingChecker{name: name, ping: ping, timeout: 2 * time.Second}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.ping(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}

// DirChecker verifies that a directory exists and accepts new files.
type DirChecker struct {
	name string
	path string
}

// NewDirChecker creates a checker for a writable directory.
func NewDirChecker(name, path string) *DirChecker {
	return &DirChecker{name: name, path: path}
}

func (c *DirChecker) Name() string { return c.name }

func (c *DirChecker) Check(context.Context) CheckResult {
	info, err := os.Stat(c.path)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: c.path}
	}
	if !info.IsDir() {
		return CheckResult{Status: StatusUnhealthy, Error: "expected directory, got file", Message: c.path}
	}
	f, err := os.CreateTemp(c.path, ".health-*")
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: "directory not writable: " + err.Error()}
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(filepath.Clean(name))
	return CheckResult{Status: StatusHealthy, Message: "writable"}
}

// LastStudyChecker degrades when the most recent study did not succeed.
type LastStudyChecker struct {
	lastStudy func(context.Context) (status string, finished time.Time, err error)
}

// NewLastStudyChecker creates a checker for the latest study outcome. The
// callback returns an empty status when no study has run.
func NewLastStudyChecker(lastStudy func(context.Context) (string, time.Time, error)) *LastStudyChecker {
	return &LastStudyChecker{lastStudy: lastStudy}
}

func (c *LastStudyChecker) Name() string { return "last_study" }

func (c *LastStudyChecker) Check(ctx context.Context) CheckResult {
	status, finished, err := c.lastStudy(ctx)
	switch {
	case err != nil:
		return CheckResult{Status: StatusDegraded, Error: err.Error()}
	case status == "":
		return CheckResult{Status: StatusHealthy, Message: "no study run yet"}
	case status == "running":
		return CheckResult{Status: StatusHealthy, Message: "study running"}
	case status == "ok":
		return CheckResult{Status: StatusHealthy, Message: "last study finished " + finished.UTC().Format(time.RFC3339)}
	}
	return CheckResult{Status: StatusDegraded, Message: "last study " + status}
}
