// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package audit checks a list of passwords, one per line, against the range API.
// Every password is an independent single-attempt check; only the number of concurrent checks is bounded.
package audit

import (
	"bufio"
	"context"
	"github.com/jfcg/sorty/v2"
	"github.com/rs/zerolog/log"
	"github.com/thinhdanggroup/executor"
	"io"
	"pwned-range/internal/checker"
	"pwned-range/internal/util"
	"runtime"
	"sync"
	"time"
)

// ProgressInterval is how often a running audit logs its progress.
var ProgressInterval = 10 * time.Second

// Report never holds passwords, breached entries are identified by their line number in the input.
type Report struct {
	Checked     uint64
	Breached    uint64
	NotFound    uint64
	Unavailable uint64
	// BreachedLines is sorted ascending.
	BreachedLines []uint64
	// Counts maps a breached line to the number of times its password was seen.
	Counts map[uint64]int
}

type Auditor struct {
	checker     *checker.Checker
	parallelism int
	stat        *status
	mu          sync.Mutex
	report      Report
}

func NewAuditor(c *checker.Checker, parallelism int) *Auditor {
	return &Auditor{checker: c, parallelism: parallelism}
}

func (a *Auditor) threads() int {
	if a.parallelism > 0 {
		return a.parallelism
	}

	// The work is network bound, a few checks per core keeps the pool busy without hammering the API.
	return runtime.NumCPU() * 2
}

// Run checks every non-empty line of r. Lines longer than bufio.MaxScanTokenSize stop the audit with an error.
func (a *Auditor) Run(ctx context.Context, r io.Reader) (Report, error) {
	s := util.Stats()
	defer s()

	threads := a.threads()
	// This is a bounded thread pool. I just didn't want to implement it myself...
	tasks, err := executor.New(executor.Config{
		ReqPerSeconds: 0,
		QueueSize:     2 * threads,
		NumWorkers:    threads,
	})
	if err != nil {
		return Report{}, err
	}
	defer tasks.Close()

	a.report = Report{Counts: map[uint64]int{}}
	a.stat = newStatus(ProgressInterval)
	a.stat.BeginProgress()

	log.Info().Msgf("auditing passwords with %d threads, ^C to stop the process", threads)

	scanner := bufio.NewScanner(r)
	var line uint64
	for scanner.Scan() {
		line++
		password := scanner.Text()
		if password == "" {
			continue
		}

		if ctx.Err() != nil {
			break
		}

		a.stat.Submitted()
		check := func(line uint64, password string) {
			a.checkLine(ctx, line, password)
		}
		if err = tasks.Publish(check, line, password); err != nil {
			log.Panic().Err(err).Msgf("there is a programming error here.")
		}
	}

	tasks.Wait()
	a.stat.Done()

	if err = scanner.Err(); err != nil {
		return a.result(), err
	}

	return a.result(), ctx.Err()
}

func (a *Auditor) checkLine(ctx context.Context, line uint64, password string) {
	res, err := a.checker.Check(ctx, password)
	if err != nil {
		log.Warn().Err(err).Msgf("skipping line %d", line)
		return
	}

	a.stat.Checked(res.Outcome)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.report.Checked++
	switch res.Outcome {
	case checker.Found:
		a.report.Breached++
		a.report.BreachedLines = append(a.report.BreachedLines, line)
		a.report.Counts[line] = res.Count
		log.Debug().Msgf("line %d was found %d times", line, res.Count)
	case checker.NotFound:
		a.report.NotFound++
	default:
		a.report.Unavailable++
	}
}

func (a *Auditor) result() Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	sorty.SortSlice(a.report.BreachedLines)
	return a.report
}
