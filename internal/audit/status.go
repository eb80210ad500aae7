// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package audit

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"pwned-range/internal/checker"
	"sync"
	"sync/atomic"
	"time"
)

type status struct {
	submitted   uint64
	checked     uint64
	breached    uint64
	notFound    uint64
	unavailable uint64
	start       time.Time
	interval    time.Duration
	progress    chan struct{}
	stopOnce    sync.Once
}

func newStatus(interval time.Duration) *status {
	return &status{
		start:    time.Now(),
		interval: interval,
		progress: make(chan struct{}),
	}
}

// BeginProgress reports the progress of the audit every interval.
func (s *status) BeginProgress() {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-s.progress:
				return
			case <-ticker.C:
				checked := atomic.LoadUint64(&s.checked)
				submitted := atomic.LoadUint64(&s.submitted)
				log.Info().Msgf("%d of %d passwords checked. %.0f checks/s", checked, submitted, s.checksPerSecond())
			}
		}
	}()
}

func (s *status) Submitted() {
	atomic.AddUint64(&s.submitted, 1)
}

func (s *status) Checked(o checker.Outcome) {
	atomic.AddUint64(&s.checked, 1)
	switch o {
	case checker.Found:
		atomic.AddUint64(&s.breached, 1)
	case checker.NotFound:
		atomic.AddUint64(&s.notFound, 1)
	default:
		atomic.AddUint64(&s.unavailable, 1)
	}
}

func (s *status) checksPerSecond() float64 {
	elapsed := time.Since(s.start)
	checked := float64(atomic.LoadUint64(&s.checked))
	if elapsed.Nanoseconds() > 0 {
		return checked / elapsed.Seconds()
	}

	return checked
}

func (s *status) Done() {
	s.stopOnce.Do(func() {
		close(s.progress)
	})

	p := message.NewPrinter(language.English)
	log.Info().Msgf("finished checking %s passwords in %v. %.0f checks/s",
		p.Sprintf("%d", atomic.LoadUint64(&s.checked)), time.Since(s.start), s.checksPerSecond())
	log.Info().Msgf("breached: %s, not found: %s, unavailable: %s",
		p.Sprintf("%d", atomic.LoadUint64(&s.breached)),
		p.Sprintf("%d", atomic.LoadUint64(&s.notFound)),
		p.Sprintf("%d", atomic.LoadUint64(&s.unavailable)))
}
