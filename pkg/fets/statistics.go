// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fets

import "time"

// Statistics tracks telemetry decoding on one instance
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time
	LastLockTime   time.Time // zero until the first frame matched

	// Counters
	Polls         uint64 // RecvData calls
	BytesDrained  uint64
	FramesMatched uint64

	// Rates (calculated)
	ByteRate  float64 // bytes/sec
	FrameRate float64 // frames/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one drain pass
func (s *Statistics) Update(drained, matched int, now time.Time) {
	s.Polls++
	s.BytesDrained += uint64(drained)
	s.FramesMatched += uint64(matched)
	s.LastUpdateTime = now
	if matched > 0 {
		s.LastLockTime = now
	}
}

// Locked reports whether any frame has matched yet
func (s *Statistics) Locked() bool {
	return s.FramesMatched > 0
}

// CalculateRates updates the per-second rates from the elapsed time
func (s *Statistics) CalculateRates(now time.Time) {
	elapsed := now.Sub(s.StartTime).Seconds()
	if elapsed <= 0 {
		return
	}
	s.ByteRate = float64(s.BytesDrained) / elapsed
	s.FrameRate = float64(s.FramesMatched) / elapsed
}

// Reset clears all counters and restarts the clock
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
