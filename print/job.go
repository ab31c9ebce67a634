// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"time"
)

// JobPhase is one stage of a print job's lifecycle. The successful
// sequence is Queued, Sending, Sent, Printing, Completed; failures
// branch to Failed, and caller-initiated aborts to Aborted. Exactly
// these seven phases exist.
type JobPhase int

// Job lifecycle phases.
const (
	JobQueued JobPhase = iota
	JobSending
	JobSent
	JobPrinting
	JobCompleted
	JobFailed
	JobAborted
)

func (p JobPhase) String() string {
	switch p {
	case JobQueued:
		return "queued"
	case JobSending:
		return "sending"
	case JobSent:
		return "sent"
	case JobPrinting:
		return "printing"
	case JobCompleted:
		return "completed"
	case JobFailed:
		return "failed"
	case JobAborted:
		return "aborted"
	}
	return "unknown"
}

// A Job tracks one ZPL batch through its lifecycle. An optional
// observer sees every phase transition.
type Job struct {
	phase    JobPhase
	observer func(JobPhase)
	err      error
}

// NewJob returns a job in the Queued phase. The observer may be nil.
func NewJob(observer func(JobPhase)) *Job {
	j := &Job{phase: JobQueued, observer: observer}
	if observer != nil {
		observer(JobQueued)
	}
	return j
}

// Phase returns the job's current phase.
func (j *Job) Phase() JobPhase {
	return j.phase
}

// Err returns the failure cause when the job is Failed.
func (j *Job) Err() error {
	return j.err
}

func (j *Job) transition(p JobPhase) {
	j.phase = p
	if j.observer != nil {
		j.observer(p)
	}
}

// Abort marks the job aborted. Only meaningful before completion.
func (j *Job) Abort() {
	if j.phase != JobCompleted && j.phase != JobFailed {
		j.transition(JobAborted)
	}
}

// CompletionOptions shape the post-send poll loop.
type CompletionOptions struct {
	// PollInterval between ~HS queries.
	PollInterval time.Duration
	// Timeout is the total budget for the printer to drain its queue.
	Timeout time.Duration
}

// DefaultCompletionOptions polls every second for up to two minutes.
func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{PollInterval: time.Second, Timeout: 2 * time.Minute}
}

// Run sends the batch and tracks it to completion on any transport that
// can both send and answer status queries.
func (j *Job) Run(p Printer, q StatusQuery, zpl string, opts CompletionOptions) error {
	j.transition(JobSending)
	if err := SendZPL(p, zpl); err != nil {
		j.err = err
		j.transition(JobFailed)
		return err
	}
	j.transition(JobSent)

	j.transition(JobPrinting)
	if err := waitForCompletion(q, opts.PollInterval, opts.Timeout); err != nil {
		j.err = err
		j.transition(JobFailed)
		return err
	}
	j.transition(JobCompleted)
	return nil
}

// WaitForCompletion polls ~HS at pollInterval until both the format
// buffer and the label queue reach zero, or the total timeout elapses.
// Hardware error conditions reported by the printer abort the wait.
func WaitForCompletion(q StatusQuery, pollInterval, timeout time.Duration) error {
	return waitForCompletion(q, pollInterval, timeout)
}

func waitForCompletion(q StatusQuery, pollInterval, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var last *HostStatus
	for {
		hs, err := QueryStatus(q)
		if err != nil {
			return err
		}
		last = hs

		if kinds := hs.ErrorKinds(); len(kinds) > 0 {
			return &Error{Kind: KindPrinterError, Printer: kinds[0]}
		}
		if hs.FormatsInBuffer == 0 && hs.LabelsRemaining == 0 {
			return nil
		}

		if !time.Now().Add(pollInterval).Before(deadline) {
			return &Error{
				Kind:            KindCompletionTimeout,
				FormatsInBuffer: last.FormatsInBuffer,
				LabelsRemaining: last.LabelsRemaining,
			}
		}
		time.Sleep(pollInterval)
	}
}
