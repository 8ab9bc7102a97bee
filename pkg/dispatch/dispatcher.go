/*
 * Copyright 2026 Netbatch Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package dispatch fans a batch out across a bounded pool of workers,
// one remote session per target, and fans the outcomes back in.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/netbatch/netbatch/pkg/logger"
	"github.com/netbatch/netbatch/pkg/models"
	"github.com/netbatch/netbatch/pkg/session"
)

const defaultMaxWorkers = 5

// Target is one resolved device endpoint with its effective vendor and
// credentials. Per-device overrides are applied before dispatch; this
// layer never sees a raw group reference.
type Target struct {
	Host     string
	Port     int
	Vendor   string
	Username string
	Password string
}

// Session is the per-device connection contract the dispatcher drives.
// pkg/session implements it over SSH; tests substitute fakes.
type Session interface {
	Open(ctx context.Context) error
	Run(ctx context.Context, cmd string) (string, error)
	RunAll(ctx context.Context, cmds []string) (map[string]string, error)
	RunConfig(ctx context.Context, cmds []string) (string, error)
	Close() error
}

// SessionFactory builds an unopened session for one target.
type SessionFactory interface {
	NewSession(target Target, timeout time.Duration) Session
}

// Handler executes the per-target work on an already-open session and
// returns the outcome. The dispatcher owns the session lifecycle;
// handlers only use it.
type Handler func(ctx context.Context, sess Session, target Target) (*models.Outcome, error)

// Batch describes one dispatch call.
type Batch struct {
	Targets    []Target
	MaxWorkers int
	Timeout    time.Duration
	Handler    Handler
}

// Outcomes is the per-target result collection, keyed by target host.
type Outcomes map[string]*models.Outcome

// Dispatcher coordinates bounded fan-out over remote sessions.
type Dispatcher struct {
	factory SessionFactory
	logger  zerolog.Logger
}

// New creates a dispatcher using the given session factory.
func New(factory SessionFactory, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		factory: factory,
		logger:  log.WithComponent("dispatch"),
	}
}

// NewSSH creates a dispatcher that opens real SSH sessions.
func NewSSH(log logger.Logger) *Dispatcher {
	return New(&sshFactory{log: log}, log)
}

// Run executes the batch and returns the batch ID plus one outcome per
// target. Targets must be unique by host. A worker failure of any kind
// is captured as a failed outcome and never aborts sibling workers;
// outcomes arrive in completion order, so callers must key by host,
// not position.
func (d *Dispatcher) Run(ctx context.Context, batch Batch) (string, Outcomes) {
	batchID := uuid.NewString()

	maxWorkers := batch.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}

	d.logger.Info().
		Str("batch_id", batchID).
		Int("targets", len(batch.Targets)).
		Int("max_workers", maxWorkers).
		Msg("Dispatching batch")

	outcomes := make(Outcomes, len(batch.Targets))

	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(maxWorkers)

	for _, t := range batch.Targets {
		target := t

		g.Go(func() error {
			outcome := d.runTarget(ctx, batch, target)

			mu.Lock()
			outcomes[target.Host] = outcome
			mu.Unlock()

			return nil
		})
	}

	// Workers never return errors; failures live in the outcomes.
	_ = g.Wait()

	d.logger.Info().
		Str("batch_id", batchID).
		Int("outcomes", len(outcomes)).
		Msg("Batch complete")

	return batchID, outcomes
}

// runTarget is the whole lifetime of one worker: acquire a session,
// execute, release. Panics and errors become a failed outcome.
func (d *Dispatcher) runTarget(ctx context.Context, batch Batch, target Target) (outcome *models.Outcome) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().
				Str("host", target.Host).
				Interface("panic", r).
				Msg("Worker panicked")

			outcome = failedOutcome(target.Host, start, fmt.Sprintf("worker panic: %v", r))
		}
	}()

	sess := d.factory.NewSession(target, batch.Timeout)
	defer func() { _ = sess.Close() }()

	if err := sess.Open(ctx); err != nil {
		d.logger.Warn().Err(err).Str("host", target.Host).Msg("Session open failed")

		return failedOutcome(target.Host, start, err.Error())
	}

	result, err := batch.Handler(ctx, sess, target)
	if err != nil {
		d.logger.Warn().Err(err).Str("host", target.Host).Msg("Target execution failed")

		return failedOutcome(target.Host, start, err.Error())
	}

	result.Target = target.Host
	result.Success = true
	result.Duration = time.Since(start)

	return result
}

func failedOutcome(host string, start time.Time, errMsg string) *models.Outcome {
	return &models.Outcome{
		Target:   host,
		Success:  false,
		Error:    errMsg,
		Duration: time.Since(start),
	}
}

// CommandHandler returns a Handler that runs a command set either in
// exec mode (independent per-command outputs) or in configuration mode
// (one combined blob).
func CommandHandler(commands []string, configMode bool) Handler {
	return func(ctx context.Context, sess Session, target Target) (*models.Outcome, error) {
		if configMode {
			out, err := sess.RunConfig(ctx, commands)
			if err != nil {
				return nil, err
			}

			return &models.Outcome{ConfigOutput: out}, nil
		}

		outputs, err := sess.RunAll(ctx, commands)
		if err != nil {
			return nil, err
		}

		return &models.Outcome{Outputs: outputs}, nil
	}
}

// sshFactory builds real SSH sessions from pkg/session.
type sshFactory struct {
	log logger.Logger
}

func (f *sshFactory) NewSession(target Target, timeout time.Duration) Session {
	return session.New(session.Config{
		Host:     target.Host,
		Port:     target.Port,
		Username: target.Username,
		Password: target.Password,
		Vendor:   target.Vendor,
		Timeout:  timeout,
	}, f.log)
}
