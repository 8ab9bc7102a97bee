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

// Package session owns one authenticated SSH connection to one device.
package session

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"

	"github.com/netbatch/netbatch/pkg/logger"
)

// State tracks the session lifecycle. Disconnected is terminal once the
// session has been used; Failed is terminal and reached only from
// Connecting or Authenticated.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticated
	StateExecuting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateExecuting:
		return "executing"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const defaultTimeout = 30 * time.Second

// Config holds everything needed to reach and authenticate one device.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Vendor   string
	Timeout  time.Duration
}

// Session is a transient, per-execution SSH connection. It is never
// shared across workers and must be closed by the code path that
// opened it, on success or failure.
type Session struct {
	cfg      Config
	platform Platform
	logger   zerolog.Logger

	mu     sync.Mutex
	state  State
	client *ssh.Client
	closed bool
}

// New builds an unopened session. No I/O happens until Open.
func New(cfg Config, log logger.Logger) *Session {
	if cfg.Port == 0 {
		cfg.Port = 22
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Session{
		cfg:      cfg,
		platform: PlatformFor(cfg.Vendor),
		logger:   log.WithComponent("session"),
		state:    StateDisconnected,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Platform returns the vendor profile resolved for this session.
func (s *Session) Platform() Platform {
	return s.platform
}

// Open dials and authenticates within the configured timeout. A failure
// is terminal for this session; there is no retry at this layer.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateDisconnected || s.closed {
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot open session in state %s", ErrConnectionFailed, s.state)
	}

	s.state = StateConnecting
	s.mu.Unlock()

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var dialer net.Dialer

	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		s.fail()
		return fmt.Errorf("%w: %s: %s", ErrConnectionFailed, s.cfg.Host, err)
	}

	sshCfg := &ssh.ClientConfig{
		User: s.cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(s.cfg.Password),
			ssh.KeyboardInteractive(passwordResponder(s.cfg.Password)),
		},
		// Fleet devices are trusted through the inventory, not a
		// known_hosts file.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
		Timeout:         s.cfg.Timeout,
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		_ = conn.Close()
		s.fail()

		return classifyHandshakeError(s.cfg.Host, err)
	}

	s.mu.Lock()
	s.client = ssh.NewClient(clientConn, chans, reqs)
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.logger.Debug().Str("host", s.cfg.Host).Msg("Session authenticated")

	return nil
}

// Run executes a single command and returns its raw text output.
func (s *Session) Run(ctx context.Context, cmd string) (string, error) {
	client, err := s.beginExec()
	if err != nil {
		return "", err
	}
	defer s.endExec()

	return s.runOnce(ctx, client, cmd)
}

// RunAll executes each command in order and captures every output
// independently. One command's failure does not abort the rest; the
// failed command maps to an empty output.
func (s *Session) RunAll(ctx context.Context, cmds []string) (map[string]string, error) {
	client, err := s.beginExec()
	if err != nil {
		return nil, err
	}
	defer s.endExec()

	outputs := make(map[string]string, len(cmds))

	for _, cmd := range cmds {
		out, err := s.runOnce(ctx, client, cmd)
		if err != nil {
			s.logger.Warn().Err(err).Str("host", s.cfg.Host).Str("command", cmd).
				Msg("Command failed, continuing with remaining commands")

			outputs[cmd] = ""

			if ctx.Err() != nil {
				return outputs, fmt.Errorf("%w: %s", ErrCommandFailed, ctx.Err())
			}

			continue
		}

		outputs[cmd] = out
	}

	return outputs, nil
}

// RunConfig enters the vendor's configuration context, applies the
// commands in order inside one interactive shell, and returns the
// combined output.
func (s *Session) RunConfig(ctx context.Context, cmds []string) (string, error) {
	client, err := s.beginExec()
	if err != nil {
		return "", err
	}
	defer s.endExec()

	sess, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrCommandFailed, s.cfg.Host, err)
	}
	defer func() { _ = sess.Close() }()

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}

	if err := sess.RequestPty("vt100", 80, 200, modes); err != nil {
		return "", fmt.Errorf("%w: %s: pty request: %s", ErrCommandFailed, s.cfg.Host, err)
	}

	stdin, err := sess.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrCommandFailed, s.cfg.Host, err)
	}

	var buf bytes.Buffer

	sess.Stdout = &buf
	sess.Stderr = &buf

	if err := sess.Shell(); err != nil {
		return "", fmt.Errorf("%w: %s: shell: %s", ErrCommandFailed, s.cfg.Host, err)
	}

	script := make([]string, 0, len(cmds)+len(s.platform.ConfigEnter)+len(s.platform.ConfigExit)+1)
	script = append(script, s.platform.ConfigEnter...)
	script = append(script, cmds...)
	script = append(script, s.platform.ConfigExit...)
	script = append(script, "exit")

	for _, line := range script {
		if _, err := fmt.Fprintf(stdin, "%s\n", line); err != nil {
			break
		}
	}

	_ = stdin.Close()

	done := make(chan error, 1)

	go func() { done <- sess.Wait() }()

	select {
	case <-ctx.Done():
		return buf.String(), fmt.Errorf("%w: %s: %s", ErrCommandFailed, s.cfg.Host, ctx.Err())
	case err := <-done:
		if err != nil {
			// Network gear often closes the channel without a clean
			// exit status once "exit" is sent; the captured output is
			// still the result.
			s.logger.Debug().Err(err).Str("host", s.cfg.Host).Msg("Config shell closed uncleanly")
		}
	}

	return buf.String(), nil
}

// Close releases the underlying connection. It is idempotent and safe
// to call from any state.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	client := s.client
	s.client = nil

	if s.state != StateFailed {
		s.state = StateDisconnected
	}

	if client != nil {
		return client.Close()
	}

	return nil
}

func (s *Session) fail() {
	s.mu.Lock()
	s.state = StateFailed
	s.mu.Unlock()
}

// beginExec validates the state and transitions into Executing.
func (s *Session) beginExec() (*ssh.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.client == nil ||
		(s.state != StateAuthenticated && s.state != StateExecuting) {
		return nil, fmt.Errorf("%w: %s (state %s)", ErrNotConnected, s.cfg.Host, s.state)
	}

	s.state = StateExecuting

	return s.client, nil
}

func (s *Session) endExec() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateExecuting {
		s.state = StateAuthenticated
	}
}

// runOnce runs one command in its own exec channel, honoring ctx.
func (s *Session) runOnce(ctx context.Context, client *ssh.Client, cmd string) (string, error) {
	sess, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrCommandFailed, s.cfg.Host, err)
	}
	defer func() { _ = sess.Close() }()

	type execResult struct {
		out []byte
		err error
	}

	done := make(chan execResult, 1)

	go func() {
		out, err := sess.CombinedOutput(cmd)
		done <- execResult{out: out, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %s: %s", ErrCommandFailed, s.cfg.Host, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("%w: %s: %q: %s", ErrCommandFailed, s.cfg.Host, cmd, r.err)
		}

		return string(r.out), nil
	}
}

// passwordResponder answers keyboard-interactive prompts with the
// configured password; some network devices only offer that method.
func passwordResponder(password string) ssh.KeyboardInteractiveChallenge {
	return func(_, _ string, questions []string, _ []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range questions {
			answers[i] = password
		}

		return answers, nil
	}
}
