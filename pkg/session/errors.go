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

package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConnectionFailed covers unreachable hosts and network timeouts.
	ErrConnectionFailed = errors.New("connection failed")
	// ErrAuthenticationFailed means the device rejected the credentials.
	ErrAuthenticationFailed = errors.New("authentication rejected")
	// ErrCommandFailed means the session was open but a command failed
	// or produced no usable output.
	ErrCommandFailed = errors.New("command execution failed")
	// ErrNotConnected is returned when a command is issued outside the
	// Authenticated/Executing states.
	ErrNotConnected = errors.New("session not connected")
)

// classifyHandshakeError splits an SSH handshake failure into the
// authentication and connection error kinds. The ssh package reports
// credential rejection only through the error text.
func classifyHandshakeError(host string, err error) error {
	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "unable to authenticate") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "password rejected") {
		return fmt.Errorf("%w: %s: %s", ErrAuthenticationFailed, host, err)
	}

	return fmt.Errorf("%w: %s: %s", ErrConnectionFailed, host, err)
}
