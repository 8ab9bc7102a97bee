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

package models

import "time"

// BatchStatus is the overall verdict for one dispatch call.
type BatchStatus string

const (
	// StatusSuccess means every target succeeded.
	StatusSuccess BatchStatus = "success"
	// StatusPartial means some targets succeeded and some failed.
	StatusPartial BatchStatus = "partial"
	// StatusFailed means every target failed, or the call was rejected
	// before dispatch.
	StatusFailed BatchStatus = "failed"
)

// Outcome is the per-target result of one dispatch. Exactly one Outcome
// exists per target per batch, success or failure.
type Outcome struct {
	Target       string            `json:"target"`
	Success      bool              `json:"success"`
	Outputs      map[string]string `json:"outputs,omitempty"`
	ConfigOutput string            `json:"config_output,omitempty"`
	Duration     time.Duration     `json:"duration"`
	Error        string            `json:"error,omitempty"`

	// Backup-only fields, set when the batch retrieves configuration.
	Backup *SnapshotResult `json:"backup,omitempty"`
}

// Summary is the reduced view of one batch's outcome map.
type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Changed int `json:"changed,omitempty"`
}

// BatchResult is what the engine hands back to callers: the verdict,
// the per-target detail keyed by target host, and the summary counts.
type BatchResult struct {
	BatchID   string              `json:"batch_id"`
	Status    BatchStatus         `json:"status"`
	PerTarget map[string]*Outcome `json:"per_target"`
	Summary   Summary             `json:"summary"`
	Timestamp time.Time           `json:"timestamp"`
}
