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

// BackupRecord is one entry in a device's append-only backup history.
type BackupRecord struct {
	Timestamp string `json:"timestamp"`
	Hash      string `json:"hash"`
	Changed   bool   `json:"changed"`
}

// DeviceMetadata lives alongside a device's snapshot files. The backups
// list is capped; the oldest records are evicted first.
type DeviceMetadata struct {
	Host       string         `json:"host"`
	DeviceType string         `json:"device_type"`
	LastBackup string         `json:"last_backup,omitempty"`
	Backups    []BackupRecord `json:"backups"`
}

// DiffSummary describes the textual delta between two consecutive
// snapshots. The preview is bounded and meant for operator review.
type DiffSummary struct {
	AddedLines   int    `json:"added_lines"`
	RemovedLines int    `json:"removed_lines"`
	Preview      string `json:"preview"`
}

// SnapshotResult reports one persisted configuration snapshot.
type SnapshotResult struct {
	Path    string       `json:"path"`
	Hash    string       `json:"hash"`
	Size    int          `json:"size"`
	Changed bool         `json:"changed"`
	Diff    *DiffSummary `json:"diff,omitempty"`
}

// BackupListing is the per-device view returned when enumerating a
// backup root directory.
type BackupListing struct {
	Host        string `json:"host"`
	DeviceType  string `json:"device_type"`
	LastBackup  string `json:"last_backup,omitempty"`
	BackupCount int    `json:"backup_count"`
	Path        string `json:"path"`
}
