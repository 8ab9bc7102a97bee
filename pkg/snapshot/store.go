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

// Package snapshot persists device configuration snapshots with change
// detection and a capped per-device history.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/netbatch/netbatch/pkg/logger"
	"github.com/netbatch/netbatch/pkg/models"
)

const (
	timestampLayout  = "20060102_150405"
	latestFileName   = "config_latest.txt"
	metadataFileName = "metadata.json"

	// maxHistoryRecords caps the per-device metadata history; the
	// oldest records are evicted first.
	maxHistoryRecords = 100

	dirPerm  = 0o750
	filePerm = 0o600
)

var (
	// ErrEmptyConfig means the retrieval produced no content; nothing
	// is stored in that case.
	ErrEmptyConfig = errors.New("retrieved configuration is empty")
	// ErrStorageFailed wraps filesystem failures while persisting.
	ErrStorageFailed = errors.New("snapshot could not be written")
)

// Store writes snapshots under root/<sanitized-device-name>/.
type Store struct {
	root   string
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a snapshot store rooted at the given directory.
func New(root string, log logger.Logger) *Store {
	return &Store{
		root:   root,
		logger: log.WithComponent("snapshot"),
		now:    time.Now,
	}
}

// Save persists one retrieved configuration blob for a device, detects
// change against the previous snapshot, and appends a history record.
func (s *Store) Save(host, vendor, config string) (*models.SnapshotResult, error) {
	if strings.TrimSpace(config) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyConfig, host)
	}

	deviceDir := filepath.Join(s.root, SanitizeName(host))
	if err := os.MkdirAll(deviceDir, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrStorageFailed, host, err)
	}

	sum := sha256.Sum256([]byte(config))
	hash := hex.EncodeToString(sum[:])
	timestamp := s.now().Format(timestampLayout)

	changed := true

	var diff *models.DiffSummary

	latestPath := filepath.Join(deviceDir, latestFileName)

	prior, err := readFile(latestPath)

	switch {
	case err == nil && prior == config:
		changed = false
	case err == nil:
		diff, err = unifiedDiff(prior, config, host)
		if err != nil {
			return nil, err
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("%w: %s: %s", ErrStorageFailed, host, err)
	default:
		// First backup for this device: always counts as changed,
		// no diff is produced.
	}

	snapshotPath := filepath.Join(deviceDir, "config_"+timestamp+".txt")
	if err := os.WriteFile(snapshotPath, []byte(config), filePerm); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrStorageFailed, host, err)
	}

	if err := os.WriteFile(latestPath, []byte(config), filePerm); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrStorageFailed, host, err)
	}

	if err := s.appendRecord(deviceDir, host, vendor, models.BackupRecord{
		Timestamp: timestamp,
		Hash:      hash,
		Changed:   changed,
	}); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("host", host).
		Bool("changed", changed).
		Int("size", len(config)).
		Msg("Configuration snapshot stored")

	return &models.SnapshotResult{
		Path:    snapshotPath,
		Hash:    hash,
		Size:    len(config),
		Changed: changed,
		Diff:    diff,
	}, nil
}

// appendRecord loads metadata.json, appends the record, trims the
// history to the cap, and writes it back.
func (s *Store) appendRecord(deviceDir, host, vendor string, record models.BackupRecord) error {
	metaPath := filepath.Join(deviceDir, metadataFileName)

	meta := models.DeviceMetadata{
		Host:       host,
		DeviceType: vendor,
	}

	if data, err := os.ReadFile(metaPath); err == nil {
		if err := json.Unmarshal(data, &meta); err != nil {
			s.logger.Warn().Err(err).Str("host", host).
				Msg("Corrupt metadata file, starting a fresh history")

			meta = models.DeviceMetadata{Host: host, DeviceType: vendor}
		}
	}

	meta.Backups = append(meta.Backups, record)
	if len(meta.Backups) > maxHistoryRecords {
		meta.Backups = meta.Backups[len(meta.Backups)-maxHistoryRecords:]
	}

	meta.LastBackup = record.Timestamp

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrStorageFailed, host, err)
	}

	if err := os.WriteFile(metaPath, data, filePerm); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrStorageFailed, host, err)
	}

	return nil
}

// ListBackups enumerates device backup metadata under a root directory.
// An empty host filters nothing.
func ListBackups(root, host string) ([]models.BackupListing, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read backup root '%s': %w", root, err)
	}

	var listings []models.BackupListing

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		if host != "" && SanitizeName(host) != entry.Name() {
			continue
		}

		metaPath := filepath.Join(root, entry.Name(), metadataFileName)

		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta models.DeviceMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		name := meta.Host
		if name == "" {
			name = entry.Name()
		}

		listings = append(listings, models.BackupListing{
			Host:        name,
			DeviceType:  meta.DeviceType,
			LastBackup:  meta.LastBackup,
			BackupCount: len(meta.Backups),
			Path:        filepath.Join(root, entry.Name()),
		})
	}

	return listings, nil
}

var nameSanitizer = strings.NewReplacer(
	".", "_",
	":", "_",
	"/", "_",
	"\\", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "_",
)

// SanitizeName maps a device name to a filesystem-safe directory name.
// The mapping is deterministic so the same device always lands in the
// same directory.
func SanitizeName(name string) string {
	return nameSanitizer.Replace(name)
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
