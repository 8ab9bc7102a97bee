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

// Package engine implements the fleet-wide operations: ad-hoc command
// execution and configuration backup across many devices at once.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/netbatch/netbatch/pkg/dispatch"
	"github.com/netbatch/netbatch/pkg/inventory"
	"github.com/netbatch/netbatch/pkg/logger"
	"github.com/netbatch/netbatch/pkg/models"
	"github.com/netbatch/netbatch/pkg/session"
	"github.com/netbatch/netbatch/pkg/snapshot"
)

const defaultVendor = "cisco_ios"

var (
	// ErrNoTargets means neither an explicit target list nor a group
	// resolved to any device. Fatal before dispatch.
	ErrNoTargets = errors.New("no targets resolvable")
	// ErrNoCommands means the command set is empty. Fatal before dispatch.
	ErrNoCommands = errors.New("no commands supplied")
	// ErrGroupNotFound means the named group is absent or empty.
	ErrGroupNotFound = errors.New("device group not found or empty")
	// ErrNoInventory means a group was named but no inventory is loaded.
	ErrNoInventory = errors.New("no device inventory loaded")
)

// ExecRequest is the invocation contract for ad-hoc command execution.
// Either Targets or Group must be set.
type ExecRequest struct {
	Targets    []string
	Group      string
	Commands   []string
	Username   string
	Password   string
	Vendor     string
	MaxWorkers int
	Timeout    time.Duration
	ConfigMode bool
}

// BackupRequest retrieves and versions device configurations. The
// "show configuration" command is implicit, resolved per vendor.
type BackupRequest struct {
	Targets    []string
	Group      string
	Username   string
	Password   string
	Vendor     string
	MaxWorkers int
	Timeout    time.Duration
	BackupDir  string
}

// Engine wires the inventory, the dispatcher, and the snapshot store
// into the two fleet operations.
type Engine struct {
	inventory  *inventory.Inventory
	dispatcher *dispatch.Dispatcher
	log        logger.Logger
	logger     zerolog.Logger
}

// New creates an engine. The inventory may be nil when only explicit
// target lists are used.
func New(inv *inventory.Inventory, d *dispatch.Dispatcher, log logger.Logger) *Engine {
	return &Engine{
		inventory:  inv,
		dispatcher: d,
		log:        log,
		logger:     log.WithComponent("engine"),
	}
}

// ExecuteBatch runs the command set on every target and reports one
// outcome per target. Partial failure is a result, not an error; only
// an invalid invocation returns an error.
func (e *Engine) ExecuteBatch(ctx context.Context, req ExecRequest) (*models.BatchResult, error) {
	if len(req.Commands) == 0 {
		return nil, ErrNoCommands
	}

	targets, err := e.resolveTargets(req.Targets, req.Group, req.Username, req.Password, req.Vendor)
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Int("targets", len(targets)).
		Int("commands", len(req.Commands)).
		Bool("config_mode", req.ConfigMode).
		Msg("Executing batch")

	batchID, outcomes := e.dispatcher.Run(ctx, dispatch.Batch{
		Targets:    targets,
		MaxWorkers: req.MaxWorkers,
		Timeout:    req.Timeout,
		Handler:    dispatch.CommandHandler(req.Commands, req.ConfigMode),
	})

	return buildResult(batchID, outcomes), nil
}

// BackupConfigs retrieves each target's configuration, persists it to
// the snapshot store, and reports per-device change detection.
func (e *Engine) BackupConfigs(ctx context.Context, req BackupRequest) (*models.BatchResult, error) {
	targets, err := e.resolveTargets(req.Targets, req.Group, req.Username, req.Password, req.Vendor)
	if err != nil {
		return nil, err
	}

	store := snapshot.New(req.BackupDir, e.log)

	e.logger.Info().
		Int("targets", len(targets)).
		Str("backup_dir", req.BackupDir).
		Msg("Backing up device configurations")

	batchID, outcomes := e.dispatcher.Run(ctx, dispatch.Batch{
		Targets:    targets,
		MaxWorkers: req.MaxWorkers,
		Timeout:    req.Timeout,
		Handler:    backupHandler(store),
	})

	return buildResult(batchID, outcomes), nil
}

// backupHandler retrieves the vendor-specific configuration and saves
// it through the snapshot store.
func backupHandler(store *snapshot.Store) dispatch.Handler {
	return func(ctx context.Context, sess dispatch.Session, target dispatch.Target) (*models.Outcome, error) {
		platform := session.PlatformFor(target.Vendor)

		// Paging would truncate the retrieved configuration.
		for _, cmd := range platform.DisablePaging {
			if _, err := sess.Run(ctx, cmd); err != nil {
				return nil, err
			}
		}

		config, err := sess.Run(ctx, platform.ShowConfig)
		if err != nil {
			return nil, err
		}

		result, err := store.Save(target.Host, target.Vendor, config)
		if err != nil {
			return nil, err
		}

		return &models.Outcome{Backup: result}, nil
	}
}

// resolveTargets turns the request's targets or group into a unique,
// override-applied target list. Fails fast when nothing resolves.
func (e *Engine) resolveTargets(hosts []string, group, username, password, vendor string) ([]dispatch.Target, error) {
	if vendor == "" {
		vendor = defaultVendor
	}

	if len(hosts) == 0 && group != "" {
		if e.inventory == nil {
			return nil, fmt.Errorf("%w: group %q requested", ErrNoInventory, group)
		}

		devices := e.inventory.DevicesByGroup(group)
		if len(devices) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrGroupNotFound, group)
		}

		targets := make([]dispatch.Target, 0, len(devices))
		seen := make(map[string]struct{}, len(devices))

		for _, d := range devices {
			if _, dup := seen[d.Host]; dup {
				continue
			}

			seen[d.Host] = struct{}{}

			targets = append(targets, dispatch.Target{
				Host:     d.Host,
				Port:     d.Port,
				Vendor:   d.Vendor,
				Username: username,
				Password: password,
			})
		}

		return targets, nil
	}

	if len(hosts) == 0 {
		return nil, ErrNoTargets
	}

	targets := make([]dispatch.Target, 0, len(hosts))
	seen := make(map[string]struct{}, len(hosts))

	for _, host := range hosts {
		if host == "" {
			continue
		}

		if _, dup := seen[host]; dup {
			continue
		}

		seen[host] = struct{}{}

		target := dispatch.Target{
			Host:     host,
			Vendor:   vendor,
			Username: username,
			Password: password,
		}

		// Device-specific overrides from the inventory win over the
		// batch defaults.
		if e.inventory != nil {
			if d, ok := e.inventory.DeviceByHost(host); ok {
				target.Port = d.Port
				target.Vendor = d.Vendor
			}
		}

		targets = append(targets, target)
	}

	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	return targets, nil
}

func buildResult(batchID string, outcomes dispatch.Outcomes) *models.BatchResult {
	status, summary := dispatch.Summarize(outcomes)

	return &models.BatchResult{
		BatchID:   batchID,
		Status:    status,
		PerTarget: outcomes,
		Summary:   summary,
		Timestamp: time.Now(),
	}
}
