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

package engine

import (
	"context"
	"time"

	"github.com/netbatch/netbatch/pkg/models"
	"github.com/netbatch/netbatch/pkg/registry"
)

// BatchExecTool exposes ExecuteBatch through the tool registry.
type BatchExecTool struct {
	engine *Engine
}

// NewBatchExecTool wraps an engine for registry use.
func NewBatchExecTool(e *Engine) *BatchExecTool {
	return &BatchExecTool{engine: e}
}

func (*BatchExecTool) Name() string { return "ssh_batch" }

func (*BatchExecTool) Description() string {
	return "Run a command set across many devices over SSH"
}

func (*BatchExecTool) Params() []registry.ParamSpec {
	return []registry.ParamSpec{
		{Name: "commands", Type: registry.ParamList, Description: "Commands to run", Required: true},
		{Name: "targets", Type: registry.ParamList, Description: "Target addresses"},
		{Name: "group", Type: registry.ParamText, Description: "Inventory group name"},
		{Name: "username", Type: registry.ParamText, Description: "SSH username", Default: "admin"},
		{Name: "password", Type: registry.ParamText, Description: "SSH password"},
		{Name: "vendor", Type: registry.ParamText, Description: "Vendor tag", Default: defaultVendor},
		{Name: "max_workers", Type: registry.ParamInteger, Description: "Concurrent sessions", Default: "5"},
		{Name: "timeout", Type: registry.ParamInteger, Description: "Per-connection timeout in seconds", Default: "30"},
		{Name: "config_mode", Type: registry.ParamBoolean, Description: "Apply commands in configuration mode", Default: "false"},
	}
}

func (t *BatchExecTool) Run(ctx context.Context, values registry.Values) (*models.BatchResult, error) {
	return t.engine.ExecuteBatch(ctx, ExecRequest{
		Targets:    values.Strings("targets"),
		Group:      values.String("group"),
		Commands:   values.Strings("commands"),
		Username:   values.String("username"),
		Password:   values.String("password"),
		Vendor:     values.String("vendor"),
		MaxWorkers: values.Int("max_workers"),
		Timeout:    time.Duration(values.Int("timeout")) * time.Second,
		ConfigMode: values.Bool("config_mode"),
	})
}

// ConfigBackupTool exposes BackupConfigs through the tool registry.
type ConfigBackupTool struct {
	engine *Engine
}

// NewConfigBackupTool wraps an engine for registry use.
func NewConfigBackupTool(e *Engine) *ConfigBackupTool {
	return &ConfigBackupTool{engine: e}
}

func (*ConfigBackupTool) Name() string { return "config_backup" }

func (*ConfigBackupTool) Description() string {
	return "Back up device configurations with change detection"
}

func (*ConfigBackupTool) Params() []registry.ParamSpec {
	return []registry.ParamSpec{
		{Name: "targets", Type: registry.ParamList, Description: "Target addresses"},
		{Name: "group", Type: registry.ParamText, Description: "Inventory group name"},
		{Name: "username", Type: registry.ParamText, Description: "SSH username", Default: "admin"},
		{Name: "password", Type: registry.ParamText, Description: "SSH password"},
		{Name: "vendor", Type: registry.ParamText, Description: "Vendor tag", Default: defaultVendor},
		{Name: "backup_dir", Type: registry.ParamText, Description: "Backup root directory", Default: "./backups"},
		{Name: "max_workers", Type: registry.ParamInteger, Description: "Concurrent sessions", Default: "5"},
		{Name: "timeout", Type: registry.ParamInteger, Description: "Per-connection timeout in seconds", Default: "60"},
	}
}

func (t *ConfigBackupTool) Run(ctx context.Context, values registry.Values) (*models.BatchResult, error) {
	return t.engine.BackupConfigs(ctx, BackupRequest{
		Targets:    values.Strings("targets"),
		Group:      values.String("group"),
		Username:   values.String("username"),
		Password:   values.String("password"),
		Vendor:     values.String("vendor"),
		MaxWorkers: values.Int("max_workers"),
		Timeout:    time.Duration(values.Int("timeout")) * time.Second,
		BackupDir:  values.String("backup_dir"),
	})
}
