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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/netbatch/netbatch/pkg/dispatch"
	"github.com/netbatch/netbatch/pkg/engine"
	"github.com/netbatch/netbatch/pkg/inventory"
	"github.com/netbatch/netbatch/pkg/logger"
	"github.com/netbatch/netbatch/pkg/models"
	"github.com/netbatch/netbatch/pkg/registry"
	"github.com/netbatch/netbatch/pkg/snapshot"
)

var (
	errUsage       = errors.New("usage: netbatch <run|backup|backups|tools> [flags]")
	errBatchFailed = errors.New("batch failed on every target")
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return errUsage
	}

	switch os.Args[1] {
	case "run":
		return runTool("ssh_batch", os.Args[2:])
	case "backup":
		return runTool("config_backup", os.Args[2:])
	case "backups":
		return listBackups(os.Args[2:])
	case "tools":
		return listTools(os.Args[2:])
	default:
		return fmt.Errorf("%w (got %q)", errUsage, os.Args[1])
	}
}

// buildRegistry constructs the tool registry at startup and hands it
// to the caller by reference; nothing is registered globally.
func buildRegistry(inventoryPath string, debug bool) (*registry.Registry, error) {
	logg, err := logger.New(logger.Config{Output: "stderr", Debug: debug})
	if err != nil {
		return nil, err
	}

	var inv *inventory.Inventory

	if inventoryPath != "" {
		inv, err = inventory.Load(inventoryPath, logg)
		if err != nil {
			return nil, err
		}
	}

	eng := engine.New(inv, dispatch.NewSSH(logg), logg)

	reg := registry.NewRegistry()
	if err := reg.Register(engine.NewBatchExecTool(eng)); err != nil {
		return nil, err
	}

	if err := reg.Register(engine.NewConfigBackupTool(eng)); err != nil {
		return nil, err
	}

	return reg, nil
}

func runTool(tool string, args []string) error {
	fs := flag.NewFlagSet(tool, flag.ExitOnError)

	targets := fs.String("targets", "", "Comma-separated target addresses")
	group := fs.String("group", "", "Inventory group name")
	commands := fs.String("commands", "", "Comma-separated commands (run only)")
	username := fs.String("username", "", "SSH username")
	password := fs.String("password", "", "SSH password")
	vendor := fs.String("vendor", "", "Vendor tag, e.g. cisco_ios")
	workers := fs.Int("workers", 0, "Maximum concurrent sessions")
	timeout := fs.Int("timeout", 0, "Per-connection timeout in seconds")
	configMode := fs.Bool("config-mode", false, "Apply commands in configuration mode (run only)")
	backupDir := fs.String("backup-dir", "", "Backup root directory (backup only)")
	inventoryPath := fs.String("inventory", "", "Path to device inventory YAML")
	debug := fs.Bool("debug", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := buildRegistry(*inventoryPath, *debug)
	if err != nil {
		return err
	}

	raw := map[string]string{}

	setIfPresent(raw, "targets", *targets)
	setIfPresent(raw, "group", *group)
	setIfPresent(raw, "commands", *commands)
	setIfPresent(raw, "username", *username)
	setIfPresent(raw, "password", *password)
	setIfPresent(raw, "vendor", *vendor)
	setIfPresent(raw, "backup_dir", *backupDir)

	if *workers > 0 {
		raw["max_workers"] = strconv.Itoa(*workers)
	}

	if *timeout > 0 {
		raw["timeout"] = strconv.Itoa(*timeout)
	}

	if *configMode {
		raw["config_mode"] = "true"
	}

	if tool == "config_backup" {
		delete(raw, "commands")
		delete(raw, "config_mode")
	}

	result, err := reg.Invoke(context.Background(), tool, raw)
	if err != nil {
		return err
	}

	if err := printJSON(result); err != nil {
		return err
	}

	// Partial success still exits zero; the per-target detail is in
	// the printed result.
	if result.Status == models.StatusFailed {
		return errBatchFailed
	}

	return nil
}

func listBackups(args []string) error {
	fs := flag.NewFlagSet("backups", flag.ExitOnError)

	dir := fs.String("dir", "./backups", "Backup root directory")
	host := fs.String("host", "", "Only show backups for this host")

	if err := fs.Parse(args); err != nil {
		return err
	}

	listings, err := snapshot.ListBackups(*dir, *host)
	if err != nil {
		return err
	}

	return printJSON(listings)
}

func listTools(args []string) error {
	fs := flag.NewFlagSet("tools", flag.ExitOnError)

	inventoryPath := fs.String("inventory", "", "Path to device inventory YAML")

	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := buildRegistry(*inventoryPath, false)
	if err != nil {
		return err
	}

	for _, name := range reg.Names() {
		tool, err := reg.Get(name)
		if err != nil {
			return err
		}

		fmt.Printf("%s\t%s\n", tool.Name(), tool.Description())

		for _, p := range tool.Params() {
			required := ""
			if p.Required {
				required = " (required)"
			}

			fmt.Printf("  -%s\t%s\t%s%s\n", p.Name, p.Type, p.Description, required)
		}
	}

	return nil
}

func setIfPresent(raw map[string]string, key, value string) {
	if value != "" {
		raw[key] = value
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))

	return nil
}
