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

// Package inventory loads and queries the device inventory file.
package inventory

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/netbatch/netbatch/pkg/logger"
	"github.com/netbatch/netbatch/pkg/models"
)

const (
	defaultPort   = 22
	defaultVendor = "cisco_ios"
)

var (
	// ErrDeviceNameRequired is returned when an inventory entry has no name.
	ErrDeviceNameRequired = errors.New("device name cannot be empty")
	// ErrDeviceHostRequired is returned when an inventory entry has no address.
	ErrDeviceHostRequired = errors.New("device address cannot be empty")
)

// Inventory holds the parsed device inventory. It is immutable after Load.
type Inventory struct {
	groups     map[string]*models.DeviceGroup
	standalone []models.Device
	byName     map[string]*models.Device
	logger     logger.Logger
}

// fileFormat mirrors the on-disk YAML layout.
type fileFormat struct {
	Groups     map[string]groupEntry `yaml:"groups"`
	Standalone []deviceEntry         `yaml:"standalone_devices"`
}

type groupEntry struct {
	Vendor      string        `yaml:"vendor"`
	Credentials string        `yaml:"credentials"`
	Description string        `yaml:"description"`
	Devices     []deviceEntry `yaml:"devices"`
}

type deviceEntry struct {
	Name        string   `yaml:"name"`
	IP          string   `yaml:"ip"`
	Port        int      `yaml:"port"`
	Vendor      string   `yaml:"vendor"`
	Credentials string   `yaml:"credentials"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// New creates an empty inventory.
func New(log logger.Logger) *Inventory {
	return &Inventory{
		groups: make(map[string]*models.DeviceGroup),
		byName: make(map[string]*models.Device),
		logger: log,
	}
}

// Load reads and parses an inventory YAML file into a new Inventory.
func Load(path string, log logger.Logger) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory file '%s': %w", path, err)
	}

	var raw fileFormat
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inventory from '%s': %w", path, err)
	}

	inv := New(log)

	for name, entry := range raw.Groups {
		if err := inv.addGroup(name, entry); err != nil {
			return nil, fmt.Errorf("group '%s': %w", name, err)
		}
	}

	for _, entry := range raw.Standalone {
		device, err := buildDevice(entry, "", defaultVendor, "")
		if err != nil {
			return nil, fmt.Errorf("standalone device '%s': %w", entry.Name, err)
		}

		inv.standalone = append(inv.standalone, *device)
		inv.byName[device.Name] = device
	}

	log.Info().
		Int("groups", len(inv.groups)).
		Int("devices", len(inv.byName)).
		Str("path", path).
		Msg("Inventory loaded")

	return inv, nil
}

func (inv *Inventory) addGroup(name string, entry groupEntry) error {
	vendor := entry.Vendor
	if vendor == "" {
		vendor = defaultVendor
	}

	group := &models.DeviceGroup{
		Name:        name,
		Vendor:      vendor,
		Credentials: entry.Credentials,
		Description: entry.Description,
	}

	for _, de := range entry.Devices {
		device, err := buildDevice(de, name, vendor, entry.Credentials)
		if err != nil {
			return err
		}

		group.Devices = append(group.Devices, *device)
		inv.byName[device.Name] = device
	}

	inv.groups[name] = group

	return nil
}

// buildDevice applies group defaults and validates the required fields.
func buildDevice(entry deviceEntry, group, defVendor, defCreds string) (*models.Device, error) {
	if entry.Name == "" {
		return nil, ErrDeviceNameRequired
	}

	if entry.IP == "" {
		return nil, ErrDeviceHostRequired
	}

	port := entry.Port
	if port == 0 {
		port = defaultPort
	}

	vendor := entry.Vendor
	if vendor == "" {
		vendor = defVendor
	}

	creds := entry.Credentials
	if creds == "" {
		creds = defCreds
	}

	return &models.Device{
		Name:        entry.Name,
		Host:        entry.IP,
		Port:        port,
		Vendor:      vendor,
		Credentials: creds,
		Description: entry.Description,
		Tags:        entry.Tags,
		Group:       group,
	}, nil
}

// Device looks up a device by name.
func (inv *Inventory) Device(name string) (*models.Device, bool) {
	d, ok := inv.byName[name]
	return d, ok
}

// DeviceByHost looks up a device by its address.
func (inv *Inventory) DeviceByHost(host string) (*models.Device, bool) {
	for _, d := range inv.byName {
		if d.Host == host {
			return d, true
		}
	}

	return nil, false
}

// Group returns the named device group.
func (inv *Inventory) Group(name string) (*models.DeviceGroup, bool) {
	g, ok := inv.groups[name]
	return g, ok
}

// DevicesByGroup returns the members of a group, or nil when the group
// does not exist or is empty.
func (inv *Inventory) DevicesByGroup(name string) []models.Device {
	g, ok := inv.groups[name]
	if !ok {
		return nil
	}

	out := make([]models.Device, len(g.Devices))
	copy(out, g.Devices)

	return out
}

// DevicesByTag returns every device carrying the tag.
func (inv *Inventory) DevicesByTag(tag string) []models.Device {
	var out []models.Device

	for _, d := range inv.byName {
		if d.HasTag(tag) {
			out = append(out, *d)
		}
	}

	return out
}

// DevicesByVendor returns every device with the given vendor tag.
func (inv *Inventory) DevicesByVendor(vendor string) []models.Device {
	var out []models.Device

	for _, d := range inv.byName {
		if d.Vendor == vendor {
			out = append(out, *d)
		}
	}

	return out
}

// AllDevices returns every known device.
func (inv *Inventory) AllDevices() []models.Device {
	out := make([]models.Device, 0, len(inv.byName))
	for _, d := range inv.byName {
		out = append(out, *d)
	}

	return out
}

// GroupNames returns the names of all groups.
func (inv *Inventory) GroupNames() []string {
	out := make([]string, 0, len(inv.groups))
	for name := range inv.groups {
		out = append(out, name)
	}

	return out
}

// Len returns the total device count.
func (inv *Inventory) Len() int {
	return len(inv.byName)
}
