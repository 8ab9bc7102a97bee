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

// Platform describes the vendor-specific command syntax for one device
// family. Session mechanics are identical across platforms; only the
// command text differs.
type Platform struct {
	Name          string
	ShowConfig    string
	DisablePaging []string
	ConfigEnter   []string
	ConfigExit    []string
}

var platforms = map[string]Platform{
	"cisco_ios": {
		Name:          "cisco_ios",
		ShowConfig:    "show running-config",
		DisablePaging: []string{"terminal length 0"},
		ConfigEnter:   []string{"configure terminal"},
		ConfigExit:    []string{"end"},
	},
	"cisco_xe": {
		Name:          "cisco_xe",
		ShowConfig:    "show running-config",
		DisablePaging: []string{"terminal length 0"},
		ConfigEnter:   []string{"configure terminal"},
		ConfigExit:    []string{"end"},
	},
	"cisco_xr": {
		Name:          "cisco_xr",
		ShowConfig:    "show running-config",
		DisablePaging: []string{"terminal length 0"},
		ConfigEnter:   []string{"configure terminal"},
		ConfigExit:    []string{"commit", "end"},
	},
	"cisco_nxos": {
		Name:          "cisco_nxos",
		ShowConfig:    "show running-config",
		DisablePaging: []string{"terminal length 0"},
		ConfigEnter:   []string{"configure terminal"},
		ConfigExit:    []string{"end"},
	},
	"huawei": {
		Name:          "huawei",
		ShowConfig:    "display current-configuration",
		DisablePaging: []string{"screen-length 0 temporary"},
		ConfigEnter:   []string{"system-view"},
		ConfigExit:    []string{"return"},
	},
	"huawei_vrp": {
		Name:          "huawei_vrp",
		ShowConfig:    "display current-configuration",
		DisablePaging: []string{"screen-length 0 temporary"},
		ConfigEnter:   []string{"system-view"},
		ConfigExit:    []string{"return"},
	},
	"juniper": {
		Name:        "juniper",
		ShowConfig:  "show configuration",
		ConfigEnter: []string{"configure"},
		ConfigExit:  []string{"commit and-quit"},
	},
	"juniper_junos": {
		Name:        "juniper_junos",
		ShowConfig:  "show configuration",
		ConfigEnter: []string{"configure"},
		ConfigExit:  []string{"commit and-quit"},
	},
	"arista_eos": {
		Name:          "arista_eos",
		ShowConfig:    "show running-config",
		DisablePaging: []string{"terminal length 0"},
		ConfigEnter:   []string{"configure terminal"},
		ConfigExit:    []string{"end"},
	},
	"hp_comware": {
		Name:          "hp_comware",
		ShowConfig:    "display current-configuration",
		DisablePaging: []string{"screen-length disable"},
		ConfigEnter:   []string{"system-view"},
		ConfigExit:    []string{"return"},
	},
	"linux": {
		Name:       "linux",
		ShowConfig: "cat /etc/network/interfaces",
	},
	"generic_termserver": {
		Name:        "generic_termserver",
		ShowConfig:  "show running-config",
		ConfigEnter: []string{"configure terminal"},
		ConfigExit:  []string{"end"},
	},
}

var defaultPlatform = Platform{
	Name:        "generic",
	ShowConfig:  "show running-config",
	ConfigEnter: []string{"configure terminal"},
	ConfigExit:  []string{"end"},
}

// PlatformFor returns the platform profile for a vendor tag. Unknown
// vendors get the generic profile rather than an error.
func PlatformFor(vendor string) Platform {
	if p, ok := platforms[vendor]; ok {
		return p
	}

	return defaultPlatform
}

// KnownPlatforms returns the registered vendor tags.
func KnownPlatforms() []string {
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, name)
	}

	return names
}
