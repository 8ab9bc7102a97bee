package models

// Device is the resolved descriptor for one managed network device.
// Devices are built by the inventory parser and read-only afterwards.
type Device struct {
	Name        string   `json:"name" yaml:"name"`
	Host        string   `json:"host" yaml:"ip"`
	Port        int      `json:"port" yaml:"port"`
	Vendor      string   `json:"vendor" yaml:"vendor"`
	Credentials string   `json:"credentials,omitempty" yaml:"credentials"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Tags        []string `json:"tags,omitempty" yaml:"tags"`
	Group       string   `json:"group,omitempty" yaml:"-"`
}

// HasTag reports whether the device carries the given tag.
func (d *Device) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}

	return false
}

// DeviceGroup is a named collection of devices sharing default
// vendor and credential settings. Per-device fields override these.
type DeviceGroup struct {
	Name        string   `json:"name"`
	Vendor      string   `json:"vendor"`
	Credentials string   `json:"credentials,omitempty"`
	Description string   `json:"description,omitempty"`
	Devices     []Device `json:"devices"`
}
