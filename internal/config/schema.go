package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version" validate:"min=1"`
	Output   OutputConfig   `yaml:"output"`
	Database DatabaseConfig `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Sources  SourcesConfig  `yaml:"sources"`
}

// OutputConfig controls how analyses are rendered
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=text json yaml"`
	Dir    string `yaml:"dir,omitempty"` // empty = stdout
}

// DatabaseConfig configures the snapshot store
type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

// MetricsConfig configures the prometheus textfile export
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// AnalysisConfig bounds report analysis
type AnalysisConfig struct {
	Concurrency int      `yaml:"concurrency" validate:"min=1,max=64"`
	Timeout     Duration `yaml:"timeout,omitempty"` // per report, 0 = none
}

// SourcesConfig lists where each source lives inside a report, relative to its
// root. Where several candidates are given the first one present is used.
type SourcesConfig struct {
	Hosts        []string `yaml:"hosts" validate:"required,dive,required"`
	IPAddress    []string `yaml:"ip_address" validate:"dive,required"`
	Ifconfig     []string `yaml:"ifconfig" validate:"dive,required"`
	Modprobe     []string `yaml:"modprobe" validate:"dive,required"`
	ModprobeDirs []string `yaml:"modprobe_dirs" validate:"dive,required"`
	IfcfgDir     string   `yaml:"ifcfg_dir" validate:"required"`
	ProcNetDirs  []string `yaml:"proc_net_dirs" validate:"dive,required"`
	CommandsDir  string   `yaml:"commands_dir" validate:"required"`
	Hostname     []string `yaml:"hostname" validate:"dive,required"`
	Uname        []string `yaml:"uname" validate:"dive,required"`
	Uptime       []string `yaml:"uptime" validate:"dive,required"`
	Release      []string `yaml:"release" validate:"dive,required"`
}

// Paths returns every file and directory a report is read from
func (s SourcesConfig) Paths() []string {
	var paths []string
	for _, group := range [][]string{
		s.Hosts, s.IPAddress, s.Ifconfig, s.Modprobe, s.ModprobeDirs,
		{s.IfcfgDir}, s.ProcNetDirs, {s.CommandsDir},
		s.Hostname, s.Uname, s.Uptime, s.Release,
	} {
		for _, p := range group {
			if p != "" {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

// DefaultSources returns the sosreport layout
func DefaultSources() SourcesConfig {
	return SourcesConfig{
		Hosts:        []string{"etc/hosts"},
		IPAddress:    []string{"sos_commands/networking/ip_address", "sos_commands/networking/ip_addr"},
		Ifconfig:     []string{"sos_commands/networking/ifconfig_-a", "ifconfig"},
		Modprobe:     []string{"etc/modprobe.conf"},
		ModprobeDirs: []string{"etc/modprobe.d"},
		IfcfgDir:     "etc/sysconfig/network-scripts",
		ProcNetDirs:  []string{"proc/net", "proc/net/bonding"},
		CommandsDir:  "sos_commands/networking",
		Hostname:     []string{"hostname", "sos_commands/general/hostname", "sos_commands/host/hostname"},
		Uname:        []string{"uname", "sos_commands/kernel/uname_-a"},
		Uptime:       []string{"uptime", "sos_commands/general/uptime", "sos_commands/host/uptime"},
		Release:      []string{"etc/redhat-release", "etc/system-release"},
	}
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
