package netsrc

import (
	"strings"
)

// ModuleCommand is the directive keyword of a modprobe configuration line
type ModuleCommand string

const (
	ModuleAlias   ModuleCommand = "alias"
	ModuleOptions ModuleCommand = "options"
)

// ModuleDirective is one alias or options line from modprobe configuration
type ModuleDirective struct {
	Command    ModuleCommand `json:"command" yaml:"command"`
	Wildcard   string        `json:"wildcard,omitempty" yaml:"wildcard,omitempty"` // alias target, e.g. eth0 or bond0
	ModuleName string        `json:"module" yaml:"module"`
	Options    []string      `json:"options,omitempty" yaml:"options,omitempty"`
}

// ParseModprobe parses modprobe.conf style lines:
//
//	alias bond0 bonding
//	options bonding mode=1 miimon=100
//
// Other directives (install, remove, blacklist, softdep) are ignored.
func ParseModprobe(lines []string) []ModuleDirective {
	directives := []ModuleDirective{}
	for _, line := range lines {
		line, _, _ = strings.Cut(line, "#")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch ModuleCommand(strings.ToLower(fields[0])) {
		case ModuleAlias:
			if len(fields) < 3 {
				continue
			}
			directives = append(directives, ModuleDirective{
				Command:    ModuleAlias,
				Wildcard:   fields[1],
				ModuleName: fields[2],
			})
		case ModuleOptions:
			if len(fields) < 2 {
				continue
			}
			directives = append(directives, ModuleDirective{
				Command:    ModuleOptions,
				ModuleName: fields[1],
				Options:    append([]string{}, fields[2:]...),
			})
		}
	}
	return directives
}
