package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"sxnet/internal/loader"
	"sxnet/internal/netsrc"
	"sxnet/internal/topology"
)

// Source names used for metrics and events
const (
	SourceHosts      = "hosts"
	SourceInterfaces = "interfaces"
	SourceIfcfg      = "ifcfg"
	SourceModprobe   = "modprobe"
	SourceProcNet    = "proc_net"
	SourceCommands   = "commands"
)

const ifcfgPrefix = "ifcfg-"

// Backup copies left next to network scripts are not interface configs
var ifcfgBackupSuffixes = []string{"~", ".bak", ".orig", ".old", ".rpmsave", ".rpmnew"}

// collector reads the sources of one report. Absent sources are recorded and
// left nil; any other read failure aborts the analysis.
type collector struct {
	svc     *AnalysisService
	archive loader.Archive
	missing []string
}

func (c *collector) absent(source string, err error) error {
	if !errors.Is(err, loader.ErrNotFound) {
		return fmt.Errorf("read %s: %w", source, err)
	}
	c.missing = append(c.missing, source)
	c.svc.metrics.RecordMissingSource(source)
	c.svc.eventBus.Publish(Event{
		Type:    EventSourceMissing,
		Report:  c.archive.Name(),
		Payload: map[string]string{"source": source},
	})
	if c.svc.Verbose {
		log.Printf("%s: %s not present", c.archive.Name(), source)
	}
	return nil
}

// firstFile returns the lines of the first candidate present, or nil
func (c *collector) firstFile(candidates []string) ([]string, error) {
	for _, name := range candidates {
		lines, err := c.archive.ReadFile(name)
		if err == nil {
			if c.svc.Verbose {
				log.Printf("%s: read %s (%d lines)", c.archive.Name(), name, len(lines))
			}
			return lines, nil
		}
		if !errors.Is(err, loader.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%v: %w", candidates, loader.ErrNotFound)
}

// firstLine returns the trimmed first line of the first candidate present
func (c *collector) firstLine(candidates []string) (string, error) {
	lines, err := c.firstFile(candidates)
	if err != nil {
		if errors.Is(err, loader.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	if len(lines) == 0 {
		return "", nil
	}
	return strings.TrimSpace(lines[0]), nil
}

func (c *collector) record(source string, n int) {
	c.svc.metrics.RecordSource(source, n)
}

// input gathers the topology input of the report
func (c *collector) input(ctx context.Context) (topology.Input, error) {
	src := c.svc.sources
	var in topology.Input

	hosts, err := c.firstFile(src.Hosts)
	if err != nil {
		if err := c.absent(SourceHosts, err); err != nil {
			return in, err
		}
	}
	in.Hosts = netsrc.ParseHosts(hosts)
	c.record(SourceHosts, len(in.Hosts))

	if err := ctx.Err(); err != nil {
		return in, err
	}
	if in.Interfaces, err = c.interfaces(); err != nil {
		return in, err
	}
	c.record(SourceInterfaces, len(in.Interfaces))

	if err := ctx.Err(); err != nil {
		return in, err
	}
	configs, err := c.archive.ReadDir(src.IfcfgDir)
	if err != nil {
		if err := c.absent(SourceIfcfg, err); err != nil {
			return in, err
		}
	}
	in.Configs = ifcfgByInterface(configs)
	in.Interfaces = appendConfiguredOnly(in.Interfaces, in.Configs)
	c.record(SourceIfcfg, len(in.Configs))

	if err := ctx.Err(); err != nil {
		return in, err
	}
	if in.Directives, err = c.directives(); err != nil {
		return in, err
	}
	c.record(SourceModprobe, len(in.Directives))

	if err := ctx.Err(); err != nil {
		return in, err
	}
	in.ProcNet = make(map[string][]string)
	for _, dir := range src.ProcNetDirs {
		files, err := c.archive.ReadDir(dir)
		if err != nil {
			if err := c.absent(SourceProcNet+":"+dir, err); err != nil {
				return in, err
			}
			continue
		}
		for name, lines := range files {
			in.ProcNet[name] = lines
		}
	}
	c.record(SourceProcNet, len(in.ProcNet))

	if in.Commands, err = c.archive.ReadDir(src.CommandsDir); err != nil {
		if err := c.absent(SourceCommands, err); err != nil {
			return in, err
		}
	}
	c.record(SourceCommands, len(in.Commands))

	return in, nil
}

// interfaces prefers `ip address` output and adds `ifconfig -a` records for
// interfaces it did not list.
func (c *collector) interfaces() ([]netsrc.InterfaceRecord, error) {
	src := c.svc.sources
	var records []netsrc.InterfaceRecord

	ipLines, err := c.firstFile(src.IPAddress)
	if err != nil && !errors.Is(err, loader.ErrNotFound) {
		return nil, fmt.Errorf("read ip address: %w", err)
	}
	records = append(records, netsrc.ParseIPAddress(ipLines)...)

	ifcLines, err := c.firstFile(src.Ifconfig)
	if err != nil && !errors.Is(err, loader.ErrNotFound) {
		return nil, fmt.Errorf("read ifconfig: %w", err)
	}
	records = append(records, netsrc.ParseIfconfig(ifcLines)...)

	if ipLines == nil && ifcLines == nil {
		if err := c.absent(SourceInterfaces, loader.ErrNotFound); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// directives merges modprobe.conf with every *.conf below the modprobe.d directories
func (c *collector) directives() ([]netsrc.ModuleDirective, error) {
	src := c.svc.sources
	var lines []string
	found := false

	for _, name := range src.Modprobe {
		file, err := c.archive.ReadFile(name)
		if err != nil {
			if !errors.Is(err, loader.ErrNotFound) {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			continue
		}
		found = true
		lines = append(lines, file...)
	}

	for _, dir := range src.ModprobeDirs {
		files, err := c.archive.ReadDir(dir)
		if err != nil {
			if !errors.Is(err, loader.ErrNotFound) {
				return nil, fmt.Errorf("read %s: %w", dir, err)
			}
			continue
		}
		names := make([]string, 0, len(files))
		for name := range files {
			if strings.HasSuffix(name, ".conf") {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			found = true
			lines = append(lines, files[name]...)
		}
	}

	if !found {
		if err := c.absent(SourceModprobe, loader.ErrNotFound); err != nil {
			return nil, err
		}
	}
	return netsrc.ParseModprobe(lines), nil
}

// ifcfgByInterface keys network scripts by the interface name in their file name
func ifcfgByInterface(files map[string][]string) map[string][]string {
	configs := make(map[string][]string)
	for name, lines := range files {
		iface, ok := strings.CutPrefix(name, ifcfgPrefix)
		if !ok || iface == "" || isBackup(iface) {
			continue
		}
		configs[iface] = lines
	}
	return configs
}

func isBackup(name string) bool {
	for _, suffix := range ifcfgBackupSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// appendConfiguredOnly adds an empty record for every configured interface the
// enumeration output did not list, so slaves without addresses still take part
// in resolution. They are appended in name order after the enumerated records.
func appendConfiguredOnly(records []netsrc.InterfaceRecord, configs map[string][]string) []netsrc.InterfaceRecord {
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		seen[r.Name] = true
	}

	names := make([]string, 0, len(configs))
	for name := range configs {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		records = append(records, netsrc.NewInterfaceRecord(name, "", "", "", nil, -1))
	}
	return records
}
