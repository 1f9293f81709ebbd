package netsrc

import (
	"strings"
)

// ConfigMap holds KEY=VALUE pairs with upper-cased keys
type ConfigMap map[string]string

// Get returns the value for key, or an empty string
func (c ConfigMap) Get(key string) string {
	return c[strings.ToUpper(key)]
}

// Has reports whether key is present
func (c ConfigMap) Has(key string) bool {
	_, ok := c[strings.ToUpper(key)]
	return ok
}

// ParseKeyValues parses shell-style KEY=VALUE lines.
// Surrounding quotes are stripped from values and a " #" starts a comment in
// unquoted ones. When enforceEmptyValues is false,
// keys whose value is empty are dropped; otherwise they are kept as "".
func ParseKeyValues(lines []string, enforceEmptyValues bool) ConfigMap {
	config := make(ConfigMap)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		if key == "" || strings.ContainsAny(key, " \t") {
			continue
		}

		value = shellValue(value)
		if value == "" && !enforceEmptyValues {
			continue
		}

		config[strings.ToUpper(key)] = value
	}
	return config
}

// ParseIfcfg parses an ifcfg-<iface> network script
func ParseIfcfg(lines []string) ConfigMap {
	return ParseKeyValues(lines, false)
}

// shellValue returns the value part of an assignment the way a shell would
// read it: the contents of a leading quoted word, or the text before an
// unquoted comment.
func shellValue(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}
	if q := v[0]; q == '"' || q == '\'' {
		if end := strings.IndexByte(v[1:], q); end >= 0 {
			return v[1 : end+1]
		}
	}
	for i := 1; i < len(v); i++ {
		if v[i] == '#' && (v[i-1] == ' ' || v[i-1] == '\t') {
			v = strings.TrimSpace(v[:i])
			break
		}
	}
	return strings.Trim(v, "\"'")
}
