// Package exports loads and evaluates the exports table: the list of paths
// MOUNT is permitted to hand out root handles for, with per-export client
// allowlists. MNT requests for paths not in the table, or from clients not
// on an export's allowlist, are refused with MNT3ERR_ACCES.
package exports

import (
	"fmt"
	"net"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one exported path. An empty Clients list allows every client.
// Clients entries may be a CIDR ("10.0.0.0/8"), a single IP address, or the
// wildcard "*".
type Entry struct {
	Path     string   `yaml:"path"`
	Clients  []string `yaml:"clients"`
	ReadOnly bool     `yaml:"read_only"`
}

// file is the top-level YAML document shape of an exports file.
type file struct {
	Exports []Entry `yaml:"exports"`
}

// Table is the immutable, startup-loaded exports table. All methods are safe
// for concurrent use since the table is never mutated after Load.
type Table struct {
	entries []Entry
}

// Default returns a table exporting "/" to every client, the behavior used
// when no exports file is configured.
func Default() *Table {
	return &Table{entries: []Entry{{Path: "/"}}}
}

// Load reads and parses an exports YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("exports: read %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("exports: parse %s: %w", path, err)
	}
	return t, nil
}

// Parse builds a Table from YAML bytes, validating every entry up front so a
// bad allowlist pattern fails at startup rather than at mount time.
func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Exports) == 0 {
		return nil, fmt.Errorf("no exports defined")
	}
	for _, e := range f.Exports {
		if e.Path == "" || !strings.HasPrefix(e.Path, "/") {
			return nil, fmt.Errorf("export path %q is not absolute", e.Path)
		}
		for _, c := range e.Clients {
			if err := validatePattern(c); err != nil {
				return nil, fmt.Errorf("export %s: %w", e.Path, err)
			}
		}
	}
	return &Table{entries: f.Exports}, nil
}

func validatePattern(pattern string) error {
	if pattern == "*" {
		return nil
	}
	if strings.Contains(pattern, "/") {
		if _, _, err := net.ParseCIDR(pattern); err != nil {
			return fmt.Errorf("bad client pattern %q: %w", pattern, err)
		}
		return nil
	}
	if net.ParseIP(pattern) == nil {
		return fmt.Errorf("bad client pattern %q: not an IP or CIDR", pattern)
	}
	return nil
}

// Lookup returns the export entry for dirpath, if dirpath is exported.
func (t *Table) Lookup(dirpath string) (Entry, bool) {
	for _, e := range t.entries {
		if e.Path == dirpath {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns the table's entries for the MOUNT EXPORT procedure.
func (t *Table) Entries() []Entry {
	return t.entries
}

// Allowed reports whether ip may mount the given entry. An empty allowlist
// admits every client; a nil ip (unparsable client address) is always
// refused.
func (t *Table) Allowed(e Entry, ip net.IP) bool {
	if ip == nil {
		return false
	}
	if len(e.Clients) == 0 {
		return true
	}
	for _, pattern := range e.Clients {
		if matchPattern(pattern, ip) {
			return true
		}
	}
	return false
}

func matchPattern(pattern string, ip net.IP) bool {
	if pattern == "*" {
		return true
	}
	if strings.Contains(pattern, "/") {
		_, ipnet, err := net.ParseCIDR(pattern)
		return err == nil && ipnet.Contains(ip)
	}
	other := net.ParseIP(pattern)
	return other != nil && other.Equal(ip)
}

// Check combines Lookup and Allowed: it reports whether dirpath is exported
// to ip, and if so whether that export is read-only.
func (t *Table) Check(dirpath string, ip net.IP) (readOnly, ok bool) {
	e, found := t.Lookup(dirpath)
	if !found {
		return false, false
	}
	if !t.Allowed(e, ip) {
		return false, false
	}
	return e.ReadOnly, true
}
