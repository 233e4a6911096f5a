package target

import "strings"

// Entry maps a service name to its main configuration file.
type Entry struct {
	Match string `json:"match"`
	Path  string `json:"path"`
}

// Table is an ordered list of service entries; earlier entries win.
type Table []Entry

// DefaultTable covers the services this image wraps. Matching is by
// substring against each argv element in order, preserving the behavior of
// the shell entrypoint this replaces: an argument that merely contains a
// service name (a log path, say) will match. OSLO_CONFIG_FILE overrides the
// derivation when that is a problem.
var DefaultTable = Table{
	{Match: "heat", Path: "/etc/heat/heat.conf"},
	{Match: "glance", Path: "/etc/glance/glance.conf"},
	{Match: "cinder", Path: "/etc/cinder/cinder.conf"},
	{Match: "nova", Path: "/etc/nova/nova.conf"},
	{Match: "placement", Path: "/etc/placement/placement.conf"},
	{Match: "neutron", Path: "/etc/neutron/neutron.conf"},
}

// DeriveConfig scans argv for a known service name and returns its config
// path. ok is false when no argument matches, in which case the merge is a
// no-op.
func DeriveConfig(argv []string, table Table) (path string, ok bool) {
	for _, arg := range argv {
		for _, e := range table {
			if strings.Contains(arg, e.Match) {
				return e.Path, true
			}
		}
	}
	return "", false
}
