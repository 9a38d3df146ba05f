// Package platform classifies dependency edges by operating system, by
// evaluating their cfg predicates against cached per-triple configuration
// snapshots.
package platform

import "github.com/dukaforge/buckshift/pkg/types"

// SupportedTarget pairs an OS key with one representative triple.
type SupportedTarget struct {
	OS     types.OS
	Triple string
}

// SupportedTargets lists the tier-1 triples (plus x86_64-apple-darwin) used
// for cfg evaluation. Several triples map to the same OS key; an OS is
// active for an edge when any of its triples satisfies the predicate.
var SupportedTargets = []SupportedTarget{
	{types.OSMacos, "aarch64-apple-darwin"},
	{types.OSMacos, "x86_64-apple-darwin"},
	{types.OSWindows, "aarch64-pc-windows-msvc"},
	{types.OSWindows, "x86_64-pc-windows-msvc"},
	{types.OSWindows, "x86_64-pc-windows-gnu"},
	{types.OSWindows, "i686-pc-windows-msvc"},
	{types.OSLinux, "aarch64-unknown-linux-gnu"},
	{types.OSLinux, "x86_64-unknown-linux-gnu"},
	{types.OSLinux, "i686-unknown-linux-gnu"},
}

// Triples returns every supported triple, in table order.
func Triples() []string {
	out := make([]string, len(SupportedTargets))
	for i, t := range SupportedTargets {
		out[i] = t.Triple
	}
	return out
}

// exclusiveCrates maps crates that cannot even be resolved or built off
// their native platform to the systems they are confined to. Nodes for
// these crates get a rule-level compatible_with constraint, so buck2
// refuses to build them on an incompatible platform even when referenced
// indirectly.
var exclusiveCrates = map[string]types.OSSet{
	"hyper-named-pipe":     types.NewOSSet(types.OSWindows),
	"system-configuration": types.NewOSSet(types.OSMacos),
	"windows":              types.NewOSSet(types.OSWindows),
	"windows-future":       types.NewOSSet(types.OSWindows),
	"winreg":               types.NewOSSet(types.OSWindows),
}

// ExclusivePlatforms returns the hard platform restriction for a crate name,
// if it is on the exclusivity allowlist.
func ExclusivePlatforms(crateName string) (types.OSSet, bool) {
	set, ok := exclusiveCrates[crateName]
	return set, ok
}
