package types

// OS is one of the operating-system keys buckshift partitions dependencies
// by. Generated rules never mention individual triples, only these keys.
type OS string

// Supported operating systems, in canonical output order.
const (
	OSLinux   OS = "linux"
	OSMacos   OS = "macos"
	OSWindows OS = "windows"
)

// AllOS lists the supported operating systems in canonical order
// (alphabetical, which is also the order os_deps keys are rendered in).
var AllOS = []OS{OSLinux, OSMacos, OSWindows}

// Key returns the os_deps map key for this OS.
func (o OS) Key() string { return string(o) }

// BuckLabel returns the prelude constraint value for this OS, so selects
// work with platform definitions like `prelude//os/constraints:linux`.
func (o OS) BuckLabel() string {
	return "prelude//os/constraints:" + string(o)
}

// OSSet is a set of operating systems.
type OSSet map[OS]struct{}

// NewOSSet returns a set containing the given systems.
func NewOSSet(oses ...OS) OSSet {
	s := make(OSSet, len(oses))
	for _, o := range oses {
		s[o] = struct{}{}
	}
	return s
}

// Add inserts o into the set.
func (s OSSet) Add(o OS) { s[o] = struct{}{} }

// Has reports whether o is in the set.
func (s OSSet) Has(o OS) bool {
	_, ok := s[o]
	return ok
}

// IsFull reports whether the set covers every supported OS.
func (s OSSet) IsFull() bool { return len(s) == len(AllOS) }

// Sorted returns the members in canonical order.
func (s OSSet) Sorted() []OS {
	out := make([]OS, 0, len(s))
	for _, o := range AllOS {
		if s.Has(o) {
			out = append(out, o)
		}
	}
	return out
}

// BuckLabels returns the sorted prelude constraint labels for the set.
func (s OSSet) BuckLabels() []string {
	oses := s.Sorted()
	labels := make([]string, len(oses))
	for i, o := range oses {
		labels[i] = o.BuckLabel()
	}
	return labels
}
