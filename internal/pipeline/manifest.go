package pipeline

// Manifest is the ordered list of script paths a bundling step emitted, as
// they should be referenced from an entry page.
type Manifest struct {
	Paths []string
}

// Len returns the number of recorded paths.
func (m Manifest) Len() int { return len(m.Paths) }

// Clone returns an independent copy.
func (m Manifest) Clone() Manifest {
	out := make([]string, len(m.Paths))
	copy(out, m.Paths)
	return Manifest{Paths: out}
}

// Manifests groups the two manifests consumed by entry-template rendering.
type Manifests struct {
	App    Manifest
	Vendor Manifest
}
