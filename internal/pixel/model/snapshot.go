package model

// FrozenOutput is an outpoint frozen for the pixels of one chroma.
type FrozenOutput struct {
	OutPoint OutPoint
	Chroma   Chroma
}

// Snapshot is an immutable view of the authorization state handed to verifiers.
// It is taken once per block and never mutated afterwards.
type Snapshot struct {
	version uint64
	frozen  map[FrozenOutput]struct{}
	chromas map[Chroma]ChromaInfo
}

// NewSnapshot copies the given state into a snapshot.
func NewSnapshot(version uint64, frozen []FrozenOutput, chromas []ChromaInfo) *Snapshot {
	s := &Snapshot{
		version: version,
		frozen:  make(map[FrozenOutput]struct{}, len(frozen)),
		chromas: make(map[Chroma]ChromaInfo, len(chromas)),
	}
	for _, f := range frozen {
		s.frozen[f] = struct{}{}
	}
	for _, c := range chromas {
		s.chromas[c.Chroma] = c
	}
	return s
}

// Version is the committed height the snapshot reflects.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// IsFrozen reports whether the issuer of chroma froze op.
func (s *Snapshot) IsFrozen(op OutPoint, chroma Chroma) bool {
	_, ok := s.frozen[FrozenOutput{OutPoint: op, Chroma: chroma}]
	return ok
}

// Chroma looks up a registered chroma.
func (s *Snapshot) Chroma(c Chroma) (ChromaInfo, bool) {
	info, ok := s.chromas[c]
	return info, ok
}

// FrozenCount returns the size of the frozen set.
func (s *Snapshot) FrozenCount() int {
	return len(s.frozen)
}
