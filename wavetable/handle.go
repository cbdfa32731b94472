package wavetable

import "sync/atomic"

// Handle shares the current table between the editor and the audio path.
// Load never blocks and always returns a complete table; a replaced table
// stays valid for as long as a reader holds it.
type Handle struct {
	p atomic.Pointer[Wavetable]
}

// NewHandle returns a handle holding w. A nil w selects Default().
func NewHandle(w *Wavetable) *Handle {
	if w == nil {
		w = Default()
	}
	h := &Handle{}
	h.p.Store(w)
	return h
}

// Load returns the current table.
func (h *Handle) Load() *Wavetable {
	if w := h.p.Load(); w != nil {
		return w
	}
	return Default()
}

// Store publishes w. Nil is ignored.
func (h *Handle) Store(w *Wavetable) {
	if w != nil {
		h.p.Store(w)
	}
}

// Rebuild builds a table from raw and publishes it. If the build fails the
// previous table remains current and the error is returned.
func (h *Handle) Rebuild(raw []float32, sliceLen int, opts ...Option) error {
	w, err := Build(raw, sliceLen, opts...)
	if err != nil {
		return err
	}
	h.p.Store(w)
	return nil
}
