package recorder

import "time"

// Snapshot is an immutable view of the recorder used for rendering.
type Snapshot struct {
	State      State
	Status     Status
	Transcript string
	CanRecord  bool
}

func (s Snapshot) Phase() Phase { return s.State.Phase() }

// Payload returns the pending payload, if any.
func (s Snapshot) Payload() (Payload, bool) {
	switch st := s.State.(type) {
	case Ready:
		return st.Payload, true
	case Uploading:
		return st.Payload, true
	}
	return Payload{}, false
}

// Elapsed reports how long the current recording has been running.
func (s Snapshot) Elapsed(now time.Time) time.Duration {
	if rec, ok := s.State.(Recording); ok {
		return now.Sub(rec.Started)
	}
	return 0
}

// Controls lists which user actions are currently allowed.
type Controls struct {
	Record     bool
	Stop       bool
	SelectFile bool
	Upload     bool
}

func (s Snapshot) Controls() Controls {
	phase := s.Phase()
	return Controls{
		Record:     s.CanRecord && phase == PhaseIdle,
		Stop:       phase == PhaseRecording,
		SelectFile: phase == PhaseIdle,
		Upload:     phase == PhaseReady,
	}
}

func (r *Recorder) snapshotLocked() Snapshot {
	return Snapshot{
		State:      r.state,
		Status:     r.status,
		Transcript: r.transcript,
		CanRecord:  r.audioCtx != nil,
	}
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}
