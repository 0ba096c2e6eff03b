package recorder

import "time"

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRecording
	PhaseReady
	PhaseUploading
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRecording:
		return "recording"
	case PhaseReady:
		return "ready"
	case PhaseUploading:
		return "uploading"
	default:
		return "unknown"
	}
}

// State is one of Idle, Recording, Ready or Uploading.
type State interface {
	Phase() Phase
	state()
}

type Idle struct{}

type Recording struct {
	Started time.Time
	Device  string
}

// Ready holds the payload waiting to be uploaded.
type Ready struct {
	Payload Payload
}

type Uploading struct {
	Payload Payload
}

func (Idle) Phase() Phase      { return PhaseIdle }
func (Recording) Phase() Phase { return PhaseRecording }
func (Ready) Phase() Phase     { return PhaseReady }
func (Uploading) Phase() Phase { return PhaseUploading }

func (Idle) state()      {}
func (Recording) state() {}
func (Ready) state()     {}
func (Uploading) state() {}

type Source int

const (
	SourceRecording Source = iota
	SourceFile
)

func (s Source) String() string {
	if s == SourceFile {
		return "file"
	}
	return "recording"
}

// Payload is the in-memory audio that a single upload sends.
type Payload struct {
	Data     []byte
	MIME     string
	Name     string
	Source   Source
	Duration time.Duration // zero for files
}

func (p Payload) Size() int { return len(p.Data) }
