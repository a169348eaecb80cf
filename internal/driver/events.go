package driver

// Stage identifies a phase of the check pipeline for progress reporting.
type Stage uint8

const (
	StageLoad Stage = iota + 1
	StageResolve
	StageCheck
	StageSpecialize
)

// Status is the lifecycle of a file within a stage.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event is one progress update. File is empty for pipeline-wide updates.
type Event struct {
	Stage  Stage
	Status Status
	File   string
}

// Sink receives progress events. Implementations must not block the
// pipeline.
type Sink interface {
	Publish(Event)
}

// ChannelSink forwards events to a channel, dropping updates when the
// consumer lags. Progress is advisory, the check never waits on it.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) Publish(ev Event) {
	select {
	case s.Ch <- ev:
	default:
	}
}

type nopSink struct{}

func (nopSink) Publish(Event) {}

func (cfg *Config) sink() Sink {
	if cfg.Progress == nil {
		return nopSink{}
	}
	return cfg.Progress
}
