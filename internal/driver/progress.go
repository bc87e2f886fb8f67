package driver

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageScan is the lexical segmentation stage.
	StageScan Stage = "scan"
	// StageExtract is the test-case extraction stage.
	StageExtract Stage = "extract"
	// StageAnalyze is the feature analysis and rule evaluation stage.
	StageAnalyze Stage = "analyze"
	// StageReport is the summarization stage.
	StageReport Stage = "report"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is currently being analyzed.
	StatusWorking Status = "working"
	// StatusDone indicates the file is done.
	StatusDone Status = "done"
	// StatusError indicates the file failed to load.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the overall run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emitStage(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageScan, Status: StatusQueued})
	}
}

// BindObserver maps phase events of a single file onto progress events.
// Intermediate phases only report working: done means the whole file
// finished, not a single phase.
func BindObserver(sink ProgressSink, file string) PhaseObserver {
	if sink == nil {
		return nil
	}
	return func(ev PhaseEvent) {
		var stage Stage
		switch ev.Name {
		case "detect", "scan":
			stage = StageScan
		case "extract":
			stage = StageExtract
		case "analyze":
			stage = StageAnalyze
		case "report":
			stage = StageReport
		default:
			return
		}
		switch ev.Status {
		case PhaseStart:
			emitStage(sink, file, stage, StatusWorking, nil, 0)
		case PhaseEnd:
			if stage == StageReport {
				emitStage(sink, file, stage, StatusDone, nil, ev.Elapsed)
			}
		}
	}
}

// chainObservers calls both observers for every event. Nil arguments collapse.
func chainObservers(first, second PhaseObserver) PhaseObserver {
	if first == nil {
		return second
	}
	if second == nil {
		return first
	}
	return func(ev PhaseEvent) {
		first(ev)
		second(ev)
	}
}
