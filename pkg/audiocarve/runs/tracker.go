package runs

import "github.com/himanishpuri/AudioCarve/pkg/audiocarve/classify"

// Run is an inclusive range of block indices classified as audio.
type Run struct {
	Start int64
	End   int64
}

// Blocks returns the number of blocks covered by the run.
func (r Run) Blocks() int64 {
	return r.End - r.Start + 1
}

// Offset returns the byte offset of the run's first block.
func (r Run) Offset(blockSize int) int64 {
	return r.Start * int64(blockSize)
}

// Length returns the nominal byte length of the run. The last block of an
// image may be short, so readers should stop at EOF.
func (r Run) Length(blockSize int) int64 {
	return r.Blocks() * int64(blockSize)
}

// Event tells the caller what an observation did to the tracker.
type Event int

const (
	EventNone Event = iota
	EventOpened
	EventClosed
)

// Tracker turns a stream of block classes into audio runs.
type Tracker struct {
	open  bool
	start int64
	runs  []Run
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe feeds the class of block index. Indices must be strictly increasing
// and contiguous.
func (t *Tracker) Observe(index int64, class classify.Class) Event {
	if class == classify.Audio {
		if !t.open {
			t.open = true
			t.start = index
			return EventOpened
		}
		return EventNone
	}

	if t.open {
		t.runs = append(t.runs, Run{Start: t.start, End: index - 1})
		t.open = false
		return EventClosed
	}
	return EventNone
}

// Finish closes a run still open at end of input. next is the index one past
// the last observed block.
func (t *Tracker) Finish(next int64) []Run {
	if t.open {
		t.runs = append(t.runs, Run{Start: t.start, End: next - 1})
		t.open = false
	}
	return t.Runs()
}

// Open reports whether an audio run is in progress.
func (t *Tracker) Open() bool {
	return t.open
}

// Runs returns the runs closed so far.
func (t *Tracker) Runs() []Run {
	out := make([]Run, len(t.runs))
	copy(out, t.runs)
	return out
}

// Detect returns the audio runs in a complete sequence of classes.
func Detect(classes []classify.Class) []Run {
	t := NewTracker()
	for i, c := range classes {
		t.Observe(int64(i), c)
	}
	return t.Finish(int64(len(classes)))
}
