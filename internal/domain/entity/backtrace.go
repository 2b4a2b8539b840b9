package entity

// FlattenMode selects which frames follow each cause marker when a cause
// chain is flattened into a single backtrace.
type FlattenMode int

const (
	// CauseOwnFrames appends each cause's own frames after its marker.
	CauseOwnFrames FlattenMode = iota

	// OuterFramesReused appends the outermost error's frames after every
	// marker. Older tracker integrations produced this shape and some
	// grouping rules depend on it.
	OuterFramesReused
)

// String returns the configuration name of the mode.
func (m FlattenMode) String() string {
	switch m {
	case OuterFramesReused:
		return "outer_frames_reused"
	default:
		return "cause_own_frames"
	}
}

// ParseFlattenMode maps a configuration name onto a FlattenMode.
// Unknown names map to CauseOwnFrames.
func ParseFlattenMode(s string) FlattenMode {
	if s == OuterFramesReused.String() {
		return OuterFramesReused
	}
	return CauseOwnFrames
}

// FlattenBacktrace walks the chain from view to its root cause and produces
// one ordered frame list. The tracker schema accepts a single backtrace per
// notice, so causes are delimited by marker frames: the first link
// contributes its frames directly, every later link contributes a marker
// followed by frames selected by mode.
func FlattenBacktrace(view *ErrorView, mode FlattenMode) []Frame {
	if view == nil {
		return []Frame{}
	}

	frames := make([]Frame, 0, estimateFrames(view, mode))
	for cur := view; cur != nil; cur = cur.Cause {
		source := cur.Frames
		if cur != view {
			frames = append(frames, MarkerFrame(cur))
			if mode == OuterFramesReused {
				source = view.Frames
			}
		}
		frames = append(frames, source...)
	}
	return frames
}

func estimateFrames(view *ErrorView, mode FlattenMode) int {
	n := 0
	for cur := view; cur != nil; cur = cur.Cause {
		if mode == OuterFramesReused {
			n += len(view.Frames) + 1
		} else {
			n += len(cur.Frames) + 1
		}
	}
	return n
}
