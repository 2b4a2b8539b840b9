// Package entity defines the notice document model sent to the error tracker:
// stack frames, the flattened error descriptor, request and server context,
// and the notifier identity. All values are plain data; the only logic here is
// cause-chain flattening and message truncation.
package entity

// MarkerLineNumber is the line number carried by synthetic frames that
// separate one cause's frames from the next in a flattened backtrace.
const MarkerLineNumber = -1

// causedByPrefix prefixes the File field of marker frames.
const causedByPrefix = "Caused by: "

// Frame is one stack location in a backtrace.
type Frame struct {
	File   string `json:"file"`
	Number int    `json:"number"`
	Method string `json:"method,omitempty"` // Empty for marker frames
}

// IsMarker reports whether f is a cause-chain marker frame.
func (f Frame) IsMarker() bool {
	return f.Number == MarkerLineNumber
}

// MarkerFrame returns the frame inserted before the frames of a non-first
// cause in a flattened backtrace.
func MarkerFrame(cause *ErrorView) Frame {
	return Frame{
		File:   causedByPrefix + cause.String(),
		Number: MarkerLineNumber,
	}
}
