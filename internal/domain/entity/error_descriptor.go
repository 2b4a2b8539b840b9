package entity

// MaxMessageLength is the maximum number of characters kept from an error
// message.
const MaxMessageLength = 1024

// ErrorDescriptor is the "error" section of a notice.
type ErrorDescriptor struct {
	Class     string  `json:"class"`
	Message   string  `json:"message"`
	Backtrace []Frame `json:"backtrace"`
}

// NewErrorDescriptor builds the descriptor for the outermost link of view.
// The message is truncated once, here; the backtrace is the flattened cause
// chain. A nil view yields an empty descriptor with an empty backtrace.
func NewErrorDescriptor(view *ErrorView, mode FlattenMode) ErrorDescriptor {
	if view == nil {
		return ErrorDescriptor{Backtrace: []Frame{}}
	}
	return ErrorDescriptor{
		Class:     view.TypeName,
		Message:   TruncateMessage(view.Message),
		Backtrace: FlattenBacktrace(view, mode),
	}
}

// TruncateMessage returns the first MaxMessageLength characters of msg.
// Counting is by rune so multi-byte characters are never split.
func TruncateMessage(msg string) string {
	if len(msg) <= MaxMessageLength {
		return msg
	}
	count := 0
	for i := range msg {
		if count == MaxMessageLength {
			return msg[:i]
		}
		count++
	}
	return msg
}
