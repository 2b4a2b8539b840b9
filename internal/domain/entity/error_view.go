package entity

// ErrorView is an immutable snapshot of one link in an error cause chain.
// It decouples backtrace flattening from runtime error introspection: anything
// that can describe a type name, message, frames and an optional cause can be
// flattened.
type ErrorView struct {
	TypeName string
	Message  string
	Frames   []Frame
	Cause    *ErrorView
}

// String renders the view the way a marker frame names a cause:
// "<type>: <message>", or just the type name when there is no message.
func (v *ErrorView) String() string {
	if v == nil {
		return ""
	}
	if v.Message == "" {
		return v.TypeName
	}
	return v.TypeName + ": " + v.Message
}

// Depth returns the number of links in the chain starting at v.
func (v *ErrorView) Depth() int {
	n := 0
	for cur := v; cur != nil; cur = cur.Cause {
		n++
	}
	return n
}
