package studio

import "fmt"

// NoticeKind classifies a user-facing notice.
type NoticeKind uint8

const (
	// NoticePrecondition reports a tool that could not start, such as crop
	// with no image loaded.
	NoticePrecondition NoticeKind = iota

	// NoticeDecode reports a source that failed to decode.
	NoticeDecode
)

// String returns a string representation of the notice kind.
func (k NoticeKind) String() string {
	switch k {
	case NoticePrecondition:
		return "precondition"
	case NoticeDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Notice is a non-fatal problem the user should be told about.
type Notice struct {
	Kind NoticeKind
	// Source names the file or tool the notice is about.
	Source string
	Err    error
}

// String formats the notice for display.
func (n Notice) String() string {
	return fmt.Sprintf("%s: %s: %v", n.Kind, n.Source, n.Err)
}

func logNotice(n Notice) {
	Logger().Warn("studio: notice",
		"kind", n.Kind.String(),
		"source", n.Source,
		"err", n.Err,
	)
}
