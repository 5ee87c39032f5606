package scanner

import "strings"

// Kind classifies a file found by the scanner.
type Kind int

const (
	KindOther Kind = iota
	KindSource
	KindHeader
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindHeader:
		return "header"
	default:
		return "other"
	}
}

var kinds = map[string]Kind{
	".c": KindSource,
	".h": KindHeader,
}

// KindOf classifies a file extension, case-insensitively.
func KindOf(ext string) Kind {
	return kinds[strings.ToLower(ext)]
}
