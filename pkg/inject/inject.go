// Package inject threads release statements into C source text at the
// deallocation points computed by analysis.
package inject

import (
	"context"
	"fmt"
	"strings"

	"github.com/l3aro/autofree/internal/log"
	"github.com/l3aro/autofree/pkg/points"
	"github.com/l3aro/autofree/pkg/store"
)

// Injector inserts release statements.
type Injector struct {
	// Release is the function called on each variable, "free" by default.
	Release string

	// Indent prefixes each inserted statement, a tab by default.
	Indent string

	Logger log.Logger
}

// New creates an Injector with default settings.
func New() *Injector {
	return &Injector{Release: "free", Indent: "\t", Logger: log.Nop()}
}

// Inject copies lines verbatim and, after every line i, inserts one
// release statement per point recorded at line i for the function that
// resolver places line i in. Points are emitted in set order. Lines keep
// their original terminators; see SplitLines.
func (in *Injector) Inject(lines []string, set *points.Set, resolver ScopeResolver) ([]string, int) {
	out := make([]string, 0, len(lines)+set.Len())
	inserted := 0
	for i, line := range lines {
		out = append(out, line)

		fn, ok := resolver.ScopeOf(i + 1)
		if !ok {
			continue
		}
		for _, p := range set.At(fn, i+1) {
			if !strings.HasSuffix(out[len(out)-1], "\n") {
				out[len(out)-1] += "\n"
			}
			out = append(out, fmt.Sprintf("%s%s(%s);\n", in.Indent, in.Release, p.VariableName))
			inserted++
			in.logger().Debug("inserted release", "function", fn, "variable", p.VariableName, "line", i+1)
		}
	}
	return out, inserted
}

// InjectSource instruments content using a BraceScope resolver.
func (in *Injector) InjectSource(content []byte, set *points.Set) ([]byte, int) {
	lines := SplitLines(content)
	out, inserted := in.Inject(lines, set, NewBraceScope(lines))
	return []byte(strings.Join(out, "")), inserted
}

// InjectFile reads the source at input, instruments it and writes the
// result to output.
func (in *Injector) InjectFile(ctx context.Context, st *store.Store, input, output string, set *points.Set) (int, error) {
	content, err := st.Read(ctx, input)
	if err != nil {
		return 0, err
	}
	instrumented, inserted := in.InjectSource(content, set)
	if err := st.Write(ctx, output, instrumented); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (in *Injector) logger() log.Logger {
	if in.Logger == nil {
		return log.Nop()
	}
	return in.Logger
}

// SplitLines splits content after every "\n", keeping the terminators.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
