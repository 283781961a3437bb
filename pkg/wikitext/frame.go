// frame.go defines the invocation frame stack.

package wikitext

import (
	"fmt"
	"strings"
)

// Frame is the context of one in-progress template invocation.
type Frame struct {
	Title string            // fully-qualified template title
	Args  map[string]string // bound arguments, named or positional ("1", "2", ...)
}

// FrameStack is the chain of in-progress invocations. The root context has
// depth 0 and no frame; each Push adds one level.
type FrameStack struct {
	frames []Frame
}

// Push enters a new invocation and returns the new depth.
func (s *FrameStack) Push(title string, args map[string]string) int {
	s.frames = append(s.frames, Frame{Title: title, Args: args})
	return len(s.frames)
}

// Pop leaves the innermost invocation. Popping the root is a no-op.
func (s *FrameStack) Pop() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Depth is the number of frames above the root.
func (s *FrameStack) Depth() int {
	return len(s.frames)
}

// Top returns the innermost frame.
func (s *FrameStack) Top() (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

// Find scans from the innermost frame outwards for one with the given title.
func (s *FrameStack) Find(title string) (Frame, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Title == title {
			return s.frames[i], true
		}
	}
	return Frame{}, false
}

func (s *FrameStack) String() string {
	var sb strings.Builder
	sb.WriteString("<Frame [")
	for i := len(s.frames) - 1; i >= 0; i-- {
		if i != len(s.frames)-1 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "(%s, %v)", s.frames[i].Title, s.frames[i].Args)
	}
	sb.WriteString("]>")
	return sb.String()
}
