package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Statistics for a single frame.
type FrameStats struct {
	// Accumulated samples including this frame.
	SampleCount uint32

	// The effective path depth used for the frame.
	MaxDepth uint32

	// True if accumulation was reset before rendering the frame.
	Reset bool

	TraceTime   time.Duration
	PresentTime time.Duration
	RenderTime  time.Duration
}

// Aggregated render loop statistics.
type LoopStats struct {
	Frames uint64
	Resets uint64

	// Total time spent rendering frames.
	RenderTime time.Duration

	// Stats for the last rendered frame.
	Last FrameStats
}

func (s *LoopStats) record(frame FrameStats) {
	s.Frames++
	if frame.Reset {
		s.Resets++
	}
	s.RenderTime += frame.RenderTime
	s.Last = frame
}

// Build a tabular representation of the loop statistics.
func (s LoopStats) Table() string {
	var avgFrame time.Duration
	if s.Frames != 0 {
		avgFrame = s.RenderTime / time.Duration(s.Frames)
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frames", "Resets", "Samples", "Depth", "Last trace", "Last present", "Avg frame"})
	table.Append([]string{
		fmt.Sprintf("%d", s.Frames),
		fmt.Sprintf("%d", s.Resets),
		fmt.Sprintf("%d", s.Last.SampleCount),
		fmt.Sprintf("%d", s.Last.MaxDepth),
		s.Last.TraceTime.String(),
		s.Last.PresentTime.String(),
		avgFrame.String(),
	})
	table.SetFooter([]string{"", "", "", "", "", "TOTAL", s.RenderTime.String()})

	table.Render()
	return buf.String()
}
