package tui

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// Shimmer sweeps a highlight across a line of text, pauses, and starts over.
type Shimmer struct {
	Interval   time.Duration // tick interval
	Cycle      time.Duration // time for one sweep
	Pause      time.Duration // rest between sweeps
	WidthRatio float64       // highlight width relative to the text

	center    float64
	started   bool
	pausedAt  time.Time
	paused    bool
	trueColor bool
	active    bool
}

// NewShimmer returns a shimmer with the default timing. It is disabled when
// DEEPWORK_REDUCE_MOTION is set.
func NewShimmer() *Shimmer {
	return &Shimmer{
		Interval:   100 * time.Millisecond,
		Cycle:      1800 * time.Millisecond,
		Pause:      500 * time.Millisecond,
		WidthRatio: 0.25,
		trueColor:  os.Getenv("COLORTERM") == "truecolor",
		active:     os.Getenv("DEEPWORK_REDUCE_MOTION") == "",
	}
}

// Active reports whether the shimmer needs ticks.
func (s *Shimmer) Active() bool {
	return s.active
}

// Advance moves the highlight one tick along a text of length n.
func (s *Shimmer) Advance(now time.Time, n int) {
	if !s.active || n <= 0 {
		return
	}
	if !s.started {
		s.started = true
		s.center = -float64(n) * s.WidthRatio
	}
	if s.paused {
		if now.Sub(s.pausedAt) >= s.Pause {
			s.paused = false
			s.center = -float64(n) * s.WidthRatio
		}
		return
	}

	ticks := float64(s.Cycle) / float64(s.Interval)
	distance := float64(n) * (1 + 2*s.WidthRatio)
	s.center += distance / ticks

	end := float64(n) * (1 + s.WidthRatio)
	if s.center >= end {
		s.center = end
		s.paused = true
		s.pausedAt = now
	}
}

// Render colours text according to the current highlight position.
func (s *Shimmer) Render(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	if !s.active {
		return fmt.Sprintf("\033[38;2;167;139;250m%s\033[0m", text)
	}

	var b strings.Builder
	if s.trueColor {
		// Blend #B1B8C7 into #EAE6FF along a bell curve around the center.
		sigma := math.Max(1, s.WidthRatio*float64(len(runes))/2)
		for i, r := range runes {
			dx := float64(i) - s.center
			w := math.Exp(-(dx * dx) / (2 * sigma * sigma))
			fmt.Fprintf(&b, "\033[38;2;%d;%d;%dm%c",
				blend(177, 234, w), blend(184, 230, w), blend(199, 255, w), r)
		}
	} else {
		width := max(1, int(s.WidthRatio*float64(len(runes))))
		from := int(s.center) - width/2
		for i, r := range runes {
			if i >= from && i < from+width {
				fmt.Fprintf(&b, "\033[38;5;147m%c", r)
			} else {
				fmt.Fprintf(&b, "\033[38;5;250m%c", r)
			}
		}
	}
	b.WriteString("\033[0m")
	return b.String()
}

func blend(from, to int, w float64) int {
	return int(float64(from)*(1-w) + float64(to)*w)
}
