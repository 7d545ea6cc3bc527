package terminal

import (
	"context"
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/sortscope/pkg/recorder"
)

// Frame drawing characters.
const (
	BarFilled    = "█"
	ActiveMarker = "◀"
	rowSeparator = " │"

	clearScreen = "\033[H\033[2J"
)

// DefaultYMax matches the chart axis bound of generated data.
const DefaultYMax = 110

// StepLabel names snapshot i (0-based) of total as "Step i+1 of total".
func StepLabel(i, total int) string {
	return fmt.Sprintf("Step %d of %d", i+1, total)
}

// Frame renders snap as one horizontal bar per value. Rows at active indices
// are drawn in red and marked; all others in blue.
func Frame[T recorder.Number](cfg Config, snap recorder.Snapshot[T], label string) string {
	var sb strings.Builder

	if label != "" {
		sb.WriteString(cfg.paint(color.Bold).Sprint(label))
		sb.WriteByte('\n')
	}

	if snap.Len() == 0 {
		sb.WriteString("(empty)\n")

		return sb.String()
	}

	base := cfg.paint(color.FgBlue)
	active := cfg.paint(color.FgRed, color.Bold)

	values := make([]string, snap.Len())
	valueWidth := 0

	for i, v := range snap.Values {
		values[i] = fmt.Sprint(v)
		valueWidth = max(valueWidth, len(values[i]))
	}

	indexWidth := len(strconv.Itoa(snap.Len() - 1))
	barWidth := max(cfg.width()-indexWidth-valueWidth-len(rowSeparator)-len(ActiveMarker)-2, 1)

	for i, v := range snap.Values {
		bar := strings.Repeat(BarFilled, barLength(float64(v), cfg.yMax(), barWidth))

		clr, marker := base, ""
		if snap.IsActive(i) {
			clr, marker = active, " "+ActiveMarker
		}

		fmt.Fprintf(&sb, "%*d%s%s %s%s\n", indexWidth, i, rowSeparator, clr.Sprint(bar), values[i], marker)
	}

	return sb.String()
}

func barLength(value, yMax float64, width int) int {
	if value <= 0 || math.IsNaN(value) {
		return 0
	}

	n := int(math.Round(value / yMax * float64(width)))

	return min(n, width)
}

// Player writes frames to Out, pausing Delay between them.
type Player struct {
	Out    io.Writer
	Config Config
	Delay  time.Duration
	// Clear redraws each frame in place.
	Clear bool
}

// Play draws every snapshot pulled from frames and returns how many were
// shown. Cancelling ctx stops the loop, which abandons the underlying stream.
func Play[T recorder.Number](
	ctx context.Context, p Player, frames iter.Seq2[int, recorder.Snapshot[T]], total int,
) (int, error) {
	shown := 0

	for i, snap := range frames {
		if err := ctx.Err(); err != nil {
			return shown, fmt.Errorf("play: %w", err)
		}

		var sb strings.Builder
		if p.Clear {
			sb.WriteString(clearScreen)
		}

		sb.WriteString(Frame(p.Config, snap, StepLabel(i, total)))

		_, writeErr := io.WriteString(p.Out, sb.String())
		if writeErr != nil {
			return shown, fmt.Errorf("write frame %d: %w", i, writeErr)
		}

		shown++

		if p.Delay <= 0 || i >= total-1 {
			continue
		}

		timer := time.NewTimer(p.Delay)

		select {
		case <-ctx.Done():
			timer.Stop()

			return shown, fmt.Errorf("play: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return shown, nil
}
