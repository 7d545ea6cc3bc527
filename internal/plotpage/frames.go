package plotpage

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/sortscope/pkg/recorder"
)

// Bar colours and axis bound used when ChartOpts leaves them empty.
const (
	DefaultBaseColor   = "#4F46E5"
	DefaultActiveColor = "#EF4444"
	DefaultYMax        = 110
)

// ChartOpts configures a single snapshot chart.
type ChartOpts struct {
	Theme Theme
	Style Style
	// YMin and YMax clamp the value axis so consecutive frames line up.
	YMin        float64
	YMax        float64
	BaseColor   string
	ActiveColor string
}

// DefaultChartOpts returns the dark-themed defaults.
func DefaultChartOpts() ChartOpts {
	return ChartOpts{
		Theme:       ThemeDark,
		Style:       DefaultStyle(),
		YMax:        DefaultYMax,
		BaseColor:   DefaultBaseColor,
		ActiveColor: DefaultActiveColor,
	}
}

func (c ChartOpts) withDefaults() ChartOpts {
	if c.Theme == "" {
		c.Theme = ThemeDark
	}

	if c.Style == (Style{}) {
		c.Style = DefaultStyle()
	}

	if c.YMax <= c.YMin {
		c.YMax = c.YMin + DefaultYMax
	}

	if c.BaseColor == "" {
		c.BaseColor = DefaultBaseColor
	}

	if c.ActiveColor == "" {
		c.ActiveColor = DefaultActiveColor
	}

	return c
}

// SnapshotChart builds a bar chart of one snapshot: one bar per value, bars
// at active indices drawn in the active colour. Active indices outside the
// value range never match a bar and are ignored.
func SnapshotChart[T recorder.Number](snap recorder.Snapshot[T], label string, co ChartOpts) *charts.Bar {
	co = co.withDefaults()
	theme := GetThemeConfig(co.Theme)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:           co.Style.Width,
			Height:          co.Style.Height,
			BackgroundColor: theme.ChartBackground,
			Theme:           theme.EChartsTheme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      label,
			Left:       "center",
			TitleStyle: &opts.TextStyle{Color: theme.ChartText},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithGridOpts(opts.Grid{
			Left: co.Style.GridLeft, Right: co.Style.GridRight,
			Top: co.Style.GridTop, Bottom: co.Style.GridBottom,
			ContainLabel: opts.Bool(true),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Color: theme.ChartTextMuted},
			AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: theme.ChartAxis}},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Min:       co.YMin,
			Max:       co.YMax,
			AxisLabel: &opts.AxisLabel{Color: theme.ChartTextMuted},
			SplitLine: &opts.SplitLine{
				Show:      opts.Bool(true),
				LineStyle: &opts.LineStyle{Color: theme.ChartGrid},
			},
		}),
	)

	labels := make([]string, snap.Len())
	data := make([]opts.BarData, snap.Len())

	for i, v := range snap.Values {
		color := co.BaseColor
		if snap.IsActive(i) {
			color = co.ActiveColor
		}

		labels[i] = strconv.Itoa(i)
		data[i] = opts.BarData{Value: v, ItemStyle: &opts.ItemStyle{Color: color}}
	}

	bar.SetXAxis(labels)
	bar.AddSeries("values", data)

	return bar
}

// FrameOptions configures FramePage.
type FrameOptions struct {
	Title string
	// MaxFrames caps the number of charts on the page. Zero keeps every
	// snapshot. The first and last snapshots are always included.
	MaxFrames int
	Chart     ChartOpts
	// Label names the snapshot at index i of total. Defaults to
	// "Step i+1 of total".
	Label func(i, total int) string
}

// Frame is a snapshot picked for drawing together with its position in the
// run.
type Frame[T recorder.Number] struct {
	Index    int
	Snapshot recorder.Snapshot[T]
}

// FramePage builds a page with one chart per sampled snapshot. The value axis
// is widened when the data exceed Chart.YMin or Chart.YMax, so all frames
// share one scale.
func FramePage[T recorder.Number](history recorder.History[T], fo FrameOptions) (*Page, error) {
	if len(history) == 0 {
		return nil, recorder.ErrEmptyHistory
	}

	picked := SampleFrames(len(history), fo.MaxFrames)
	frames := make([]Frame[T], len(picked))

	for i, idx := range picked {
		frames[i] = Frame[T]{Index: idx, Snapshot: history[idx]}
	}

	return SampledFramePage(frames, len(history), fo)
}

// SampleStream filters seq down to the snapshots SampleFrames picks out of
// total. The underlying stream is still pulled to the end.
func SampleStream[T recorder.Number](
	seq iter.Seq2[int, recorder.Snapshot[T]], total, maxFrames int,
) iter.Seq2[int, recorder.Snapshot[T]] {
	picked := SampleFrames(total, maxFrames)

	return func(yield func(int, recorder.Snapshot[T]) bool) {
		next := 0

		for i, snap := range seq {
			if next >= len(picked) || i != picked[next] {
				continue
			}

			next++

			if !yield(i, snap) {
				return
			}
		}
	}
}

// CollectFrames keeps the snapshots SampleStream picks, so a page can be
// built without retaining the whole history.
func CollectFrames[T recorder.Number](seq iter.Seq2[int, recorder.Snapshot[T]], total, maxFrames int) []Frame[T] {
	var frames []Frame[T]

	for i, snap := range SampleStream(seq, total, maxFrames) {
		frames = append(frames, Frame[T]{Index: i, Snapshot: snap})
	}

	return frames
}

// SampledFramePage builds a page from frames already picked out of a run of
// total snapshots. Frame indices drive the section labels.
func SampledFramePage[T recorder.Number](frames []Frame[T], total int, fo FrameOptions) (*Page, error) {
	if len(frames) == 0 || total <= 0 {
		return nil, recorder.ErrEmptyHistory
	}

	label := fo.Label
	if label == nil {
		label = func(i, total int) string { return fmt.Sprintf("Step %d of %d", i+1, total) }
	}

	title := fo.Title
	if title == "" {
		title = "Merge sort"
	}

	first := frames[0].Snapshot
	co := fitAxis(fo.Chart.withDefaults(), first.Values)

	page := NewPage(title, fmt.Sprintf("%d elements sorted in %d writes.", first.Len(), total-1))
	page.WithTheme(co.Theme)
	page.Stats = []Stat{
		{Label: "Elements", Value: strconv.Itoa(first.Len())},
		{Label: "Snapshots", Value: strconv.Itoa(total)},
		{Label: "Frames shown", Value: strconv.Itoa(len(frames))},
	}

	for _, frame := range frames {
		snap := frame.Snapshot
		section := Section{
			Title: label(frame.Index, total),
			Chart: SnapshotChart(snap, "", co),
		}

		if len(snap.Active) > 0 && snap.Active[0] >= 0 && snap.Active[0] < snap.Len() {
			k := snap.Active[0]
			section.Subtitle = fmt.Sprintf("wrote %v at index %d", snap.Values[k], k)
		}

		page.Add(section)
	}

	return page, nil
}

// SampleFrames returns the snapshot indices to draw out of total. Every index
// is returned when maxFrames is zero or not smaller than total; otherwise the
// indices are evenly spaced and always include 0 and total-1.
func SampleFrames(total, maxFrames int) []int {
	if total <= 0 {
		return nil
	}

	if maxFrames <= 0 || maxFrames >= total {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}

		return all
	}

	maxFrames = max(maxFrames, 2)
	frames := make([]int, maxFrames)

	for i := range frames {
		frames[i] = i * (total - 1) / (maxFrames - 1)
	}

	return frames
}

func fitAxis[T recorder.Number](co ChartOpts, values []T) ChartOpts {
	for _, v := range values {
		f := float64(v)
		if f > co.YMax {
			co.YMax = f
		}

		if f < co.YMin {
			co.YMin = f
		}
	}

	return co
}
