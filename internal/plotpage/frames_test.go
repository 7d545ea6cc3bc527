package plotpage_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sortscope/internal/plotpage"
	"github.com/Sumatoshi-tech/sortscope/pkg/recorder"
)

func workedHistory(t *testing.T) recorder.History[int] {
	t.Helper()

	rec := recorder.New[int]()
	rec.Load([]int{5, 3, 8, 1})

	return rec.Sort()
}

func barData(t *testing.T, data any) []opts.BarData {
	t.Helper()

	bars, ok := data.([]opts.BarData)
	require.True(t, ok, "series data is %T", data)

	return bars
}

func TestSnapshotChart_ColoursActiveBar(t *testing.T) {
	t.Parallel()

	h := workedHistory(t)
	snap := h[1]
	require.Equal(t, []int{0}, snap.Active)

	chart := plotpage.SnapshotChart(snap, "Step 2 of 9", plotpage.DefaultChartOpts())
	require.Len(t, chart.MultiSeries, 1)

	bars := barData(t, chart.MultiSeries[0].Data)
	require.Len(t, bars, 4)

	for i, bar := range bars {
		assert.Equal(t, snap.Values[i], bar.Value)
		require.NotNil(t, bar.ItemStyle)

		if i == 0 {
			assert.Equal(t, plotpage.DefaultActiveColor, bar.ItemStyle.Color)
		} else {
			assert.Equal(t, plotpage.DefaultBaseColor, bar.ItemStyle.Color)
		}
	}
}

func TestSnapshotChart_InitialHasNoActiveBars(t *testing.T) {
	t.Parallel()

	h := workedHistory(t)

	chart := plotpage.SnapshotChart(h[0], "", plotpage.ChartOpts{})

	for _, bar := range barData(t, chart.MultiSeries[0].Data) {
		assert.Equal(t, plotpage.DefaultBaseColor, bar.ItemStyle.Color)
	}
}

func TestSnapshotChart_IgnoresOutOfRangeActive(t *testing.T) {
	t.Parallel()

	snap := recorder.Snapshot[int]{Values: []int{1, 2}, Active: []int{-1, 7}}

	chart := plotpage.SnapshotChart(snap, "", plotpage.DefaultChartOpts())

	bars := barData(t, chart.MultiSeries[0].Data)
	require.Len(t, bars, 2)

	for _, bar := range bars {
		assert.Equal(t, plotpage.DefaultBaseColor, bar.ItemStyle.Color)
	}
}

func TestSnapshotChart_CustomColours(t *testing.T) {
	t.Parallel()

	h := workedHistory(t)
	co := plotpage.ChartOpts{BaseColor: "#000000", ActiveColor: "#ffffff", YMax: 10}

	bars := barData(t, plotpage.SnapshotChart(h[2], "", co).MultiSeries[0].Data)

	assert.Equal(t, "#000000", bars[0].ItemStyle.Color)
	assert.Equal(t, "#ffffff", bars[1].ItemStyle.Color)
}

func TestSampleFrames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		total     int
		maxFrames int
		want      []int
	}{
		{name: "empty", total: 0, maxFrames: 5, want: nil},
		{name: "all when zero", total: 4, maxFrames: 0, want: []int{0, 1, 2, 3}},
		{name: "all when cap is large", total: 3, maxFrames: 10, want: []int{0, 1, 2}},
		{name: "evenly spaced", total: 9, maxFrames: 3, want: []int{0, 4, 8}},
		{name: "one becomes ends", total: 9, maxFrames: 1, want: []int{0, 8}},
		{name: "uneven", total: 10, maxFrames: 4, want: []int{0, 3, 6, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, plotpage.SampleFrames(tt.total, tt.maxFrames))
		})
	}
}

func TestSampleFrames_StrictlyIncreasing(t *testing.T) {
	t.Parallel()

	for total := 2; total < 200; total += 7 {
		for maxFrames := 2; maxFrames < total; maxFrames += 5 {
			frames := plotpage.SampleFrames(total, maxFrames)
			require.Len(t, frames, maxFrames)
			assert.Equal(t, 0, frames[0])
			assert.Equal(t, total-1, frames[len(frames)-1])

			for i := 1; i < len(frames); i++ {
				assert.Greater(t, frames[i], frames[i-1])
			}
		}
	}
}

func TestFramePage_RendersEveryFrame(t *testing.T) {
	t.Parallel()

	page, err := plotpage.FramePage(workedHistory(t), plotpage.FrameOptions{Title: "Worked example"})
	require.NoError(t, err)
	require.Len(t, page.Sections, 9)
	assert.Equal(t, "Step 1 of 9", page.Sections[0].Title)
	assert.Equal(t, "Step 9 of 9", page.Sections[8].Title)
	assert.Empty(t, page.Sections[0].Subtitle)
	assert.Equal(t, "wrote 3 at index 0", page.Sections[1].Subtitle)

	var buf bytes.Buffer

	require.NoError(t, page.Render(&buf))

	html := buf.String()
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "Worked example")
	assert.Contains(t, html, "Step 5 of 9")
	assert.Contains(t, html, plotpage.DefaultEChartsJS)
	assert.Contains(t, html, plotpage.DefaultActiveColor)
	assert.Contains(t, html, `class="echart-box"`)
	assert.NotContains(t, html, `class="container"`)
}

func TestFramePage_SamplesAndCustomLabel(t *testing.T) {
	t.Parallel()

	page, err := plotpage.FramePage(workedHistory(t), plotpage.FrameOptions{
		MaxFrames: 3,
		Chart:     plotpage.ChartOpts{Theme: plotpage.ThemeLight},
		Label:     func(i, total int) string { return "frame " + string(rune('a'+i)) },
	})
	require.NoError(t, err)
	require.Len(t, page.Sections, 3)
	assert.Equal(t, "frame a", page.Sections[0].Title)
	assert.Equal(t, "frame i", page.Sections[2].Title)
	assert.Equal(t, plotpage.ThemeLight, page.Theme)
}

func TestFramePage_WidensAxisForLargeValues(t *testing.T) {
	t.Parallel()

	rec := recorder.New[float64]()
	rec.Load([]float64{250, -3, 40})

	page, err := plotpage.FramePage(rec.Sort(), plotpage.FrameOptions{})
	require.NoError(t, err)

	bar := page.Sections[0].Chart
	require.NotNil(t, bar)

	var buf bytes.Buffer

	require.NoError(t, page.Render(&buf))
	assert.Contains(t, buf.String(), `"max":250`)
	assert.Contains(t, buf.String(), `"min":-3`)
}

func TestFramePage_EmptyHistory(t *testing.T) {
	t.Parallel()

	_, err := plotpage.FramePage(recorder.History[int]{}, plotpage.FrameOptions{})
	require.ErrorIs(t, err, recorder.ErrEmptyHistory)
}

func TestFramePage_EmptySequence(t *testing.T) {
	t.Parallel()

	page, err := plotpage.FramePage(recorder.New[int]().Sort(), plotpage.FrameOptions{})
	require.NoError(t, err)
	require.Len(t, page.Sections, 1)

	var buf bytes.Buffer

	require.NoError(t, page.Render(&buf))
}

func TestCollectFrames_MatchesFramePage(t *testing.T) {
	t.Parallel()

	rec := recorder.New[int](recorder.WithRetention[int](false))
	rec.Load([]int{5, 3, 8, 1})

	total := recorder.Placements(4) + 1
	frames := plotpage.CollectFrames(rec.Stream(), total, 3)
	require.Len(t, frames, 3)
	assert.Equal(t, []int{0, 4, 8}, []int{frames[0].Index, frames[1].Index, frames[2].Index})
	assert.Equal(t, []int{1, 3, 5, 8}, frames[2].Snapshot.Values)
	assert.Len(t, rec.History(), 1)

	streamed, err := plotpage.SampledFramePage(frames, total, plotpage.FrameOptions{})
	require.NoError(t, err)

	full, err := plotpage.FramePage(workedHistory(t), plotpage.FrameOptions{MaxFrames: 3})
	require.NoError(t, err)

	require.Len(t, streamed.Sections, len(full.Sections))

	for i := range full.Sections {
		assert.Equal(t, full.Sections[i].Title, streamed.Sections[i].Title)
		assert.Equal(t, full.Sections[i].Subtitle, streamed.Sections[i].Subtitle)
	}

	assert.Equal(t, full.Stats, streamed.Stats)
}

func TestSampledFramePage_NoFrames(t *testing.T) {
	t.Parallel()

	_, err := plotpage.SampledFramePage([]plotpage.Frame[int]{}, 9, plotpage.FrameOptions{})
	require.ErrorIs(t, err, recorder.ErrEmptyHistory)
}

func TestSampleStream_KeepsIndices(t *testing.T) {
	t.Parallel()

	rec := recorder.New[int]()
	rec.Load([]int{9, 8, 7, 6, 5, 4, 3, 2, 1})

	total := recorder.Placements(9) + 1

	var got []int
	for i := range plotpage.SampleStream(rec.Stream(), total, 4) {
		got = append(got, i)
	}

	assert.Equal(t, plotpage.SampleFrames(total, 4), got)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, rec.Values())
}
