package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/stepwise/internal/config"
	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/procedures"
	"github.com/manav03panchal/stepwise/internal/viz"
)

// =============================================================================
// Formatter Tests
// =============================================================================

func TestNewFormatter(t *testing.T) {
	f := NewFormatter()
	assert.NotNil(t, f)
	assert.Equal(t, FormatCLI, f.Format)
	assert.Equal(t, ColorAuto, f.ColorMode)
}

func TestFormatterIsColorEnabled(t *testing.T) {
	t.Run("color_always", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorAlways}
		assert.True(t, f.IsColorEnabled())
	})

	t.Run("color_never", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorNever}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("color_auto_non_terminal", func(t *testing.T) {
		var buf bytes.Buffer
		f := &Formatter{Writer: &buf, Format: FormatCLI, ColorMode: ColorAuto}
		assert.False(t, f.IsColorEnabled())
		assert.False(t, f.IsTerminal())
	})
}

func TestFormatterWidthFallsBack(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}
	assert.Equal(t, DefaultWidth, f.Width())
}

func TestFormatterPrint(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	f.Print("hello")
	f.Println(" world")
	f.Printf("%d", 42)
	assert.Equal(t, "hello world\n42", buf.String())
}

func TestFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	require.NoError(t, f.JSON(map[string]string{"key": "value"}))
	assert.Contains(t, buf.String(), `"key": "value"`)
}

// =============================================================================
// Duration Formatting Tests
// =============================================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{500 * time.Microsecond, "500µs"},
		{120 * time.Millisecond, "120ms"},
		{1500 * time.Millisecond, "1.5s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 5*time.Second, "2m 5s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}

func TestFormatSpeed(t *testing.T) {
	assert.Equal(t, "instant", FormatSpeed(0))
	assert.Equal(t, "50ms/step", FormatSpeed(50*time.Millisecond))
}

// =============================================================================
// CLI Formatter Tests
// =============================================================================

func newCLI() (*CLIFormatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewCLIFormatter(&Formatter{Writer: &buf, Format: FormatCLI, ColorMode: ColorNever}), &buf
}

func TestCLIMessages(t *testing.T) {
	c, buf := newCLI()
	c.Title("Title")
	c.Success("done")
	c.Warning("careful")
	c.Error("broken")
	c.Muted("quiet")
	assert.Equal(t, "Title\n✓ done\n⚠ careful\n✗ broken\nquiet\n", buf.String())
}

func TestPrintProcedures(t *testing.T) {
	c, buf := newCLI()
	c.PrintProcedures(procedures.All())
	out := buf.String()
	assert.Contains(t, out, "SORTING")
	assert.Contains(t, out, "DP")
	assert.Contains(t, out, "bubble")
	assert.Contains(t, out, "dijkstra")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("SORTING")), bytes.Index(buf.Bytes(), []byte("GRAPH")))

	c, buf = newCLI()
	c.PrintProcedures(nil)
	assert.Equal(t, "No procedures.\n", buf.String())
}

func TestPrintProcedure(t *testing.T) {
	spec, err := procedures.Lookup("lcs")
	require.NoError(t, err)

	c, buf := newCLI()
	c.PrintProcedure(spec)
	assert.Contains(t, buf.String(), "Family:     dp")
	assert.Contains(t, buf.String(), " 1 "+spec.Source[0])
}

func runToEnd(t *testing.T, id string, p procedures.Params) procedures.Instance {
	t.Helper()
	cfg := config.DefaultRuntimeConfig()
	cfg.Engine.PollInterval = time.Millisecond
	in, err := procedures.Opener{Config: cfg}.Open(id, p, 0)
	require.NoError(t, err)
	require.True(t, in.Start())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, in.Wait(ctx))
	return in
}

func TestPrintRun(t *testing.T) {
	in := runToEnd(t, "bubble", procedures.Params{"values": "3,1,2"})

	c, buf := newCLI()
	c.PrintRun(in.Spec(), in.Frame())
	out := buf.String()
	assert.Contains(t, out, "✓ Bubble Sort completed in")
	assert.Contains(t, out, "Speed:    instant")
	assert.Contains(t, out, "comparisons:")
	assert.Contains(t, out, "Result:   1 2 3")
}

func TestPrintStep(t *testing.T) {
	in := runToEnd(t, "bubble", procedures.Params{"values": "2,1"})
	require.True(t, in.Seek(1))

	c, buf := newCLI()
	c.PrintStep(in.Spec(), 1, in.Frame())
	assert.Regexp(t, `^\s+1 `, buf.String())
	assert.Contains(t, buf.String(), "comparisons=")
}

func TestCounterNames(t *testing.T) {
	names := CounterNames([]string{"b", "a"}, engine.Counters{"a": 1, "z": 2, "c": 3})
	assert.Equal(t, []string{"b", "a", "c", "z"}, names)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "1 2 3", Summarize(viz.NewBars([]int{1, 2, 3})))
	assert.Equal(t, "A → C", Summarize(viz.Graph{PathNodes: []string{"A", "C"}}))
	assert.Equal(t, "visited A B", Summarize(viz.Graph{VisitedOrder: []string{"A", "B"}}))
	tree := viz.Graph{
		Nodes:     []viz.Node{{ID: "n0", Label: "50"}, {ID: "n1", Label: "30"}},
		PathNodes: []string{"n0", "n1"},
	}
	assert.Equal(t, "50 → 30", Summarize(tree))
	assert.Equal(t, "42", Summarize(viz.Table{Result: "42"}))
	assert.Contains(t, Summarize(viz.NewGrid(3, 3, viz.Point{}, viz.Point{Row: 2, Col: 2})), "no path")
	assert.Empty(t, Summarize(17))
}

func TestPrintTable(t *testing.T) {
	c, buf := newCLI()
	c.PrintTable([]string{"side", "steps"}, []TableRow{
		{Columns: []string{"left", "12"}},
		{Columns: []string{"right", "7"}},
	})
	assert.Equal(t, "side   steps\n─────  ─────\nleft   12\nright  7\n", buf.String())

	c, buf = newCLI()
	c.PrintTable([]string{"x"}, nil)
	assert.Empty(t, buf.String())
}

// =============================================================================
// JSON Formatter Tests
// =============================================================================

func TestJSONProcedures(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})
	require.NoError(t, j.PrintProcedures(procedures.ByFamily(procedures.FamilyDP)))

	var resp struct {
		Procedures []struct {
			ID     string `json:"id"`
			Family string `json:"family"`
		} `json:"procedures"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, len(resp.Procedures), resp.Count)
	for _, p := range resp.Procedures {
		assert.Equal(t, "dp", p.Family)
	}

	buf.Reset()
	require.NoError(t, j.PrintProcedures(nil))
	assert.Contains(t, buf.String(), `"procedures": []`)
}

func TestNewRunOutput(t *testing.T) {
	in := runToEnd(t, "bubble", procedures.Params{"values": "3,1,2"})
	out := NewRunOutput(in, in.Frame(), false)

	assert.Equal(t, "bubble", out.Procedure)
	assert.Equal(t, engine.Completed, out.Outcome)
	assert.Equal(t, "1 2 3", out.Summary)
	assert.Nil(t, out.State)
	assert.NotEmpty(t, out.RunID)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"outcome":"completed"`)
	assert.NotContains(t, string(data), `"state"`)

	assert.NotNil(t, NewRunOutput(in, in.Frame(), true).State)
}

func TestJSONError(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})
	require.NoError(t, j.PrintError(errors.New("boom"), "system", "retry"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, ErrorResponse{Status: "error", Error: "boom", Category: "system", Suggestion: "retry"}, resp)
}

func TestRaceSummary(t *testing.T) {
	left, err := procedures.Lookup("bubble")
	require.NoError(t, err)
	right, err := procedures.Lookup("quick")
	require.NoError(t, err)

	now := time.Now()
	l := engine.RunReport{Outcome: engine.Completed, StartedAt: now, FinishedAt: now.Add(300 * time.Millisecond)}
	r := engine.RunReport{Outcome: engine.Completed, StartedAt: now, FinishedAt: now.Add(100 * time.Millisecond)}

	res := engine.RaceResult{Winner: engine.Decide(l, r), Left: l, Right: r}
	assert.Equal(t, "🏆 Quick Sort wins by 200ms", RaceSummary(res, left, right))

	r.Outcome = engine.Cancelled
	res = engine.RaceResult{Winner: engine.Decide(l, r), Left: l, Right: r}
	assert.Equal(t, "🏆 Bubble Sort wins, the other side did not finish", RaceSummary(res, left, right))

	r = l
	res = engine.RaceResult{Winner: engine.Decide(l, r), Left: l, Right: r}
	assert.Equal(t, "Tie", RaceSummary(res, left, right))
	assert.Equal(t, "No winner", RaceSummary(engine.RaceResult{Winner: engine.WinnerNone}, left, right))
}

func TestPrintRace(t *testing.T) {
	left := runToEnd(t, "bubble", procedures.Params{"values": "3,1,2"})
	right := runToEnd(t, "insertion", procedures.Params{"values": "3,1,2"})
	lf, rf := left.Frame(), right.Frame()
	res := engine.RaceResult{Winner: engine.Decide(lf.LastRun, rf.LastRun), Left: lf.LastRun, Right: rf.LastRun}

	c, buf := newCLI()
	c.PrintRace(left.Spec(), right.Spec(), lf, rf, res)
	out := buf.String()
	assert.Contains(t, out, "Procedure")
	assert.Contains(t, out, "comparisons")
	assert.Contains(t, out, "bubble")
	assert.Contains(t, out, "insertion")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, RaceSummary(res, left.Spec(), right.Spec()))

	race := NewRaceOutput(left, right, lf, rf, res)
	assert.Equal(t, res.Winner, race.Winner)
	assert.Equal(t, "bubble", race.Left.Procedure)
	assert.Equal(t, "insertion", race.Right.Procedure)
}
