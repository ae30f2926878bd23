package engine

import (
	"bytes"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-society/internal/agents"
	"github.com/talgya/mini-society/internal/config"
	"github.com/talgya/mini-society/internal/trace"
)

// exitRecorder captures the extinction exit instead of ending the test binary.
type exitRecorder struct {
	codes []int
}

func (e *exitRecorder) exit(code int) { e.codes = append(e.codes, code) }

type memRecorder struct {
	records []trace.Record
}

func (m *memRecorder) Record(r trace.Record) error {
	m.records = append(m.records, r)
	return nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Seed = 17
	cfg.Steps = 10
	cfg.PopSize = 30
	return cfg
}

func newTestSim(t *testing.T, cfg config.Config, rec trace.Recorder) (*Simulation, *exitRecorder) {
	t.Helper()
	s, err := NewSimulation(cfg, rec)
	require.NoError(t, err)
	ex := &exitRecorder{}
	s.Exit = ex.exit
	return s, ex
}

func TestForEachPairCompleteness(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5, 37} {
		seen := make(map[[2]int]bool)
		ForEachPair(n, func(i, j int) {
			require.Less(t, i, j, "self pair or reversed pair")
			require.Less(t, j, n)
			key := [2]int{i, j}
			require.False(t, seen[key], "pair %v visited twice", key)
			seen[key] = true
		})
		assert.Len(t, seen, n*(n-1)/2, "n=%d", n)
	}
}

func TestForEachPairLexicographic(t *testing.T) {
	var got [][2]int
	ForEachPair(4, func(i, j int) { got = append(got, [2]int{i, j}) })
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)
}

func TestNewSimulationRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ReproductionStep = 0
	_, err := NewSimulation(cfg, nil)
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestTickStepCountsEveryPair(t *testing.T) {
	s, _ := newTestSim(t, testConfig(), nil)
	n := len(s.Population)

	s.TickStep(0)
	assert.Equal(t, n*(n-1)/2, s.Stats.Interactions)
	assert.LessOrEqual(t, s.Stats.Accepted, s.Stats.Offers)
	assert.LessOrEqual(t, s.Stats.Offers, s.Stats.Situations)
	assert.Equal(t, s.Stats.Offers, s.Stats.OffersCriminal+s.Stats.OffersCivilian)
}

func TestEngineSchedule(t *testing.T) {
	var steps, cycles []int
	e := NewEngine(7, 3)
	e.OnStep = func(step int) { steps = append(steps, step) }
	e.OnReproduce = func(step int) { cycles = append(cycles, step) }

	e.Run()

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, steps)
	assert.Equal(t, []int{0, 3, 6}, cycles)
	assert.False(t, e.Running)
}

func TestEngineStopSkipsReproduction(t *testing.T) {
	var cycles int
	e := NewEngine(10, 1)
	e.OnStep = func(step int) {
		if step == 2 {
			e.Stop()
		}
	}
	e.OnReproduce = func(int) { cycles++ }

	e.Run()
	assert.Equal(t, 3, e.Step)
	assert.Equal(t, 2, cycles)
}

func TestCullTarget(t *testing.T) {
	assert.Equal(t, 110, CullTarget(1.1, 100, 500))
	assert.Equal(t, 50, CullTarget(1.1, 100, 50), "keeps whole pool when short")
	assert.Equal(t, 7, CullTarget(0.7, 10, 100))
	assert.Equal(t, 3, CullTarget(1.1, 3, 100))
	assert.Equal(t, 0, CullTarget(0, 100, 100))
}

func TestCullKeepsSubsetOfPool(t *testing.T) {
	pool := make([]*agents.Agent, 20)
	ids := make(map[agents.AgentID]bool)
	for i := range pool {
		pool[i] = agents.New(agents.AgentID(i+1), false, false, 0.5, 100)
		ids[pool[i].ID] = true
	}

	kept := Cull(pool, 8, rand.New(rand.NewSource(5)))
	require.Len(t, kept, 8)
	uniq := make(map[agents.AgentID]bool)
	for _, a := range kept {
		assert.True(t, ids[a.ID])
		assert.False(t, uniq[a.ID])
		uniq[a.ID] = true
	}

	assert.Len(t, Cull(pool, 50, rand.New(rand.NewSource(5))), 20)
}

func TestReproduceReplacesParents(t *testing.T) {
	cfg := testConfig()
	cfg.GrowthRate = 1.0
	s, ex := newTestSim(t, cfg, nil)

	parents := make(map[agents.AgentID]bool)
	for i, a := range s.Population {
		parents[a.ID] = true
		// Only the first ten hold the record; the rest are broke.
		if i < 10 {
			a.Wealth = s.Wealth.Max()
		} else {
			a.Wealth = 0
		}
	}
	before := len(s.Population)

	s.reproduce(0)

	require.Empty(t, ex.codes)
	assert.Len(t, s.Population, before, "50 offspring culled to growth*size")
	police, criminal := agents.CountRoles(s.Population)
	for _, a := range s.Population {
		assert.False(t, parents[a.ID], "parent survived")
		assert.True(t, parents[a.ParentID])
		assert.Equal(t, cfg.InitialWealth, a.Wealth)
	}
	assert.Equal(t, float64(police)/float64(before), s.PoliceFraction)
	assert.Equal(t, float64(criminal)/float64(before), s.CriminalFraction)
}

func TestReproduceGrowthCappedByPool(t *testing.T) {
	cfg := testConfig()
	cfg.GrowthRate = 3
	s, _ := newTestSim(t, cfg, nil)
	for _, a := range s.Population {
		a.Wealth = s.Wealth.Max() / 2
	}

	s.reproduce(0)
	assert.Len(t, s.Population, 2*cfg.PopSize)
}

func TestExtinctionWhenEveryoneIsBroke(t *testing.T) {
	cfg := testConfig()
	cfg.PoliceFraction = 0
	cfg.InitialWealth = 0
	var buf bytes.Buffer
	s, ex := newTestSim(t, cfg, trace.NewWriter(&buf))

	require.NoError(t, s.Run())

	assert.Equal(t, []int{ExitExtinct}, ex.codes)
	assert.True(t, s.Extinct)
	assert.Empty(t, s.Population)
	assert.Equal(t, 1, s.CurrentStep())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2, "header and the step-0 record only")
}

func TestExtinctionWithZeroGrowth(t *testing.T) {
	cfg := testConfig()
	cfg.GrowthRate = 0
	cfg.ReproductionStep = 3
	rec := &memRecorder{}
	s, ex := newTestSim(t, cfg, rec)

	require.NoError(t, s.Run())

	assert.Equal(t, []int{ExitExtinct}, ex.codes)
	require.Len(t, rec.records, 1)
	assert.Equal(t, 0, rec.records[0].Time)
}

func TestRunDeterministicUnderSeed(t *testing.T) {
	run := func(seed int64) string {
		cfg := testConfig()
		cfg.Seed = seed
		cfg.Steps = 20
		var buf bytes.Buffer
		s, ex := newTestSim(t, cfg, trace.NewWriter(&buf))
		require.NoError(t, s.Run())
		require.Empty(t, ex.codes)
		return buf.String()
	}

	first := run(99)
	assert.Equal(t, first, run(99))
	assert.Equal(t, 21, strings.Count(first, "\n"))
}

func TestRecordCarriesStepState(t *testing.T) {
	rec := &memRecorder{}
	cfg := testConfig()
	cfg.Steps = 3
	s, _ := newTestSim(t, cfg, rec)
	require.NoError(t, s.Run())

	require.Len(t, rec.records, 3)
	prevMax := 0.0
	for i, r := range rec.records {
		assert.Equal(t, i, r.Time)
		assert.Positive(t, r.Population)
		assert.Equal(t, r.Population*(r.Population-1)/2, r.Interactions)
		assert.GreaterOrEqual(t, r.MaxWealth, prevMax)
		prevMax = r.MaxWealth
	}
}

// Reference scenario: 40 steps of the default society.
func TestReferenceRun(t *testing.T) {
	if testing.Short() {
		t.Skip("long run")
	}
	cfg := config.Config{
		PopSize:          100,
		CriminalFraction: 0.1,
		PoliceFraction:   0.1,
		ReproductionStep: 1,
		CriminalFine:     5,
		PoliceReward:     4,
		BribeFine:        6,
		GrowthRate:       1.1,
		HonestyMean:      0.5,
		HonestySigma:     0.2,
		InitialWealth:    100,
		MaxWealth:        100,
		MaxChildren:      5,
		TransferShare:    0.3,
		Steps:            40,
		Seed:             2024,
	}
	var buf bytes.Buffer
	s, ex := newTestSim(t, cfg, trace.NewWriter(&buf))
	require.NoError(t, s.Run())
	require.Empty(t, ex.codes)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 41)
	assert.Equal(t, trace.Header(), lines[0])
	for i, line := range lines[1:] {
		fields := strings.Split(line, "|")
		require.Len(t, fields, len(trace.Fields)+1, line)
		assert.Equal(t, strconv.Itoa(i), fields[0])
		pop, err := strconv.Atoi(fields[1])
		require.NoError(t, err)
		assert.Positive(t, pop, "step %d", i)
	}
}
