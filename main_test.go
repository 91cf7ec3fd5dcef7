package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-au-dk/absnum/analysis/lattice"
	"github.com/cs-au-dk/absnum/config"
)

func init() {
	opts.SetNoColorize(true)
}

func settings(domain string) config.Settings {
	return config.Settings{
		Domain:          domain,
		Overflow:        "ideal",
		NarrowingPasses: 2,
		Workers:         2,
		Timeout:         config.Duration{Duration: time.Minute},
	}
}

func TestWhileProgram(t *testing.T) {
	for domain, outcome := range map[string]lattice.Outcome{
		"zones":     lattice.OutcomeTrue,
		"intervals": lattice.OutcomeTop,
	} {
		t.Run(domain, func(t *testing.T) {
			p, err := whileProgram("analysis/lang/testdata/counter.while", settings(domain))
			require.NoError(t, err)
			require.Len(t, p.units, 1)
			assert.Equal(t, "counter", p.units[0].name)
			assert.Len(t, p.units[0].requires, 1)

			sum, err := p.run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, sum.functions)
			assert.Zero(t, sum.incomplete)
			assert.Equal(t, 1, sum.outcomes[outcome])
			assert.False(t, sum.violated())
		})
	}
}

func TestConfiguredPreconditions(t *testing.T) {
	s := settings("intervals")
	s.Requires = map[string][]string{"counter": {"n < 10"}}

	p, err := whileProgram("analysis/lang/testdata/counter.while", s)
	require.NoError(t, err)
	assert.Len(t, p.units[0].requires, 2)

	s.Requires["counter"] = []string{"n <"}
	_, err = whileProgram("analysis/lang/testdata/counter.while", s)
	assert.Error(t, err)
}

func TestEnumProduct(t *testing.T) {
	s := settings("zones")
	s.Enums = true

	p, err := whileProgram("analysis/lang/testdata/counter.while", s)
	require.NoError(t, err)
	sum, err := p.run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.outcomes[lattice.OutcomeTrue])
}

func TestUnknownOverflow(t *testing.T) {
	s := settings("zones")
	s.Overflow = "saturate"

	p, err := whileProgram("analysis/lang/testdata/counter.while", s)
	require.NoError(t, err)
	_, err = p.run(context.Background())
	assert.Error(t, err)
}

func TestOverflowDefaults(t *testing.T) {
	s := settings("intervals")
	s.Overflow = ""
	p, err := whileProgram("analysis/lang/testdata/counter.while", s)
	require.NoError(t, err)
	assert.Equal(t, "wrap", p.settings.Overflow)

	assert.Equal(t, "ideal", whileSettings(settings("zones")).Overflow)
	for _, model := range []string{"", "wrap", "ideal"} {
		s.Overflow = model
		assert.Equal(t, "ideal", goSettings(s).Overflow)
	}
}

func TestSummary(t *testing.T) {
	sum := &summary{}
	sum.add(true, 10, 1, lattice.OutcomeTrue, lattice.OutcomeBottom)
	sum.add(false, 5, 0, lattice.OutcomeTop)
	assert.False(t, sum.violated())

	sum.add(true, 1, 0, lattice.OutcomeFalse)
	assert.True(t, sum.violated())

	assert.Equal(t, "================ Results =====================\n\n"+
		"Functions: 3 (1 incomplete)\n"+
		"Iterations: 16\n"+
		"Dead edges: 1\n"+
		"Assertions: holds 1, fails 1, may fail 1, unreachable 1\n", sum.String())
}

func TestNarrowing(t *testing.T) {
	assert.Equal(t, -1, narrowing(0))
	assert.Equal(t, 3, narrowing(3))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "_example.com_p.T_.m", sanitize("(example.com/p.T).m"))
}
