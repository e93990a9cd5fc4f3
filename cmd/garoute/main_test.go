package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"colroute/internal/ga"
	"colroute/internal/integrations"
	"colroute/internal/integrations/csvfile"
)

const squareCSV = `0;1;1,4142135623730951;1;
1;0;1;1,4142135623730951;
1,4142135623730951;1;0;1;
1;1,4142135623730951;1;0;
`

func testConfig() ga.Config {
	return ga.Config{PopulationSize: 20, EliteSize: 4, MutationRate: 0.05, Generations: 25, Seed: 11}
}

func TestRunPrintsRoutesAndDistances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.csv")
	require.NoError(t, os.WriteFile(path, []byte(squareCSV), 0o600))

	var out bytes.Buffer
	err := run(context.Background(), &out, csvfile.Source{Path: path, Comma: ';'}, testConfig(), false)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "Initial route: [0 "))
	require.True(t, strings.HasPrefix(lines[1], "Initial distance: "))
	require.Equal(t, "Final distance: 4", lines[2])
	require.True(t, strings.HasPrefix(lines[3], "Final route: [0 "))
	require.True(t, strings.HasSuffix(lines[3], " 0]"))
}

func TestRunRejectsBadMatrix(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), &out, integrations.Inline{{0, 1}, {2, 0}}, testConfig(), false)
	require.ErrorIs(t, err, ga.ErrInvalidMatrix)
	require.Empty(t, out.String())
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.EliteSize = cfg.PopulationSize
	err := run(context.Background(), &bytes.Buffer{}, integrations.Inline{{0, 1}, {1, 0}}, cfg, false)
	require.ErrorIs(t, err, ga.ErrInvalidConfig)
}

func TestWorkersDefaultsToGOMAXPROCS(t *testing.T) {
	require.Equal(t, runtime.GOMAXPROCS(0), workers(0))
	require.Equal(t, 1, workers(1))
	require.Equal(t, 3, workers(3))
}
