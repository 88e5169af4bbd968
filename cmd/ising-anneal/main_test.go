package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainProblem = `
h: [-1, 0.5, 0]
couplers:
  - {u: 0, v: 1, w: -1}
  - {u: 2, v: 1, w: 2}
`

func writeProblem(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(chainProblem), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ising-anneal dev\n", out)
}

func TestEnergyCommand(t *testing.T) {
	problem := writeProblem(t)

	out, err := execute(t, "energy", "--problem", problem, "--spins", "+++")
	require.NoError(t, err)
	assert.Equal(t, "0.5\n", out)

	out, err = execute(t, "energy", "--problem", problem, "--spins", "1,-1,1")
	require.NoError(t, err)
	// -1 - 0.5 + 0 + 1 - 2
	assert.Equal(t, "-2.5\n", out)

	_, err = execute(t, "energy", "--problem", problem, "--spins", "++")
	assert.Error(t, err)
}

func TestSampleAndRunsCommands(t *testing.T) {
	problem := writeProblem(t)
	db := filepath.Join(t.TempDir(), "runs.db")

	out, err := execute(t, "sample", "--problem", problem, "--db", db,
		"--samples", "3", "--sweeps", "20", "--seed", "5", "--intermediate", "2",
		"--format", "json")
	require.NoError(t, err)

	var got struct {
		RunID              string         `json:"run_id"`
		Samples            [][]int8       `json:"samples"`
		Energies           []float64      `json:"energies"`
		IntermediateStates [][]any        `json:"intermediate_states"`
		Stats              map[string]any `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.RunID)
	require.Len(t, got.Samples, 3)
	assert.Len(t, got.Energies, 3)
	require.Len(t, got.IntermediateStates, 3)
	assert.Len(t, got.IntermediateStates[0], 2)
	assert.EqualValues(t, 3, got.Stats["num_samples"])

	out, err = execute(t, "runs", "--db", db, "--format", "json")
	require.NoError(t, err)
	var runs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, got.RunID, runs[0]["id"])
	assert.EqualValues(t, 20, runs[0]["num_sweeps"])

	out, err = execute(t, "runs", got.RunID, "--db", db, "--format", "json")
	require.NoError(t, err)
	var one map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &one))
	assert.Len(t, one["energies"], 3)

	out, err = execute(t, "runs", "--db", db, "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, got.RunID)
}

func TestSampleRejectsUnknownFormat(t *testing.T) {
	problem := writeProblem(t)
	_, err := execute(t, "sample", "--problem", problem, "--db", "",
		"--samples", "1", "--sweeps", "5", "--intermediate", "0", "--format", "xml")
	assert.Error(t, err)
}

func TestSampleZeroSweeps(t *testing.T) {
	problem := writeProblem(t)
	out, err := execute(t, "sample", "--problem", problem, "--db", "",
		"--samples", "2", "--sweeps", "0", "--intermediate", "0", "--format", "json")
	require.NoError(t, err)

	var got struct {
		Samples  [][]int8  `json:"samples"`
		Energies []float64 `json:"energies"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Samples, 2)
	assert.Len(t, got.Energies, 2)
}
