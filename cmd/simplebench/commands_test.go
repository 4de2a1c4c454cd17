package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplebench/internal/baseline"
	"simplebench/internal/registry"
	"simplebench/internal/stats"
)

func setupStore(t *testing.T) *baseline.Store {
	t.Helper()
	root := t.TempDir()
	viper.Set("store_root", root)
	t.Cleanup(func() { viper.Set("store_root", nil) })
	return baseline.NewStore(root, baseline.MachineID())
}

func TestWorkloadsRegistered(t *testing.T) {
	for _, name := range []string{"sort_ints", "sort_presorted", "hash_bytes", "json_marshal", "append_grow"} {
		_, ok := registry.Lookup(name)
		assert.True(t, ok, "workload %s should be registered", name)
	}
}

func TestWorkloadSamplersRun(t *testing.T) {
	// Every reference sampler must survive repeated invocation.
	for _, b := range registry.List() {
		for i := 0; i < 3; i++ {
			assert.NotPanics(t, func() { b.Sampler() }, "sampler %s", b.Name)
		}
	}
}

func TestListCommandTable(t *testing.T) {
	setupStore(t)

	var out bytes.Buffer
	listCmd.SetOut(&out)
	defer listCmd.SetOut(nil)

	listJSON = false
	require.NoError(t, runList(listCmd, nil))
	assert.Contains(t, out.String(), "sort_ints")
	assert.Contains(t, out.String(), "sorting")
	assert.Contains(t, out.String(), "none")
}

func TestListCommandJSON(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.Save(baseline.RunRecord{
		BenchmarkName: "sort_ints",
		Module:        "sorting",
		Timestamp:     time.Now().UTC(),
		Samples:       []uint64{100, 110, 120},
		Statistics:    stats.Calculate([]uint64{100, 110, 120}),
		MachineID:     store.MachineID(),
	}))

	var out bytes.Buffer
	listCmd.SetOut(&out)
	defer listCmd.SetOut(nil)

	listJSON = true
	defer func() { listJSON = false }()
	require.NoError(t, runList(listCmd, nil))

	var entries []listEntry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.NotEmpty(t, entries)

	byName := make(map[string]listEntry)
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.True(t, byName["sort_ints"].HasBaseline)
	assert.Equal(t, 1, byName["sort_ints"].StoredRuns)
	assert.False(t, byName["hash_bytes"].HasBaseline)
}

func TestResolveKey(t *testing.T) {
	store := setupStore(t)

	// Registered benchmarks resolve through the registry.
	key, err := resolveKey(store, "sort_ints")
	require.NoError(t, err)
	assert.Equal(t, "sorting_sort_ints", key)

	// Stored-only benchmarks resolve by scanning the store.
	dir := filepath.Join(store.Root(), store.MachineID(), "legacy_old_bench")
	require.NoError(t, os.MkdirAll(dir, 0755))
	key, err = resolveKey(store, "old_bench")
	require.NoError(t, err)
	assert.Equal(t, "legacy_old_bench", key)

	_, err = resolveKey(store, "does_not_exist")
	assert.Error(t, err)
}

func TestAnalyzeWithoutDataFails(t *testing.T) {
	setupStore(t)

	var out bytes.Buffer
	analyzeCmd.SetOut(&out)
	defer analyzeCmd.SetOut(nil)

	err := runAnalyze(analyzeCmd, []string{"sort_ints"})
	assert.Error(t, err)
}

func TestAnalyzePrintsStoredRun(t *testing.T) {
	store := setupStore(t)
	samples := []uint64{1000, 1050, 1100, 1020, 980, 1010, 990, 1060, 1040, 1030}
	require.NoError(t, store.Save(baseline.RunRecord{
		BenchmarkName: "sort_ints",
		Module:        "sorting",
		Timestamp:     time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		Samples:       samples,
		Statistics:    stats.Calculate(samples),
		Iterations:    500,
		MachineID:     store.MachineID(),
	}))

	var out bytes.Buffer
	analyzeCmd.SetOut(&out)
	defer analyzeCmd.SetOut(nil)

	require.NoError(t, runAnalyze(analyzeCmd, []string{"sort_ints"}))
	assert.Contains(t, out.String(), "sort_ints")
	assert.Contains(t, out.String(), "TIMESTAMP")
	assert.Contains(t, out.String(), "2026-08-20T12-00-00")
}

func TestCleanCommand(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.Save(baseline.RunRecord{
		BenchmarkName: "sort_ints",
		Module:        "sorting",
		Timestamp:     time.Now().UTC(),
		Samples:       []uint64{100},
		Statistics:    stats.Calculate([]uint64{100}),
		MachineID:     store.MachineID(),
	}))

	var out bytes.Buffer
	cleanCmd.SetOut(&out)
	defer cleanCmd.SetOut(nil)

	require.NoError(t, cleanCmd.RunE(cleanCmd, nil))
	assert.False(t, store.HasBaseline("sorting_sort_ints"))
}
