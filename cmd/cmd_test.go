package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/reqflat/batch"
)

const gatedWorld = `
name: Gated
areas:
  - name: Root
    exits:
      - to: Cave
        requires: Bombs
  - name: Cave
    locations:
      - name: Chest
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags puts every flag of c and its subcommands back to its default,
// since cobra keeps parsed values between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestInitConfigurationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), batch.DefaultConfigPath)

	got, err := initConfigurationFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	config, err := batch.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, batch.DefaultConfig(), config)

	_, err = initConfigurationFile(path, false)
	assert.Error(t, err)
	_, err = initConfigurationFile(path, true)
	assert.NoError(t, err)
}

func TestRunCommandJSON(t *testing.T) {
	dir := t.TempDir()
	world := writeFile(t, dir, "gated.yaml", gatedWorld)

	out, err := execute(t, "run", "--config", filepath.Join(dir, "none.yaml"), "--format", "json", "--verify", world)
	require.NoError(t, err)

	var docs []struct {
		World     string `json:"world"`
		Verified  bool   `json:"verified"`
		Locations []struct {
			Name string `json:"name"`
			Text string `json:"text"`
		} `json:"locations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "Gated", docs[0].World)
	assert.True(t, docs[0].Verified)
	require.Len(t, docs[0].Locations, 1)
	assert.Equal(t, "Bombs", docs[0].Locations[0].Text)
}

func TestRootRunsWorlds(t *testing.T) {
	dir := t.TempDir()
	world := writeFile(t, dir, "gated.yaml", gatedWorld)

	out, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), world)
	require.NoError(t, err)
	assert.Contains(t, out, "Gated")
	assert.Contains(t, out, "Chest  Bombs")
}

func TestRootAcceptsRunFlags(t *testing.T) {
	dir := t.TempDir()
	world := writeFile(t, dir, "gated.yaml", gatedWorld)

	out, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), "--verify", "--format", "json", world)
	require.NoError(t, err)

	var docs []struct {
		Verified bool `json:"verified"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.True(t, docs[0].Verified)
}

func TestRunCommandErrors(t *testing.T) {
	_, err := execute(t, "run")
	assert.ErrorIs(t, err, errNoWorlds)

	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "areas:\n  - name: Root\n    exits:\n      - to: Nowhere\n")
	_, err = execute(t, "run", "--config", filepath.Join(dir, "none.yaml"), bad)
	assert.Error(t, err)
}

func TestWriteReportToFile(t *testing.T) {
	dir := t.TempDir()
	outPath = filepath.Join(dir, "report.txt")
	t.Cleanup(func() { outPath = "" })

	res, err := batch.Run(context.Background(), zap.NewNop(), batch.DefaultConfig(), writeFile(t, dir, "gated.yaml", gatedWorld))
	require.NoError(t, err)
	require.NoError(t, writeReport("text", []*batch.Result{res}, nil))

	d, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(d), "Bombs")
}

// syncBuffer is written by the watcher goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatcherReflattensChangedWorld(t *testing.T) {
	dir := t.TempDir()
	var out syncBuffer

	w, err := newWatcher(zap.NewNop(), batch.DefaultConfig(), &out)
	require.NoError(t, err)
	defer w.close()
	w.debounce = 20 * time.Millisecond
	require.NoError(t, w.add([]string{dir}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.loop(ctx) }()

	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "gated.yaml", gatedWorld)
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Chest  Bombs")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcherAccepts(t *testing.T) {
	dir := t.TempDir()
	world := writeFile(t, dir, "named.txt", gatedWorld)
	sub := filepath.Join(dir, "worlds")
	require.NoError(t, os.Mkdir(sub, 0o755))

	w, err := newWatcher(zap.NewNop(), batch.DefaultConfig(), &bytes.Buffer{})
	require.NoError(t, err)
	defer w.close()
	require.NoError(t, w.add([]string{world, sub}))

	assert.True(t, w.accepts(world))
	assert.False(t, w.accepts(filepath.Join(dir, "other.yaml")))
	assert.True(t, w.accepts(filepath.Join(sub, "new.yaml")))
	assert.False(t, w.accepts(filepath.Join(sub, "new.txt")))
}
