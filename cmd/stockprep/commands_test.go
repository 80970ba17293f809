package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPrep/internal/model"
)

const rawCSV = `Date,Open,High,Low,Close,Adj Close,Volume
2024-01-02,10,11,9,10,10,100
2024-01-03,10,11,9,11,11,100
2024-01-04,11,12,10,12,12,100
2024-01-05,12,13,11,11,11,100
`

func TestRunCommand(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "abc.csv"), []byte(rawCSV), 0o644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"run", "--config", filepath.Join(in, "absent.yaml"), "--data-dir", in, "--out-dir", out})
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(filepath.Join(out, "ABC_processed.csv"))
	assert.NoError(t, err)
}

func TestSentimentCommand(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	cfgPath := filepath.Join(in, "absent.yaml")
	require.NoError(t, os.WriteFile(filepath.Join(in, "abc.csv"), []byte(rawCSV), 0o644))
	news := filepath.Join(in, "news.csv")
	require.NoError(t, os.WriteFile(news, []byte("date,stock,headline\n2024-01-03,ABC,Profit surge\n"), 0o644))

	run := newRootCmd()
	run.SetArgs([]string{"run", "--config", cfgPath, "--data-dir", in, "--out-dir", out})
	run.SetOut(&bytes.Buffer{})
	require.NoError(t, run.Execute())

	merged := filepath.Join(out, "merged.csv")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"sentiment", "--config", cfgPath, "--news", news, "--processed-dir", out, "--out", merged})
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, merged)
	assert.FileExists(t, filepath.Join(out, "sentiment_correlations.csv"))
}

func TestEnrichCommand_BadFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Date,Close\n2024-01-02,1\n"), 0o644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"enrich", bad, "--config", filepath.Join(dir, "absent.yaml"), "--out-dir", dir})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestBatchError(t *testing.T) {
	assert.NoError(t, batchError([]*model.RunSummary{{Status: model.RunOK}, {Status: model.RunSkipped}}))
	assert.EqualError(t, batchError([]*model.RunSummary{{Status: model.RunOK}, {Status: model.RunFailed}}), "1 of 2 symbols failed")
}
