package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testJobYAML = `
id: job-1
title: Frontend Engineer
location: Remote
seniority_level: senior
skills:
  - name: React
    required: true
  - name: GraphQL
    required: true
  - name: Storybook
`

const testPoolYAML = `
candidates:
  - candidate:
      id: cand-a
      title: Senior Frontend Engineer
      location: Remote
      seniority_level: senior
      total_experience_years: 7
      skills:
        - name: React
          years: 6
        - name: GraphQL
          years: 4
        - name: Storybook
  - candidate:
      id: cand-b
      location: Berlin
`

// execute runs the CLI in-process without a database or cache.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("MATCH_DATABASE_URL", "")
	t.Setenv("MATCH_REDIS_ADDRESS", "")
	t.Setenv("MATCH_LOG_LEVEL", "error")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func decodeJSON(t *testing.T, data string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(data), v), "output should be JSON: %s", data)
}
