package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadolammi/cvqueryworker/internal/resume"
)

func writeRecords(t *testing.T, c resume.Collection) string {
	t.Helper()
	data, err := json.Marshal(c)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestRunQuery(t *testing.T) {
	t.Setenv("HUGGINGFACE_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	ann := resume.NewRecord()
	ann.Skills = []string{"Python", "SQL"}
	bob := resume.NewRecord()
	bob.Skills = []string{"Go"}
	path := writeRecords(t, resume.Collection{{ID: "a", Record: ann}, {ID: "b", Record: bob}})

	var out bytes.Buffer
	err := run(context.Background(), []string{"--records", path, "--query", "skill Python"}, &out, &bytes.Buffer{})
	require.NoError(t, err)

	var got queryOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Found 1 candidates with skill python", got.Response)
	assert.Equal(t, []string{"a"}, got.Scope)
}

func TestRunQueryWithScope(t *testing.T) {
	t.Setenv("HUGGINGFACE_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	ann := resume.NewRecord()
	ann.WorkExperience = []string{"Banking analyst, 2019-2021"}
	bob := resume.NewRecord()
	bob.WorkExperience = []string{"Banking consultant, 2020-2022"}
	path := writeRecords(t, resume.Collection{{ID: "a", Record: ann}, {ID: "b", Record: bob}})

	var out bytes.Buffer
	err := run(context.Background(),
		[]string{"-r", path, "-q", "what about experience in banking", "--scope", "b, "}, &out, &bytes.Buffer{})
	require.NoError(t, err)

	var got queryOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Found 1 candidates with experience in banking", got.Response)
	assert.Equal(t, []string{"b"}, got.Scope)
}

func TestRunRequiresInput(t *testing.T) {
	err := run(context.Background(), []string{"--query", "skills"}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)

	err = run(context.Background(), []string{"--file", "cv.txt"}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestSplitScope(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitScope(" a,,b ,"))
	assert.Nil(t, splitScope(""))
}

func TestSettingsFromEnvMatchesWorkerKeys(t *testing.T) {
	env := map[string]string{
		"HUGGINGFACE_API_KEY":   "hf",
		"HUGGINGFACE_MODEL_URL": "http://model",
		"GOOGLE_API_KEY":        "google",
		"GEMINI_MODEL":          "gemini-2.5-flash",
	}
	s := settingsFromEnv(func(k string) string { return env[k] })

	assert.Equal(t, "hf", s.HuggingFaceAPIKey)
	assert.Equal(t, "http://model", s.HuggingFaceModelURL)
	assert.Equal(t, "google", s.GoogleAPIKey)
	assert.Equal(t, "gemini-2.5-flash", s.GeminiModel)
}
