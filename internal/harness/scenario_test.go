package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "specs", "world"), 0o755))

	path := writeScenario(t, dir, `
name: test_scenario
description: "Test scenario"
specs: specs
observer:
  name: ada
  archetype: architect
steps:
  - invoke: world.house.manifest
    args:
      mood: calm
  - compose: [world.door.open, world.door.close]
    input: knock
  - define: concept.shelter
    extends: [concept.entity]
  - laws: [world.door.open]
    input: 1
assertions:
  - type: trace_contains
    subject: world.house.manifest
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", s.Name)
	assert.Equal(t, filepath.Join(dir, "specs"), s.Specs)
	require.NotNil(t, s.Observer)
	assert.Equal(t, "architect", s.Observer.Archetype)
	require.Len(t, s.Steps, 4)
	assert.Equal(t, StepInvoke, s.Steps[0].Kind())
	assert.Equal(t, "calm", s.Steps[0].Args["mood"])
	assert.Equal(t, StepCompose, s.Steps[1].Kind())
	assert.Equal(t, "world.door.open >> world.door.close", s.Steps[1].Target())
	assert.Equal(t, StepDefine, s.Steps[2].Kind())
	assert.Equal(t, []string{"concept.entity"}, s.Steps[2].Extends)
	assert.Equal(t, StepLaws, s.Steps[3].Kind())
	assert.Equal(t, 1, s.Steps[3].Input)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MissingSpecsDir(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, `
name: x
specs: nowhere
steps:
  - invoke: world.house.manifest
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "specs directory not found")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: x
steps:
  - invoke: world.house.manifest
assertion:
  - type: trace_contains
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "steps:\n  - invoke: world.a.manifest\n",
			wantErr: "name is required",
		},
		{
			name:    "no steps",
			yaml:    "name: x\n",
			wantErr: "steps list is required",
		},
		{
			name:    "empty step",
			yaml:    "name: x\nsteps:\n  - args: {a: 1}\n",
			wantErr: "steps[0]: one of invoke, compose, define or laws is required",
		},
		{
			name:    "two operations",
			yaml:    "name: x\nsteps:\n  - invoke: world.a.manifest\n    define: concept.a\n",
			wantErr: "only one of",
		},
		{
			name:    "define without extends",
			yaml:    "name: x\nsteps:\n  - define: concept.a\n",
			wantErr: "define needs extends",
		},
		{
			name:    "error and result",
			yaml:    "name: x\nsteps:\n  - invoke: world.a.manifest\n    expect: {error: AffordanceError, result: 1}\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "assertion without type",
			yaml:    "name: x\nsteps:\n  - invoke: world.a.manifest\nassertions:\n  - subject: a\n",
			wantErr: "type is required",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: x\nsteps:\n  - invoke: world.a.manifest\nassertions:\n  - type: final_state\n",
			wantErr: `unknown assertion type "final_state"`,
		},
		{
			name:    "trace_order with one subject",
			yaml:    "name: x\nsteps:\n  - invoke: world.a.manifest\nassertions:\n  - type: trace_order\n    subjects: [a]\n",
			wantErr: "at least two subjects",
		},
		{
			name:    "negative count",
			yaml:    "name: x\nsteps:\n  - invoke: world.a.manifest\nassertions:\n  - type: trace_count\n    subject: a\n    count: -1\n",
			wantErr: "count must be non-negative",
		},
		{
			name:    "lineage without handle",
			yaml:    "name: x\nsteps:\n  - invoke: world.a.manifest\nassertions:\n  - type: lineage\n",
			wantErr: "handle is required for lineage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_DefineMayOmitExtendsWhenFailing(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: x
steps:
  - define: concept.a
    expect:
      error: LineageError
`))
	require.NoError(t, err)
	assert.Equal(t, "LineageError", s.Steps[0].Expect.Error)
}
