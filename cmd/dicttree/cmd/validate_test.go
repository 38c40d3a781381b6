package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommandStructure(t *testing.T) {
	assert.Equal(t, "validate", validateCmd.Use)
	assert.NotEmpty(t, validateCmd.Short)
	assert.NotNil(t, validateCmd.RunE)
}

func TestRunValidateClean(t *testing.T) {
	_, buf := useRecords(t, sampleTypes)

	require.NoError(t, runValidate(validateCmd, nil))

	output := buf.String()
	assert.Contains(t, output, "Records: 4 (2 root(s), depth 3)")
	assert.Contains(t, output, "✅ No parent cycles")
	assert.Contains(t, output, "Validation Complete")
}

func TestRunValidateWarnings(t *testing.T) {
	_, buf := useRecords(t, `types:
  - {id: 1, name: A, type_key: dup, parent_id: 0}
  - {id: 2, name: B, type_key: dup, parent_id: 9}
  - {id: 3, name: C, type_key: c, parent_id: 1}
  - {id: 3, name: C2, type_key: c2, parent_id: 0}
`)

	require.NoError(t, runValidate(validateCmd, nil))

	output := buf.String()
	assert.Contains(t, output, "1 type(s) reference a missing parent")
	assert.Contains(t, output, "#2 B -> parent 9")
	assert.Contains(t, output, "Duplicate ids: [3]")
	assert.Contains(t, output, `Type key "dup" used by ids [1 2]`)
}

func TestRunValidateCycle(t *testing.T) {
	_, buf := useRecords(t, `types:
  - {id: 1, name: A, type_key: a, parent_id: 2}
  - {id: 2, name: B, type_key: b, parent_id: 1}
  - {id: 3, name: C, type_key: c, parent_id: 0}
`)

	err := runValidate(validateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parent cycles")
	assert.Contains(t, buf.String(), "❌ Cycle detected: 2 type(s) cannot reach a root")
}
