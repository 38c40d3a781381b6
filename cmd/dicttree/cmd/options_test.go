package cmd

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/dicttree/internal/store"
	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

func TestRunOptions(t *testing.T) {
	origSearch := optionsSearch
	t.Cleanup(func() { optionsSearch = origSearch })

	_, buf := useRecords(t, sampleTypes)
	optionsSearch = ""

	require.NoError(t, runOptions(optionsCmd, nil))

	output := buf.String()
	assert.Contains(t, output, "Finance")
	assert.Contains(t, output, "  Banking")
	assert.Contains(t, output, "    Loans")
	assert.Contains(t, output, "Total: 4 option(s)")
}

func TestRunOptionsJSONSearch(t *testing.T) {
	origSearch := optionsSearch
	t.Cleanup(func() { optionsSearch = origSearch })

	_, buf := useRecords(t, sampleTypes)
	outputFormat = formatJSON
	optionsSearch = "an"

	require.NoError(t, runOptions(optionsCmd, nil))

	var options []taxonomy.Option
	require.NoError(t, json.Unmarshal(buf.Bytes(), &options))
	values := make([]string, 0, len(options))
	for _, o := range options {
		values = append(values, o.Value)
	}
	assert.Equal(t, []string{"fin", "bank", "loan"}, values)
}

func TestRunParents(t *testing.T) {
	origID := parentsID
	t.Cleanup(func() { parentsID = origID })

	_, buf := useRecords(t, sampleTypes)
	outputFormat = formatJSON
	parentsID = 2

	require.NoError(t, runParents(parentsCmd, nil))

	var options []taxonomy.Option
	require.NoError(t, json.Unmarshal(buf.Bytes(), &options))
	ids := make([]int64, 0, len(options))
	for _, o := range options {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []int64{0, 1, 4}, ids)
}

func TestRunParentsText(t *testing.T) {
	origID := parentsID
	t.Cleanup(func() { parentsID = origID })

	_, buf := useRecords(t, sampleTypes)
	parentsID = 1

	require.NoError(t, runParents(parentsCmd, nil))

	output := buf.String()
	assert.Contains(t, output, "Parent Options: Finance")
	assert.Contains(t, output, "(root)")
	assert.Contains(t, output, "Health")
	assert.NotContains(t, output, "Loans")
}

func TestRunParentsUnknownID(t *testing.T) {
	origID := parentsID
	t.Cleanup(func() { parentsID = origID })

	useRecords(t, sampleTypes)
	parentsID = 99

	assert.ErrorIs(t, runParents(parentsCmd, nil), store.ErrNotFound)
}
