package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunginnanet/nirscan/pkg/scan"
)

func TestHeader(t *testing.T) {
	assert.Equal(t,
		[]string{"label", "sample_num", "w1", "w2", "w3", "w4", "w5", "w6", "w7", "w8"},
		Header())
}

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "NIR_data.csv")

	pet := Row{Label: "PET", Sample: "1", Values: scan.Result{1, -2, 3, 4, 5, 6, 7, 8388607}}
	hdpe := Row{Label: "HDPE", Sample: "2a", Values: scan.Result{-8388608}}

	require.NoError(t, Append(path, pet))
	require.NoError(t, Append(path, hdpe, pet))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "label,sample_num,w1,w2,w3,w4,w5,w6,w7,w8", lines[0])
	assert.Equal(t, "PET,1,1,-2,3,4,5,6,7,8388607", lines[1])
	assert.Equal(t, "HDPE,2a,-8388608,0,0,0,0,0,0,0", lines[2])
	assert.Equal(t, 1, strings.Count(string(data), "label"), "header written once")

	rows, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []Row{pet, hdpe, pet}, rows)
}

func TestAppend_Quoting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quoted.csv")
	r := Row{Label: "PP, recycled", Sample: `"x"`}
	require.NoError(t, Append(path, r))

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, r, rows[0])
}

func TestRead_Malformed(t *testing.T) {
	_, err := Read(strings.NewReader("PET,1,1,2,3\n"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Read(strings.NewReader("PET,1,1,2,3,4,5,6,7,x\n"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
