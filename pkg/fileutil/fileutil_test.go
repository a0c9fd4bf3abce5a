package fileutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExist(t *testing.T) {
	assert.False(t, Exist(""))
	assert.False(t, Exist("/does/not/exist"))

	path, err := WriteTempFile([]byte("hello"))
	require.NoError(t, err)
	defer os.Remove(path)
	assert.True(t, Exist(path))

	d, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(d))
}

func TestMkTmpDir(t *testing.T) {
	dir := MkTmpDir("", "fileutil-test")
	defer os.RemoveAll(dir)
	assert.True(t, Exist(dir))
}
