package fileutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), os.ModePerm))
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestReadFileBytes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "model.tflite", []byte("TFL3 payload"))

	content, err := ReadFileBytes(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []byte("TFL3 payload"), content)

	_, err = ReadFileBytes(context.Background(), filepath.Join(dir, "missing.tflite"))
	assert.Error(t, err)
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "model.onnx", make([]byte, 2048))

	size, err := FileSize(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), size)
}

func TestResolveFirstPicksFirstExisting(t *testing.T) {
	dir := t.TempDir()
	second := writeFile(t, dir, "assets/model.tflite", []byte{1})
	third := writeFile(t, dir, "other/model.tflite", []byte{2})

	candidates := []string{
		filepath.Join(dir, "app/src/main/assets/model.tflite"),
		second,
		third,
	}
	resolved, err := ResolveFirst(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, second, resolved)
}

func TestResolveFirstNotFound(t *testing.T) {
	dir := t.TempDir()
	candidates := []string{
		filepath.Join(dir, "a.tflite"),
		filepath.Join(dir, "b.tflite"),
		filepath.Join(dir, "c.tflite"),
	}
	resolved, err := ResolveFirst(context.Background(), candidates)
	require.Error(t, err)
	assert.Empty(t, resolved)

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, candidates, notFound.Attempted)
	for _, candidate := range candidates {
		assert.Contains(t, err.Error(), candidate)
	}
}

func TestResolveFirstEmpty(t *testing.T) {
	_, err := ResolveFirst(context.Background(), nil)
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Empty(t, notFound.Attempted)
	assert.Contains(t, err.Error(), "no candidate paths")
}
