package fileutil

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/viant/afs"
	_ "github.com/viant/afsc/s3"
)

var fileSystem = afs.New()

// ReadFileBytes reads the whole file at filename, which may be a local path or any URL afs understands.
func ReadFileBytes(ctx context.Context, filename string) (fileBytes []byte, err error) {
	file, err := fileSystem.OpenURL(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer func(file io.Closer) {
		err = errors.Join(err, CloseFile(file))
	}(file)

	buf := &bytes.Buffer{}
	if _, readErr := io.Copy(buf, file); readErr != nil {
		return nil, readErr
	}
	return buf.Bytes(), nil
}

func CloseFile(file io.Closer) error {
	return file.Close()
}

func FileExists(ctx context.Context, filename string) (bool, error) {
	return fileSystem.Exists(ctx, filename)
}

// FileSize returns the size in bytes of the object at filename.
func FileSize(ctx context.Context, filename string) (int64, error) {
	object, err := fileSystem.Object(ctx, filename)
	if err != nil {
		return 0, err
	}
	return object.Size(), nil
}
