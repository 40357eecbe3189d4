package fsutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

const filePerm = 0o644

// WriteFile writes data to name atomically, creating parent directories.
func WriteFile(name string, data []byte) error {
	return writeReader(name, bytes.NewReader(data), filePerm)
}

// CopyFile copies src to dst atomically, preserving the permission bits of src.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	return writeReader(dst, in, info.Mode().Perm())
}

func writeReader(name string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", name, err)
	}
	if err := atomic.WriteFile(name, r); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	// atomic.WriteFile creates its temp file with 0600.
	return os.Chmod(name, perm)
}

// Concat reads files in order and joins their contents with sep.
func Concat(root string, paths []string, sep string) ([]byte, error) {
	var buf bytes.Buffer
	for i, p := range paths {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteString(sep)
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}
