package fix

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

const byteOrderMark = "\xEF\xBB\xBF"

// HasByteOrderMark reports whether the file at path starts with a UTF-8 BOM.
func HasByteOrderMark(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, len(byteOrderMark))
	n, _ := f.Read(head)
	return bytes.Equal(head[:n], []byte(byteOrderMark))
}

// WriteFile replaces the file at path with text. The write goes to a
// sibling temp file first and is renamed into place; the original file
// mode is kept.
func WriteFile(path string, text string, writeByteOrderMark bool) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	content := text
	if writeByteOrderMark {
		content = byteOrderMark + content
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
