package contentstore

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// renameFallback relies on rename(2) refusing to replace a non-empty
// directory. Published directories are never empty.
func renameFallback(oldpath, newpath string) error {
	err := os.Rename(oldpath, newpath)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) || errors.Is(err, syscall.ENOTEMPTY) {
		return errExists
	}
	return err
}
