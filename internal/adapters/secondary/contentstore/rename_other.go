//go:build !linux

package contentstore

func renameNoReplace(oldpath, newpath string) error {
	return renameFallback(oldpath, newpath)
}
