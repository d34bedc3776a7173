package domain

import (
	"io"
)

// UploadFile is one named byte stream of an upload set.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// FileIterator yields the files of an upload set in order. Next returns
// io.EOF once the set is exhausted. Streams must be consumed before the next
// call to Next, which lets transports hand over parts they cannot rewind.
type FileIterator interface {
	Next() (*UploadFile, error)
}

type sliceIterator struct {
	files []UploadFile
	pos   int
}

// Files returns a FileIterator over an in-memory list.
func Files(files ...UploadFile) FileIterator {
	return &sliceIterator{files: files}
}

func (it *sliceIterator) Next() (*UploadFile, error) {
	if it.pos >= len(it.files) {
		return nil, io.EOF
	}
	f := &it.files[it.pos]
	it.pos++
	return f, nil
}
