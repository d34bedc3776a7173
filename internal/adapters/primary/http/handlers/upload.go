package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"

	"vessel-registry/internal/adapters/primary/http/dto"
	"vessel-registry/internal/core/domain"

	log "github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v3"
)

const maxFormFieldSize = 64 << 10

var errMalformedMultipart = fmt.Errorf("%w: malformed multipart body", domain.ErrValidation)

type uploadForm struct {
	tag      string
	dataSet  null.String
	pipeline null.String
}

// readUploadForm consumes the text fields preceding the first file part and
// returns an iterator positioned on that part. Nothing after it is read yet.
func readUploadForm(mr *multipart.Reader) (uploadForm, *multipartFiles, error) {
	var form uploadForm
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return form, &multipartFiles{reader: mr, done: true}, nil
		}
		if err != nil {
			return form, nil, fmt.Errorf("%w: %w", errMalformedMultipart, err)
		}

		if isFilePart(part) {
			if part.FormName() != dto.FormFieldFiles {
				_ = part.Close()
				return form, nil, fmt.Errorf("%w: unexpected file field %q", domain.ErrValidation, part.FormName())
			}
			return form, &multipartFiles{reader: mr, pending: part}, nil
		}

		value, err := readField(part)
		if err != nil {
			return form, nil, err
		}
		switch part.FormName() {
		case dto.FormFieldTag:
			form.tag = value
		case dto.FormFieldDataSet:
			form.dataSet = null.NewString(value, value != "")
		case dto.FormFieldPipeline:
			form.pipeline = null.NewString(value, value != "")
		default:
			log.WithField("field", part.FormName()).Debug("ignoring unknown form field")
		}
	}
}

func readField(part *multipart.Part) (string, error) {
	defer part.Close()
	b, err := io.ReadAll(io.LimitReader(part, maxFormFieldSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: read field %q: %w", errMalformedMultipart, part.FormName(), err)
	}
	if len(b) > maxFormFieldSize {
		return "", fmt.Errorf("%w: field %q exceeds %d bytes", domain.ErrValidation, part.FormName(), maxFormFieldSize)
	}
	return string(b), nil
}

func isFilePart(part *multipart.Part) bool {
	return part.FormName() == dto.FormFieldFiles || rawFileName(part) != ""
}

// rawFileName returns the filename parameter as sent. multipart.Part.FileName
// strips directories, which would hide names the pipeline must reject.
func rawFileName(part *multipart.Part) string {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return ""
	}
	return params["filename"]
}

// multipartFiles adapts the remaining parts of a multipart body to
// domain.FileIterator. Each part is closed when the next one is requested.
type multipartFiles struct {
	reader  *multipart.Reader
	pending *multipart.Part
	current *multipart.Part
	done    bool
}

func (it *multipartFiles) Next() (*domain.UploadFile, error) {
	it.Close()
	if it.done {
		return nil, io.EOF
	}

	part := it.pending
	it.pending = nil
	if part == nil {
		var err error
		part, err = it.reader.NextPart()
		if errors.Is(err, io.EOF) {
			it.done = true
			return nil, io.EOF
		}
		if err != nil {
			it.done = true
			return nil, fmt.Errorf("%w: %w", errMalformedMultipart, err)
		}
		if !isFilePart(part) {
			_ = part.Close()
			it.done = true
			return nil, fmt.Errorf("%w: %q", domain.ErrFieldAfterFiles, part.FormName())
		}
		if part.FormName() != dto.FormFieldFiles {
			_ = part.Close()
			it.done = true
			return nil, fmt.Errorf("%w: unexpected file field %q", domain.ErrValidation, part.FormName())
		}
	}

	it.current = part
	return &domain.UploadFile{Name: rawFileName(part), Content: part}, nil
}

func (it *multipartFiles) Close() {
	if it.current != nil {
		_ = it.current.Close()
		it.current = nil
	}
}
