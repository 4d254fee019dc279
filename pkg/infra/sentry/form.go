package sentry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/m-mizutani/goerr/v2"
)

// sniffLen is the number of leading bytes used to detect the content type
const sniffLen = 3072

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Form is an in-memory multipart/form-data request body
type Form struct {
	buf    bytes.Buffer
	writer *multipart.Writer
}

// NewForm creates an empty form
func NewForm() *Form {
	f := &Form{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

// AddField appends a plain value field
func (f *Form) AddField(name, value string) error {
	if err := f.writer.WriteField(name, value); err != nil {
		return goerr.Wrap(err, "failed to write form field", goerr.V("field", name))
	}
	return nil
}

// AddFile appends content as a file part. The part's Content-Type is
// detected from the leading bytes of content. It returns the number of
// bytes copied.
func (f *Form) AddFile(field, filename string, content io.Reader) (int64, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(content, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, goerr.Wrap(err, "failed to read file content", goerr.V("filename", filename))
	}
	head = head[:n]

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", mimetype.Detect(head).String())

	part, err := f.writer.CreatePart(h)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create form file part", goerr.V("filename", filename))
	}

	written, err := io.Copy(part, io.MultiReader(bytes.NewReader(head), content))
	if err != nil {
		return written, goerr.Wrap(err, "failed to read file content", goerr.V("filename", filename))
	}

	return written, nil
}

// Close writes the trailing boundary. The form must be closed before it is sent.
func (f *Form) Close() error {
	if err := f.writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to close form")
	}
	return nil
}

// ContentType returns the multipart Content-Type header value, boundary included
func (f *Form) ContentType() string {
	return f.writer.FormDataContentType()
}

// Len returns the encoded size of the form
func (f *Form) Len() int {
	return f.buf.Len()
}

// Reader returns the encoded form. The form can be read once per call.
func (f *Form) Reader() io.Reader {
	return bytes.NewReader(f.buf.Bytes())
}
