package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"
	"mime"
	"mime/multipart"
	"net/textproto"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/erraggy/oaspipe/mediatype"
)

// sniffLen is how much of an untyped file part is buffered for detection.
const sniffLen = 3072

// File is a file part to encode into a multipart body.
type File struct {
	// Name is the file name sent in Content-Disposition. Defaults to the field name.
	Name string
	// ContentType defaults to application/octet-stream.
	ContentType string
	Body        io.Reader
}

// Field is one named value of an ordered multipart body.
type Field struct {
	Name  string
	Value any
}

// Part is one decoded multipart part. Field parts carry a materialized
// Value; file parts carry a Body stream that must be read before the next
// part is requested, or it is discarded.
type Part struct {
	Name        string
	FileName    string
	ContentType string
	// Value is the decoded field value (JSON fields decode to generic values,
	// everything else to a string). Nil for file parts.
	Value any
	// Body streams a file part. Nil for field parts.
	Body io.Reader
}

// IsFile reports whether the part is a file stream.
func (p *Part) IsFile() bool {
	return p.Body != nil
}

// MultipartReader streams the parts of a multipart body in arrival order.
type MultipartReader struct {
	r   *multipart.Reader
	cur *multipart.Part
}

// NewMultipartReader reads parts separated by boundary from r.
func NewMultipartReader(r io.Reader, boundary string) *MultipartReader {
	return &MultipartReader{r: multipart.NewReader(r, boundary)}
}

// Next returns the next part, or io.EOF after the last one. Any unread
// remainder of the previous part is drained first.
func (m *MultipartReader) Next() (*Part, error) {
	if m.cur != nil {
		_, _ = io.Copy(io.Discard, m.cur)
		_ = m.cur.Close()
		m.cur = nil
	}
	p, err := m.r.NextPart()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("codec: next multipart part: %w", err)
	}
	m.cur = p
	return readPart(p)
}

// Parts iterates over the remaining parts. Iteration stops after the first error.
func (m *MultipartReader) Parts() iter.Seq2[*Part, error] {
	return func(yield func(*Part, error) bool) {
		for {
			p, err := m.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(p, err) || err != nil {
				return
			}
		}
	}
}

// Collect consumes the remaining parts into a map. File bodies are read
// fully into []byte.
func (m *MultipartReader) Collect() (map[string]any, error) {
	out := make(map[string]any)
	for p, err := range m.Parts() {
		if err != nil {
			return nil, err
		}
		if !p.IsFile() {
			out[p.Name] = p.Value
			continue
		}
		data, err := io.ReadAll(p.Body)
		if err != nil {
			return nil, fmt.Errorf("codec: read part %q: %w", p.Name, err)
		}
		out[p.Name] = data
	}
	return out, nil
}

func readPart(p *multipart.Part) (*Part, error) {
	part := &Part{
		Name:        p.FormName(),
		FileName:    p.FileName(),
		ContentType: mediatype.Essence(p.Header.Get("Content-Type")),
	}
	if !isFilePart(part) {
		data, err := io.ReadAll(p)
		if err != nil {
			return nil, fmt.Errorf("codec: read field %q: %w", part.Name, err)
		}
		if mediatype.IsJSON(part.ContentType) {
			if err := json.Unmarshal(data, &part.Value); err != nil {
				return nil, fmt.Errorf("codec: decode field %q: %w", part.Name, err)
			}
		} else {
			part.Value = string(data)
		}
		return part, nil
	}

	if part.ContentType != "" {
		part.Body = p
		return part, nil
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(p, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("codec: sniff part %q: %w", part.Name, err)
	}
	head = head[:n]
	part.ContentType = mediatype.Essence(mimetype.Detect(head).String())
	part.Body = io.MultiReader(bytes.NewReader(head), p)
	return part, nil
}

func isFilePart(p *Part) bool {
	if p.FileName != "" {
		return true
	}
	switch {
	case p.ContentType == "", mediatype.IsJSON(p.ContentType):
		return false
	case mediatype.Matches(p.ContentType, mediatype.Text):
		return false
	}
	return true
}

// EncodeMultipart writes a multipart/form-data body from map[string]any
// (fields in key order) or []Field (fields in slice order). File, io.Reader
// and []byte values become file parts, strings become text fields and any
// other value becomes a JSON field. The body is streamed; c.ContentType is
// rewritten to carry the boundary.
func EncodeMultipart(ctx context.Context, v any, c *Context) (io.Reader, error) {
	var fields []Field
	switch f := v.(type) {
	case []Field:
		fields = f
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(f)) {
			fields = append(fields, Field{Name: k, Value: f[k]})
		}
	default:
		return nil, fmt.Errorf("codec: encode multipart: unsupported value %T", v)
	}

	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)
	subtype := "form-data"
	if _, sub := mediatype.Split(mediatype.Essence(c.ContentType)); sub != "" && sub != "*" {
		subtype = sub
	}
	c.ContentType = mime.FormatMediaType("multipart/"+subtype, map[string]string{"boundary": w.Boundary()})

	go func() {
		for _, f := range fields {
			if err := ctx.Err(); err != nil {
				pw.CloseWithError(err)
				return
			}
			if err := writeField(w, f); err != nil {
				pw.CloseWithError(fmt.Errorf("codec: encode multipart field %q: %w", f.Name, err))
				return
			}
		}
		pw.CloseWithError(w.Close())
	}()
	return pr, nil
}

func writeField(w *multipart.Writer, f Field) error {
	switch val := f.Value.(type) {
	case nil:
		return nil
	case string:
		return w.WriteField(f.Name, val)
	case *File:
		return writeFile(w, f.Name, val)
	case File:
		return writeFile(w, f.Name, &val)
	case []byte:
		return writeFile(w, f.Name, &File{Body: bytes.NewReader(val)})
	case io.Reader:
		return writeFile(w, f.Name, &File{Body: val})
	}
	data, err := json.Marshal(f.Value)
	if err != nil {
		return err
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": f.Name}))
	h.Set("Content-Type", mediatype.JSON)
	pw, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = pw.Write(data)
	return err
}

func writeFile(w *multipart.Writer, name string, f *File) error {
	fileName := f.Name
	if fileName == "" {
		fileName = name
	}
	ct := f.ContentType
	if ct == "" {
		ct = mediatype.OctetStream
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": name, "filename": fileName}))
	h.Set("Content-Type", ct)
	pw, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if f.Body == nil {
		return nil
	}
	_, err = io.Copy(pw, f.Body)
	return err
}

// DecodeMultipart returns a *MultipartReader for the boundary named in
// c.ContentType.
func DecodeMultipart(_ context.Context, r io.Reader, c *Context) (any, error) {
	_, params, err := mime.ParseMediaType(c.ContentType)
	if err != nil {
		return nil, fmt.Errorf("codec: decode multipart: %w", err)
	}
	boundary := strings.TrimSpace(params["boundary"])
	if boundary == "" {
		return nil, errors.New("codec: decode multipart: missing boundary")
	}
	return NewMultipartReader(r, boundary), nil
}
