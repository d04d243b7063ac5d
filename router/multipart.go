package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"

	"github.com/erraggy/oaspipe/codec"
	"github.com/erraggy/oaspipe/internal/latch"
	"github.com/erraggy/oaspipe/logging"
	"github.com/erraggy/oaspipe/mediatype"
	"github.com/erraggy/oaspipe/oaserrors"
	"github.com/erraggy/oaspipe/schemareg"
)

// Multipart streams a multipart request body. Every part is validated
// against its property schema as it arrives; once the last part has been
// read the assembled object is validated against the whole body schema.
//
// Parts arrive in wire order and must be consumed in that order. A file
// part's Body has to be read before the next part is requested, or it is
// discarded. Whatever the handler leaves unread is drained by the router
// once the handler returns.
type Multipart struct {
	reader      *codec.MultipartReader
	registry    *schemareg.Registry
	operationID string
	contentType string
	observer    func(MultipartEvent)
	logger      logging.Logger

	aggregate map[string]any
	latch     latch.Latch
}

func (rt *Router) newMultipart(ctx context.Context, operationID, contentType string, reader *codec.MultipartReader) *Multipart {
	return &Multipart{
		reader:      reader,
		registry:    rt.registry,
		operationID: operationID,
		contentType: contentType,
		observer:    rt.opts.onMultipart,
		logger:      logging.FromContext(ctx, rt.opts.logger).With("operation", operationID),
		aggregate:   make(map[string]any),
	}
}

// Next returns the next validated part. After the last part it validates
// the assembled object and returns io.EOF. Once an error has been returned
// every later call returns that same error.
func (m *Multipart) Next() (*codec.Part, error) {
	switch m.latch.State() {
	case latch.Errored:
		return nil, m.latch.Err()
	case latch.Done:
		return nil, io.EOF
	}

	p, err := m.reader.Next()
	if errors.Is(err, io.EOF) {
		return nil, m.finish()
	}
	if err != nil {
		return nil, m.fail(m.invalid(oaserrors.KindUndecodableBody, "", err))
	}
	if err := m.accept(p); err != nil {
		return nil, m.fail(err)
	}
	return p, nil
}

// Parts iterates over the remaining parts. Iteration stops after the first
// error, which is yielded.
func (m *Multipart) Parts() iter.Seq2[*codec.Part, error] {
	return func(yield func(*codec.Part, error) bool) {
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

// Collect consumes the remaining parts and returns the validated object.
// File parts are read fully into []byte; fields hold their coerced values,
// repeated fields of an array property as one slice.
func (m *Multipart) Collect() (map[string]any, error) {
	out := make(map[string]any)
	for p, err := range m.Parts() {
		if err != nil {
			return nil, err
		}
		if !p.IsFile() {
			out[p.Name] = m.aggregate[p.Name]
			continue
		}
		data, err := io.ReadAll(p.Body)
		if err != nil {
			return nil, fmt.Errorf("router: read part %q: %w", p.Name, err)
		}
		out[p.Name] = data
	}
	if err := m.latch.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Drain discards the remaining parts, validating them as usual, and
// returns the first error of the body if there was one.
func (m *Multipart) Drain() error {
	for _, err := range m.Parts() {
		if err != nil {
			return err
		}
	}
	return m.latch.Err()
}

// Aggregate returns the object assembled from the parts read so far. File
// parts are represented by their file name.
func (m *Multipart) Aggregate() map[string]any {
	return m.aggregate
}

// accept validates one part and records it in the aggregate. Text fields
// are coerced to the property type; repeated fields of an array property
// accumulate, and the part's Value becomes its own coerced element.
func (m *Multipart) accept(p *codec.Part) error {
	key := schemareg.RequestBodyPropertyKey(m.operationID, m.contentType, p.Name)
	declared := m.registry.Has(key)

	if p.IsFile() {
		recorded := p.FileName
		if recorded == "" {
			recorded = p.Name
		}
		if declared {
			if err := m.registry.Validate(key, p.Body); err != nil {
				return m.invalid(oaserrors.KindInvalidBodyProperty, p.Name, err)
			}
		}
		return m.record(p.Name, recorded)
	}

	if !declared {
		return m.record(p.Name, p.Value)
	}
	if mediatype.IsJSON(p.ContentType) {
		if err := m.registry.Validate(key, p.Value); err != nil {
			return m.invalid(oaserrors.KindInvalidBodyProperty, p.Name, err)
		}
		return m.record(p.Name, p.Value)
	}

	var raw any = p.Value
	array := m.registry.Type(key) == "array"
	if array {
		prev, _ := m.aggregate[p.Name].([]any)
		raw = append(slices.Clone(prev), p.Value)
	}
	value, err := m.registry.Coerce(key, raw)
	if err != nil {
		return m.invalid(oaserrors.KindInvalidBodyProperty, p.Name, err)
	}
	p.Value = value
	if items, ok := value.([]any); ok && array && len(items) > 0 {
		p.Value = items[len(items)-1]
	}
	return m.record(p.Name, value)
}

func (m *Multipart) record(name string, recorded any) error {
	m.aggregate[name] = recorded
	m.emit(MultipartEvent{Kind: PartValidated, OperationID: m.operationID, Name: name, Value: recorded})
	return nil
}

// finish runs the aggregate validation once the stream has ended.
func (m *Multipart) finish() error {
	if err := m.registry.Validate(schemareg.RequestBodyKey(m.operationID, m.contentType), m.aggregate); err != nil {
		return m.fail(m.invalid(oaserrors.KindInvalidBody, "", err))
	}
	if m.latch.Done() {
		m.emit(MultipartEvent{Kind: AllPartsDone, OperationID: m.operationID, Value: m.aggregate})
	}
	return io.EOF
}

// fail settles the body with err. Only the first error is reported; later
// ones are logged and the first is returned again.
func (m *Multipart) fail(err error) error {
	if m.latch.Fail(err) {
		return err
	}
	m.logger.Debug("multipart error after settlement", "error", err)
	if first := m.latch.Err(); first != nil {
		return first
	}
	return io.EOF
}

func (m *Multipart) invalid(kind oaserrors.Kind, name string, cause error) *oaserrors.InvalidRequestError {
	err := oaserrors.NewInvalidRequest(kind, m.operationID, cause)
	err.Parameter = name
	err.ContentType = m.contentType
	return err
}

func (m *Multipart) emit(ev MultipartEvent) {
	if m.observer != nil {
		m.observer(ev)
	}
}
