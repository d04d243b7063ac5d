package codec

import "github.com/erraggy/oaspipe/mediatype"

// DefaultEncoders returns the built-in encoders seeded on both the router
// and the SDK.
func DefaultEncoders() map[string]EncodeFunc {
	return map[string]EncodeFunc{
		mediatype.JSON:        EncodeJSON,
		mediatype.Text:        EncodeText,
		mediatype.TextPlain:   EncodeText,
		mediatype.Form:        EncodeForm,
		mediatype.Multipart:   EncodeMultipart,
		mediatype.FormData:    EncodeMultipart,
		mediatype.OctetStream: EncodeBinary,
	}
}

// DefaultDecoders returns the built-in decoders seeded on both the router
// and the SDK.
func DefaultDecoders() map[string]DecodeFunc {
	return map[string]DecodeFunc{
		mediatype.JSON:        DecodeJSON,
		mediatype.Text:        DecodeText,
		mediatype.TextPlain:   DecodeText,
		mediatype.Form:        DecodeForm,
		mediatype.Multipart:   DecodeMultipart,
		mediatype.FormData:    DecodeMultipart,
		mediatype.OctetStream: DecodeBinary,
	}
}

// ExtraEncoders returns opt-in encoders for MessagePack and JSON record streams.
func ExtraEncoders() map[string]EncodeFunc {
	return map[string]EncodeFunc{
		mediatype.MsgPack: EncodeMsgPack,
		mediatype.JSONSeq: EncodeJSONSeq,
		mediatype.NDJSON:  EncodeJSONSeq,
	}
}

// ExtraDecoders returns opt-in decoders for MessagePack and JSON record streams.
func ExtraDecoders() map[string]DecodeFunc {
	return map[string]DecodeFunc{
		mediatype.MsgPack: DecodeMsgPack,
		mediatype.JSONSeq: DecodeJSONSeq,
		mediatype.NDJSON:  DecodeJSONSeq,
	}
}

// NewEncoders returns an encoder registry with the unsupported fallback and
// the default encoders.
func NewEncoders() *Registry[EncodeFunc] {
	return New[EncodeFunc](unsupportedEncoder).AddAll(DefaultEncoders())
}

// NewDecoders returns a decoder registry with the unsupported fallback and
// the default decoders.
func NewDecoders() *Registry[DecodeFunc] {
	return New[DecodeFunc](unsupportedDecoder).AddAll(DefaultDecoders())
}
