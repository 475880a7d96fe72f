package model

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type ContentKind string

const (
	ContentText   ContentKind = "text"
	ContentBinary ContentKind = "binary"
)

const defaultBinaryMIME = "application/octet-stream"

var ErrInvalidContent = errors.New("invalid document content")

// Content is either plain text or an opaque binary blob with its MIME type.
// Binary payloads are never inspected.
type Content struct {
	Kind     ContentKind `json:"kind"`
	Text     string      `json:"text,omitempty"`
	MIMEType string      `json:"mimeType,omitempty"`
	Data     []byte      `json:"data,omitempty"`
}

func TextContent(s string) Content {
	return Content{Kind: ContentText, Text: s}
}

func BinaryContent(data []byte, mimeType string) Content {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = defaultBinaryMIME
	}
	return Content{Kind: ContentBinary, MIMEType: mimeType, Data: append([]byte(nil), data...)}
}

func (c Content) IsBinary() bool {
	return c.Kind == ContentBinary
}

// Size is the byte length of the payload.
func (c Content) Size() int {
	if c.IsBinary() {
		return len(c.Data)
	}
	return len(c.Text)
}

func (c Content) Clone() Content {
	if c.Data != nil {
		c.Data = append([]byte(nil), c.Data...)
	}
	return c
}

func (c Content) Validate() error {
	switch c.Kind {
	case ContentText:
		if len(c.Data) > 0 {
			return fmt.Errorf("%w: text content carries binary data", ErrInvalidContent)
		}
	case ContentBinary:
		if c.Text != "" {
			return fmt.Errorf("%w: binary content carries text", ErrInvalidContent)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidContent, c.Kind)
	}
	return nil
}

// UnmarshalJSON accepts the tagged object form and the older bare-string form,
// where binary uploads were stored as "data:<mime>;base64,<payload>" URLs.
func (c *Content) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ContentFromString(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	type plain Content
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	out := Content(p)
	if out.Kind == "" {
		out.Kind = ContentText
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*c = out
	return nil
}

// ContentFromString interprets a legacy content string.
func ContentFromString(s string) (Content, error) {
	if !strings.HasPrefix(s, "data:") {
		return TextContent(s), nil
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return Content{}, fmt.Errorf("%w: data url without payload", ErrInvalidContent)
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return BinaryContent([]byte(payload), mimeType), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return BinaryContent(data, mimeType), nil
}
