package inference

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

var dataURIPattern = regexp.MustCompile(`^data:([a-zA-Z0-9.+/-]+)?(;[^,]*)?,(.*)$`)

// Screenshot is a chart image normalised for transmission.
type Screenshot struct {
	MIMEType string
	Data     []byte
}

// ScreenshotFromBytes sniffs raw image bytes.
func ScreenshotFromBytes(data []byte) (Screenshot, error) {
	if len(data) == 0 {
		return Screenshot{}, ErrEmptyImage
	}
	mime := sniffImageMIME(data)
	if mime == "" {
		return Screenshot{}, ErrNotAnImage
	}
	return Screenshot{MIMEType: mime, Data: data}, nil
}

// DecodeScreenshot accepts a base64 data URI or bare base64 payload.
// The data-URI prefix is stripped; the declared media type must be an image.
func DecodeScreenshot(s string) (Screenshot, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Screenshot{}, ErrEmptyImage
	}

	payload := s
	if m := dataURIPattern.FindStringSubmatch(s); m != nil {
		if m[1] != "" && !strings.HasPrefix(strings.ToLower(m[1]), "image/") {
			return Screenshot{}, fmt.Errorf("%w: media type %s", ErrNotAnImage, m[1])
		}
		if !strings.Contains(m[2], ";base64") {
			return Screenshot{}, fmt.Errorf("%w: data URI is not base64 encoded", ErrNotAnImage)
		}
		payload = m[3]
	}

	payload = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, payload)
	if payload == "" {
		return Screenshot{}, ErrEmptyImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return Screenshot{}, fmt.Errorf("%w: %v", ErrNotAnImage, err)
		}
	}
	return ScreenshotFromBytes(data)
}

// Base64 returns the payload without any data-URI prefix.
func (s Screenshot) Base64() string {
	return base64.StdEncoding.EncodeToString(s.Data)
}

// DataURI returns the screenshot as a data URI.
func (s Screenshot) DataURI() string {
	return "data:" + s.MIMEType + ";base64," + s.Base64()
}

func (s Screenshot) IsZero() bool {
	return len(s.Data) == 0
}

func sniffImageMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "image/png"
	case bytes.HasPrefix(data, []byte("\xFF\xD8\xFF")):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return "image/gif"
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	}
	return ""
}
