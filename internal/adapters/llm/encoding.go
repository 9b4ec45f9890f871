package llm

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeImageData is the inverse of DecodeImageData, without a data URL prefix.
func EncodeImageData(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeImageData decodes base64 image data as sent by JSON clients.
// A "data:<mime>;base64," prefix is accepted and stripped.
func DecodeImageData(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding image data: %w", err)
	}
	return data, nil
}
