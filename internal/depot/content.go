package depot

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const dataURIPrefix = "data:"

// DecodeContent converts a caller-supplied content string to the bytes that
// go into the blob store. A self-describing data URI
// ("data:<mime>;base64,<payload>") is base64-decoded; anything else is
// stored as UTF-8 text. Empty content yields a zero-length blob.
func DecodeContent(content string) ([]byte, error) {
	if content == "" {
		return []byte{}, nil
	}
	if !strings.HasPrefix(content, dataURIPrefix) {
		return []byte(content), nil
	}

	comma := strings.IndexByte(content, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URI: no payload separator")
	}

	header := content[len(dataURIPrefix):comma]
	payload := content[comma+1:]

	if !strings.HasSuffix(header, ";base64") {
		// Percent-encoded textual data URI; store the payload as-is.
		return []byte(payload), nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	return data, nil
}

// DataURIMimeType extracts the media type from a data URI, or returns ""
// if the content is not a data URI or carries no explicit type.
func DataURIMimeType(content string) string {
	if !strings.HasPrefix(content, dataURIPrefix) {
		return ""
	}
	rest := content[len(dataURIPrefix):]
	end := strings.IndexAny(rest, ";,")
	if end < 0 {
		return ""
	}
	return rest[:end]
}
