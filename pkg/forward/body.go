// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package forward

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"
)

// ErrInvalidBody is returned when an inbound body claims to be JSON or form
// data but cannot be parsed.
var ErrInvalidBody = errors.New("invalid request body")

var emptyObject = []byte("{}")

// NormalizeBody turns an inbound request body into the JSON text sent upstream.
// Empty bodies and bodies of unknown types become an empty object, form posts
// become an object of their fields, and JSON is compacted as-is.
func NormalizeBody(contentType string, raw []byte) ([]byte, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return emptyObject, nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = ""
	}

	if mediaType == "application/x-www-form-urlencoded" {
		return formToJSON(raw)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		if isJSONMediaType(mediaType) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		return emptyObject, nil
	}
	return buf.Bytes(), nil
}

func isJSONMediaType(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func formToJSON(raw []byte) ([]byte, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	fields := make(map[string]any, len(values))
	for k, vv := range values {
		if len(vv) == 1 {
			fields[k] = vv[0]
			continue
		}
		fields[k] = vv
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode form body: %w", err)
	}
	return out, nil
}
