package source

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DataScheme prefixes inline data URLs.
const DataScheme = "data:"

// ErrMalformedDataURL is returned for data URLs without a payload separator
// or with an undecodable body.
var ErrMalformedDataURL = errors.New("malformed data url")

// parseDataURL splits an RFC 2397 data URL into its media type and bytes.
func parseDataURL(raw string) (string, []byte, error) {
	if !strings.HasPrefix(raw, DataScheme) {
		return "", nil, ErrMalformedDataURL
	}

	header, body, ok := strings.Cut(raw[len(DataScheme):], ",")
	if !ok {
		return "", nil, ErrMalformedDataURL
	}

	params := strings.Split(header, ";")
	mediaType := params[0]
	if mediaType == "" {
		mediaType = "text/plain"
	}

	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(p, "base64") {
			isBase64 = true
		}
	}

	if isBase64 {
		// Whitespace shows up when data URLs are wrapped inside HTML attributes.
		body = strings.Join(strings.Fields(body), "")

		data, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(body, "="))
		}

		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrMalformedDataURL, err)
		}

		return mediaType, data, nil
	}

	text, err := url.PathUnescape(body)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrMalformedDataURL, err)
	}

	return mediaType, []byte(text), nil
}
