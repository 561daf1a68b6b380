package preview

import (
	"fmt"

	"github.com/vincent-petithory/dataurl"
)

// DataURI encodes data as a base64 RFC 2397 data URI. params are media type
// parameters given as key, value pairs, e.g. "charset", "utf-8".
func DataURI(mimeType string, data []byte, params ...string) string {
	return dataurl.New(data, mimeType, params...).String()
}

// DecodeDataURI returns the payload of a base64 or percent-encoded data URI.
func DecodeDataURI(uri string) ([]byte, error) {
	du, err := dataurl.DecodeString(uri)
	if err != nil {
		return nil, fmt.Errorf("malformed data URI: %w", err)
	}
	return du.Data, nil
}
