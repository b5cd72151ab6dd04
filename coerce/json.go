package coerce

import (
	"encoding/json"
	"fmt"
)

const decodeErrBody = 200

// Decode unmarshals JSON into T, including a truncated copy of the body
// in the error for context.
func Decode[T any](data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		body := string(data)
		if len(body) > decodeErrBody {
			body = body[:decodeErrBody] + "..."
		}
		return out, fmt.Errorf("failed to decode JSON (%s): %w", body, err)
	}
	return out, nil
}

// DecodeString is Decode for string input.
func DecodeString[T any](data string) (T, error) {
	return Decode[T]([]byte(data))
}

// Encode marshals v to JSON.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}
