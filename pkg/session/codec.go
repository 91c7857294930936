package session

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// EncodeData serializes session data into the text stored in the data column.
// Nil and empty maps encode to an empty string.
func EncodeData(data map[string]any) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", errors.Join(ErrMalformedData, err)
	}
	return string(b), nil
}

// DecodeData restores session data from its stored text form. Numbers come
// back as json.Number so integers keep their exact value. On failure an
// empty, usable map is returned with the error.
func DecodeData(raw string) (map[string]any, error) {
	data := make(map[string]any)
	if raw == "" {
		return data, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return make(map[string]any), errors.Join(ErrMalformedData, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return make(map[string]any), errors.Join(ErrMalformedData, errors.New("trailing data after object"))
	}
	if data == nil {
		// literal "null"
		data = make(map[string]any)
	}
	return data, nil
}
