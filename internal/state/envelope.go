package state

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SchemaVersion is stamped on every value written by this package.
const SchemaVersion = 1

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}

	raw, err := json.Marshal(envelope{Version: SchemaVersion, Data: data})
	if err != nil {
		return "", fmt.Errorf("failed to encode envelope: %w", err)
	}
	return string(raw), nil
}

// decode unmarshals raw into v and reports the schema version it was stored with.
//
// Values written before versioning (bare JSON documents) decode as version 0. A null document reports
// present == false.
func decode(raw string, v any) (version int, present bool, err error) {
	data := []byte(raw)

	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &fields) == nil && fields != nil {
		body, hasData := fields["data"]
		rawVersion, hasVersion := fields["version"]
		if hasData && hasVersion {
			if err := json.Unmarshal(rawVersion, &version); err != nil {
				return 0, false, fmt.Errorf("invalid schema version: %w", err)
			}
			data = body
		}
	}

	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return version, false, nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return version, false, err
	}
	return version, true, nil
}
