package domain

import "encoding/json"

// marshalWithExtra encodes known and merges in extra keys.
// Known fields take precedence over extra keys with the same name.
func marshalWithExtra(known any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(extra)+len(fields))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// unmarshalWithExtra decodes data into known and returns every key that
// known does not declare.
func unmarshalWithExtra(data []byte, known any) (map[string]any, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	var declared map[string]any
	if err := json.Unmarshal(encoded, &declared); err != nil {
		return nil, err
	}

	for k := range declared {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}
