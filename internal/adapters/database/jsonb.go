package database

import "encoding/json"

// marshalJSONB encodes a value for a jsonb column. A nil value stores SQL
// NULL rather than the string "null". The result is a string so the SQL
// builder renders a text literal, which Postgres casts to jsonb on insert.
func marshalJSONB(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	// Typed nil maps and slices marshal to the string "null".
	if string(data) == "null" {
		return nil, nil
	}
	return string(data), nil
}

// unmarshalJSONB decodes a jsonb column into target, treating NULL as empty.
func unmarshalJSONB(data []byte, target interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
