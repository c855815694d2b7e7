package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONMap stores free-form metadata as a JSON document. It is written as
// text so the same column works on PostgreSQL, MySQL and SQLite.
type JSONMap map[string]interface{}

// Scan implements the sql.Scanner interface for reading from the database.
func (m *JSONMap) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("JSONMap: unsupported scan type")
	}

	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}

	result := JSONMap{}
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}
	*m = result
	return nil
}

// Value implements the driver.Valuer interface for writing to the database.
// A nil map is stored as an empty object.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (JSONMap) GormDataType() string {
	return "text"
}
