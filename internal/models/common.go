package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSONB type for PostgreSQL JSONB (object/map)
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONB)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// JSONArray type for PostgreSQL JSONB (array)
type JSONArray []interface{}

func (j JSONArray) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONArray, 0)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// StringSlice extracts the string members of a JSONArray, skipping anything
// that is not a string.
func (j JSONArray) StringSlice() []string {
	if len(j) == 0 {
		return nil
	}
	out := make([]string, 0, len(j))
	for _, v := range j {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ToJSONArray converts a string slice into a JSONArray for JSONB storage.
func ToJSONArray(values []string) *JSONArray {
	arr := make(JSONArray, 0, len(values))
	for _, v := range values {
		arr = append(arr, v)
	}
	return &arr
}

// Error represents a structured API error
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSONB `json:"details,omitempty"`
}

// ErrorResponse is the envelope returned for failed requests
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// SuccessResponse is the envelope returned for generic successful requests
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// PaginationInfo describes a paged list response
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}
