package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Image is a remotely hosted asset. PublicID is what the asset store needs to destroy it.
type Image struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

func (i Image) IsZero() bool {
	return i.PublicID == "" && i.SecureURL == ""
}

func (i Image) Value() (driver.Value, error) {
	if i.IsZero() {
		return nil, nil
	}
	b, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (i *Image) Scan(value interface{}) error {
	*i = Image{}
	return scanJSON(value, i)
}

// ImageList stores several images in one JSON column.
type ImageList []Image

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ImageList) Scan(value interface{}) error {
	*l = nil
	return scanJSON(value, l)
}

// StringArray stores a string slice as a JSON array so it works on postgres and sqlite alike.
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringArray) Scan(value interface{}) error {
	*s = nil
	return scanJSON(value, s)
}

func scanJSON(value interface{}, dest interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported JSON column type")
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

// CollectImages drops empty entries so callers can pass optional images straight through.
func CollectImages(images ...Image) []Image {
	out := make([]Image, 0, len(images))
	for _, img := range images {
		if img.PublicID != "" {
			out = append(out, img)
		}
	}
	return out
}
