// Package attachment represents files carried inline by tasks, comments and
// chat messages.
package attachment

import (
	"encoding/json"
	"fmt"
)

// The set of attachment kinds.
const (
	KindImage = "image"
	KindFile  = "file"
)

// Attachment is a named file. URL is either a remote location or a data URL
// holding the content itself.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Validate checks the attachment can be stored.
func (a Attachment) Validate() error {
	if a.Name == "" || a.URL == "" {
		return fmt.Errorf("attachment needs a name and a url")
	}

	switch a.Type {
	case KindImage, KindFile:
		return nil
	}

	return fmt.Errorf("invalid attachment type %q", a.Type)
}

// Marshal encodes a list for a JSONB column. A nil list is stored as an
// empty array.
func Marshal(as []Attachment) ([]byte, error) {
	if as == nil {
		as = []Attachment{}
	}
	return json.Marshal(as)
}

// Unmarshal decodes a JSONB column.
func Unmarshal(data []byte) ([]Attachment, error) {
	if len(data) == 0 {
		return []Attachment{}, nil
	}

	var as []Attachment
	if err := json.Unmarshal(data, &as); err != nil {
		return nil, fmt.Errorf("unmarshal attachments: %w", err)
	}

	if as == nil {
		as = []Attachment{}
	}

	return as, nil
}
