package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StoreInfo is the contact and address block a seller or shopper carries from
// the storefront. Older rows hold it as a JSON-encoded string inside the JSONB
// column; Scan accepts both shapes.
type StoreInfo struct {
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	MobilePhone   string `json:"mobile_phone,omitempty"`
	TaxID         string `json:"tax_id,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Address       string `json:"address,omitempty"`
	AddressNumber string `json:"address_number,omitempty"`
	Complement    string `json:"complement,omitempty"`
	Province      string `json:"province,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
}

// IsZero reports whether no field is populated.
func (s StoreInfo) IsZero() bool {
	return s == StoreInfo{}
}

// Value marshals StoreInfo into a JSON object.
func (s StoreInfo) Value() (driver.Value, error) {
	buf, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes either a JSON object or a JSON string that wraps one.
func (s *StoreInfo) Scan(value interface{}) error {
	if value == nil {
		*s = StoreInfo{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("store info: unsupported scan type %T", value)
	}
	return s.decode(raw)
}

// UnmarshalJSON applies the same object-or-string tolerance for API payloads.
func (s *StoreInfo) UnmarshalJSON(data []byte) error {
	return s.decode(data)
}

func (s *StoreInfo) decode(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*s = StoreInfo{}
		return nil
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return fmt.Errorf("store info: decode wrapped string: %w", err)
		}
		if inner == "" {
			*s = StoreInfo{}
			return nil
		}
		raw = []byte(inner)
	}

	type plain StoreInfo
	var out plain
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("store info: %w", err)
	}
	*s = StoreInfo(out)
	return nil
}
