package models

import "encoding/json"

// MedicineRecord is one entry in the structured medicine catalog. The catalog is
// owned by an external collaborator; the core only filters and sorts copies.
// Unrecognized attributes from catalog schema drift land in Extra.
type MedicineRecord struct {
	Name         string                 `json:"name"`
	Brand        string                 `json:"brand,omitempty"`
	Composition  string                 `json:"composition,omitempty"`
	Price        string                 `json:"price,omitempty"`
	Manufacturer string                 `json:"manufacturer,omitempty"`
	PackSize     string                 `json:"pack_size,omitempty"`
	URL          string                 `json:"url,omitempty"`
	Categories   []string               `json:"categories,omitempty"`
	Extra        map[string]interface{} `json:"-"`
}

// medicineKnownKeys are the JSON keys mapped to explicit struct fields.
var medicineKnownKeys = map[string]struct{}{
	"name": {}, "brand": {}, "composition": {}, "price": {},
	"manufacturer": {}, "pack_size": {}, "url": {}, "categories": {},
}

// UnmarshalJSON decodes known fields into the struct and keeps everything else in Extra.
func (m *MedicineRecord) UnmarshalJSON(data []byte) error {
	type alias MedicineRecord
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = MedicineRecord(a)
	for k, v := range raw {
		if _, known := medicineKnownKeys[k]; known {
			continue
		}
		var val interface{}
		if err := json.Unmarshal(v, &val); err != nil {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]interface{})
		}
		m.Extra[k] = val
	}
	return nil
}

// MarshalJSON emits known fields plus any Extra attributes in one flat object.
func (m MedicineRecord) MarshalJSON() ([]byte, error) {
	type alias MedicineRecord
	base, err := json.Marshal(alias(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return base, nil
	}
	var flat map[string]interface{}
	if err := json.Unmarshal(base, &flat); err != nil {
		return nil, err
	}
	for k, v := range m.Extra {
		if _, known := medicineKnownKeys[k]; !known {
			flat[k] = v
		}
	}
	return json.Marshal(flat)
}
