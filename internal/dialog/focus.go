package dialog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// FocusDesc names the earlier attributes a turn depends on. Values maps
// attribute keys to values; Required lists the keys that the turn actually
// needs.
type FocusDesc struct {
	Required []string
	Values   map[string]string
}

// RequiredValues returns the values of the required keys, skipping keys
// the descriptor does not carry.
func (f *FocusDesc) RequiredValues() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.Required))
	for _, key := range f.Required {
		if v, ok := f.Values[key]; ok {
			out = append(out, v)
		}
	}
	return out
}

// UnmarshalJSON decodes a descriptor object. String values are kept as-is;
// any other JSON value is kept as its compact JSON text.
func (f *FocusDesc) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("focus_desc: %w", err)
	}
	f.Values = make(map[string]string, len(raw))
	f.Required = nil
	for key, msg := range raw {
		if key == "required" {
			if err := json.Unmarshal(msg, &f.Required); err != nil {
				return fmt.Errorf("focus_desc: required: %w", err)
			}
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			f.Values[key] = s
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, msg); err != nil {
			return fmt.Errorf("focus_desc: %s: %w", key, err)
		}
		f.Values[key] = buf.String()
	}
	return nil
}

// MarshalJSON encodes the descriptor back into a flat object.
func (f FocusDesc) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Values)+1)
	for k, v := range f.Values {
		out[k] = v
	}
	required := f.Required
	if required == nil {
		required = []string{}
	}
	out["required"] = required
	return json.Marshal(out)
}

// Keys returns the descriptor's attribute keys in sorted order.
func (f *FocusDesc) Keys() []string {
	keys := make([]string, 0, len(f.Values))
	for k := range f.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
