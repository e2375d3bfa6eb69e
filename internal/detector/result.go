package detector

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON emits the pair as a two-element array, e.g. ["v2", 2].
func (tc TagCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{tc.Tag, tc.Count})
}

// UnmarshalJSON parses the ["tag", count] pair form.
func (tc *TagCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("tag count: expected [tag, count] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &tc.Tag); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &tc.Count)
}
