package content

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// RarityWeight is one entry of the rarity table.
type RarityWeight struct {
	Rarity string
	Weight float64
}

// RarityWeights is the pack's rarity table. Document order is significant:
// the loot roll walks the table cumulatively, so reordering entries changes
// which rarity a given draw lands on. The type round-trips through JSON and
// YAML objects while preserving that order, which plain Go maps would lose.
type RarityWeights []RarityWeight

// Get returns the weight for a rarity name.
func (w RarityWeights) Get(rarity string) (float64, bool) {
	for _, rw := range w {
		if rw.Rarity == rarity {
			return rw.Weight, true
		}
	}
	return 0, false
}

// MarshalJSON encodes the table as a JSON object in table order.
func (w RarityWeights) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rw := range w {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(rw.Rarity)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(rw.Weight)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (w *RarityWeights) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("rarity_weights: expected object, got %v", tok)
	}

	out := RarityWeights{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("rarity_weights: non-string key %v", keyTok)
		}
		var weight float64
		if err := dec.Decode(&weight); err != nil {
			return fmt.Errorf("rarity_weights[%q]: %w", key, err)
		}
		out = append(out, RarityWeight{Rarity: key, Weight: weight})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*w = out
	return nil
}

// MarshalYAML encodes the table as a YAML mapping in table order.
func (w RarityWeights) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, rw := range w {
		var key, val yaml.Node
		if err := key.Encode(rw.Rarity); err != nil {
			return nil, err
		}
		if err := val.Encode(rw.Weight); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &key, &val)
	}
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping preserving key order.
func (w *RarityWeights) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("rarity_weights: expected mapping, got %v", value.Kind)
	}

	out := RarityWeights{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		var weight float64
		if err := value.Content[i+1].Decode(&weight); err != nil {
			return fmt.Errorf("rarity_weights[%q]: %w", key, err)
		}
		out = append(out, RarityWeight{Rarity: key, Weight: weight})
	}

	*w = out
	return nil
}
