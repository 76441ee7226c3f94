// Package ratecard loads versioned rate cards from YAML.
package ratecard

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

//go:embed rate_card.yaml
var defaultRateCard []byte

// Default returns the rate card compiled into the binary.
func Default() (models.RateCardSet, error) {
	set, err := Parse(defaultRateCard)
	if err != nil {
		return models.RateCardSet{}, fmt.Errorf("embedded rate card: %w", err)
	}
	return set, nil
}

// LoadFile reads a rate card set from a YAML file.
func LoadFile(path string) (models.RateCardSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.RateCardSet{}, fmt.Errorf("read rate card %s: %w", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		return models.RateCardSet{}, fmt.Errorf("rate card %s: %w", path, err)
	}
	return set, nil
}

// Parse decodes a YAML rate card set. Unknown fields are rejected so that
// typos in price files surface at load time.
func Parse(data []byte) (models.RateCardSet, error) {
	var set models.RateCardSet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil {
		return models.RateCardSet{}, fmt.Errorf("decode: %w", err)
	}
	if len(set.Cards) == 0 {
		return models.RateCardSet{}, fmt.Errorf("no publications")
	}
	return set, nil
}

// Marshal encodes set as YAML.
func Marshal(set models.RateCardSet) ([]byte, error) {
	return yaml.Marshal(set)
}
