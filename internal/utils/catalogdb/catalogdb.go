package catalogdb

import (
	"errors"
	"fmt"
	"os"

	"card-clicker/internal/models"

	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of a catalog:
//
//	cards:
//	  - id: card_0001
//	    name: Burning Slime Warrior
//	    rarity: common
//	    hp: 150
//	    atk: 15
//	    def: 8
//	    ability: CLICK_MULTIPLY
type file struct {
	Cards []models.CardTemplate `yaml:"cards"`
}

type CatalogDB struct{}

func New() *CatalogDB {
	return &CatalogDB{}
}

// LoadCardsFromFile reads the card templates of a YAML catalog.
func (cd CatalogDB) LoadCardsFromFile(filename string) ([]models.CardTemplate, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog. Unknown rarities and abilities are
// accepted and fall back to their unknown values.
func Parse(data []byte) ([]models.CardTemplate, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if len(f.Cards) == 0 {
		return nil, errors.New("catalog has no cards")
	}

	seen := make(map[string]bool, len(f.Cards))
	for i, c := range f.Cards {
		switch {
		case c.CardID == "":
			return nil, fmt.Errorf("card #%d has no id", i+1)
		case seen[c.CardID]:
			return nil, fmt.Errorf("duplicate card id %s", c.CardID)
		case c.HP < 0 || c.ATK < 0 || c.DEF < 0:
			return nil, fmt.Errorf("card %s has negative stats", c.CardID)
		}
		seen[c.CardID] = true
	}
	return f.Cards, nil
}
