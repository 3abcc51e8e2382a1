package catalog

import (
	_ "embed"
	"os"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/shelfrec/pkg/models"
)

//go:embed demo.json
var demoSeed []byte

// Seed is the full contents of the catalog store.
type Seed struct {
	Users   []*models.User   `json:"users"`
	Items   []models.Item    `json:"items"`
	Ratings []*models.Rating `json:"ratings"`
}

// LoadSeed reads a seed file, or the built-in demo catalog when path is empty.
func LoadSeed(path string) (*Seed, error) {
	data := demoSeed
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	seed := &Seed{}
	if err := json.Unmarshal(data, seed); err != nil {
		return nil, errors.Wrap(err, "invalid catalog seed")
	}
	return seed, nil
}
