package backend

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/place-picker/internal/domain"
)

// catalogFile is the on-disk catalog format, the same body GET /places returns.
type catalogFile struct {
	Places []domain.Place `json:"places"`
}

// LoadCatalog reads and validates a catalog file. IDs must be unique.
func LoadCatalog(path string) ([]domain.Place, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog JSON.
func ParseCatalog(data []byte) ([]domain.Place, error) {
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Places))
	for i, p := range f.Places {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog place %d: %w", i, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("catalog place %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	if f.Places == nil {
		f.Places = []domain.Place{}
	}
	return f.Places, nil
}
