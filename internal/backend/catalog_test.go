package backend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	places, err := ParseCatalog([]byte(`{"places":[{"id":"a","title":"A","image":{"src":"a.jpg","alt":"a"},"description":"d","lat":1,"lon":2}]}`))
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "a.jpg", places[0].Image.Src)
	assert.InDelta(t, 2.0, places[0].Lon, 1e-9)
}

func TestParseCatalog_Empty(t *testing.T) {
	places, err := ParseCatalog([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, places)
	assert.Empty(t, places)
}

func TestParseCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"syntax", `{"places":`, "parse catalog"},
		{"missing id", `{"places":[{"lat":1,"lon":1}]}`, "place id is required"},
		{"bad coordinate", `{"places":[{"id":"a","lat":1,"lon":200}]}`, "invalid coordinates"},
		{"duplicate", `{"places":[{"id":"a"},{"id":"a"}]}`, "duplicate id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"places":[{"id":"a","lat":0,"lon":0}]}`), 0o600))

	places, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, places, 1)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadCatalog_BundledFixture(t *testing.T) {
	places, err := LoadCatalog(filepath.Join("..", "..", "data", "places.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, places)
}
