package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/place-picker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRows(t *testing.T, in string) []csvRow {
	t.Helper()
	rows, err := parseCSV(strings.NewReader(in))
	require.NoError(t, err)
	return rows
}

const sourceCSV = "id,title,image_src,image_alt,description,lat,lon\n" +
	"p1,Forest,forest.jpg,A forest,Quiet,44.5588,-80.344\n"

var forest = domain.Place{
	ID: "p1", Title: "Forest",
	Image:       domain.Image{Src: "forest.jpg", Alt: "A forest"},
	Description: "Quiet", Lat: 44.5588, Lon: -80.344,
}

func TestValidateSourceParity(t *testing.T) {
	p := validateSourceParity(testRows(t, sourceCSV), []domain.Place{forest})
	assert.True(t, p.passed(), p.errors)

	changed := forest
	changed.Title = "Jungle"
	changed.Lat = 10
	p = validateSourceParity(testRows(t, sourceCSV), []domain.Place{changed})
	require.Len(t, p.errors, 2)
	assert.Contains(t, p.errors[0], `title: CSV="Forest" JSON="Jungle"`)
	assert.Contains(t, p.errors[1], "lat")

	p = validateSourceParity(testRows(t, sourceCSV), nil)
	assert.Len(t, p.errors, 2, "count mismatch plus missing id")
}

func TestValidateCatalogSchema(t *testing.T) {
	assert.True(t, validateCatalogSchema([]domain.Place{forest}).passed())

	bad := []domain.Place{
		forest,
		forest,
		{ID: "x", Lat: 95},
		{ID: "y", Title: "Y", Image: domain.Image{Src: "y.jpg"}},
	}
	p := validateCatalogSchema(bad)
	assert.Len(t, p.errors, 4)
}

func TestValidateRemoteParity(t *testing.T) {
	assert.True(t, validateRemoteParity([]domain.Place{forest}, []domain.Place{forest}).passed())

	other := forest
	other.Description = "Loud"
	assert.False(t, validateRemoteParity([]domain.Place{forest}, []domain.Place{other}).passed())
	assert.False(t, validateRemoteParity([]domain.Place{forest}, nil).passed())
}

func TestBundledFixturesAgree(t *testing.T) {
	dir := filepath.Join("..", "..", "data")
	code := run(filepath.Join(dir, "places.csv"), filepath.Join(dir, "places.json"), "", 0)
	assert.Equal(t, 0, code)
}
