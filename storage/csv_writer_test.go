package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buscacasas/models"
)

func TestCSVWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "properties.csv")

	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	p := testProperty(t, "MLU-1", "Montevideo", 120500)
	bedrooms := 2
	p.Bedrooms = &bedrooms
	p.Images = []string{"https://img/1.jpg", "https://img/2.jpg"}

	require.NoError(t, w.Write([]*models.Property{p}))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one data row")

	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "ml_MLU-1", rows[1][0])
	assert.Equal(t, "mercadolibre", rows[1][1])
	assert.Equal(t, "120500.00", rows[1][7])
	assert.Equal(t, "2", rows[1][9])
	assert.Equal(t, "", rows[1][10], "absent bathrooms stays empty")
	assert.Equal(t, "https://img/1.jpg https://img/2.jpg", rows[1][12])
}
