package spoilage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

func TestDefaultShelfLifeTable(t *testing.T) {
	table, err := DefaultShelfLifeTable()
	require.NoError(t, err)
	assert.Equal(t, 20, table.Len())

	hours, ok := table.BaseHours(models.CropPotato, models.StorageJuteBagStack)
	require.True(t, ok)
	assert.Equal(t, 96.0, hours)

	hours, ok = table.BaseHours(" Potato ", "HERMETIC_BAG")
	require.True(t, ok)
	assert.Equal(t, 360.0, hours)
}

func TestParseShelfLifeTable_Rejects(t *testing.T) {
	tests := map[string]string{
		"empty":      "profiles: []",
		"duplicate":  "profiles:\n  - {crop: potato, storage: silo, base_hours: 1}\n  - {crop: Potato, storage: silo, base_hours: 2}",
		"zero hours": "profiles:\n  - {crop: potato, storage: silo, base_hours: 0}",
		"no crop":    "profiles:\n  - {storage: silo, base_hours: 10}",
		"bad yaml":   "profiles: [",
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseShelfLifeTable([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadShelfLifeTable_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - {crop: jute, storage: open_area, base_hours: 12}\n"), 0o600))

	table, err := LoadShelfLifeTable(path)
	require.NoError(t, err)
	hours, ok := table.BaseHours("jute", models.StorageOpenArea)
	assert.True(t, ok)
	assert.Equal(t, 12.0, hours)

	_, err = LoadShelfLifeTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
