package spoilage

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

//go:embed shelf_life.yaml
var defaultShelfLife []byte

type profileKey struct {
	crop    models.CropType
	storage models.StorageType
}

// ShelfLifeTable maps a crop/storage pair to its base hours until critical loss.
type ShelfLifeTable struct {
	hours map[profileKey]float64
}

type shelfLifeFile struct {
	Profiles []struct {
		Crop      string  `yaml:"crop"`
		Storage   string  `yaml:"storage"`
		BaseHours float64 `yaml:"base_hours"`
	} `yaml:"profiles"`
}

// DefaultShelfLifeTable returns the table bundled with the binary.
func DefaultShelfLifeTable() (ShelfLifeTable, error) {
	return ParseShelfLifeTable(defaultShelfLife)
}

// LoadShelfLifeTable reads a YAML table from path, or the bundled one when path is empty.
func LoadShelfLifeTable(path string) (ShelfLifeTable, error) {
	if path == "" {
		return DefaultShelfLifeTable()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return ShelfLifeTable{}, fmt.Errorf("read shelf-life table %s: %w", path, err)
	}
	return ParseShelfLifeTable(raw)
}

// ParseShelfLifeTable decodes a YAML shelf-life table. Duplicate pairs and
// non-positive base hours are rejected.
func ParseShelfLifeTable(raw []byte) (ShelfLifeTable, error) {
	var file shelfLifeFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return ShelfLifeTable{}, fmt.Errorf("decode shelf-life table: %w", err)
	}
	if len(file.Profiles) == 0 {
		return ShelfLifeTable{}, errors.New("shelf-life table has no profiles")
	}

	table := ShelfLifeTable{hours: make(map[profileKey]float64, len(file.Profiles))}
	for i, p := range file.Profiles {
		key := newProfileKey(models.CropType(p.Crop), models.StorageType(p.Storage))
		if key.crop == "" || key.storage == "" {
			return ShelfLifeTable{}, fmt.Errorf("profile %d: crop and storage are required", i)
		}
		if p.BaseHours <= 0 {
			return ShelfLifeTable{}, fmt.Errorf("profile %s/%s: base_hours must be positive", key.crop, key.storage)
		}
		if _, dup := table.hours[key]; dup {
			return ShelfLifeTable{}, fmt.Errorf("profile %s/%s: duplicate entry", key.crop, key.storage)
		}
		table.hours[key] = p.BaseHours
	}

	return table, nil
}

// BaseHours returns the base shelf life for the pair and whether it is modeled.
func (t ShelfLifeTable) BaseHours(crop models.CropType, storage models.StorageType) (float64, bool) {
	hours, ok := t.hours[newProfileKey(crop, storage)]
	return hours, ok
}

// Len reports the number of modeled profiles.
func (t ShelfLifeTable) Len() int {
	return len(t.hours)
}

func newProfileKey(crop models.CropType, storage models.StorageType) profileKey {
	return profileKey{
		crop:    models.CropType(strings.ToLower(strings.TrimSpace(string(crop)))),
		storage: models.StorageType(strings.ToLower(strings.TrimSpace(string(storage)))),
	}
}
