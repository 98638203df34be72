package ship

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Catalog is a set of ship definitions loaded from a CSV file. Lookup is
// case-insensitive on the ship name.
type Catalog struct {
	ships map[string]*Attributes
}

// headerSynonyms maps canonical column names to the normalized header
// spellings seen in the wild.
var headerSynonyms = map[string][]string{
	"name":           {"name", "shipname", "ship_name", "ship"},
	"base_mass_kg":   {"base_mass_kg", "basemass", "mass_kg", "mass"},
	"specific_heat":  {"specific_heat", "specificheat"},
	"fuel_capacity":  {"fuel_capacity", "fuelcapacity", "fuel"},
	"cargo_capacity": {"cargo_capacity", "cargocapacity", "capacity_m3", "cargo"},
}

func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LoadCatalog reads a ship catalog CSV from a file.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ship catalog: %w", err)
	}
	defer f.Close()
	return ReadCatalog(f)
}

// ReadCatalog reads a ship catalog CSV from a reader. Header columns are
// matched by normalized name with a few synonyms, so minor spelling drift in
// exported data does not break loading.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read ship catalog header: %w", err)
	}
	columns := make(map[string]int)
	for i, raw := range header {
		norm := normalizeHeader(raw)
		for canonical, spellings := range headerSynonyms {
			for _, s := range spellings {
				if norm == s {
					if _, dup := columns[canonical]; !dup {
						columns[canonical] = i
					}
				}
			}
		}
	}
	for _, required := range []string{"name", "base_mass_kg", "specific_heat", "fuel_capacity", "cargo_capacity"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("ship catalog missing column %q", required)
		}
	}

	catalog := &Catalog{ships: make(map[string]*Attributes)}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ship catalog line %d: %w", line, err)
		}
		attrs, err := parseShipRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("ship catalog line %d: %w", line, err)
		}
		if err := attrs.Validate(); err != nil {
			return nil, fmt.Errorf("ship catalog line %d: %w", line, err)
		}
		catalog.ships[strings.ToLower(attrs.Name)] = attrs
	}
	return catalog, nil
}

func parseShipRecord(record []string, columns map[string]int) (*Attributes, error) {
	field := func(name string) (string, error) {
		i := columns[name]
		if i >= len(record) {
			return "", fmt.Errorf("missing value for %q", name)
		}
		return strings.TrimSpace(record[i]), nil
	}
	number := func(name string) (float64, error) {
		s, err := field(name)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
		}
		return v, nil
	}

	name, err := field("name")
	if err != nil {
		return nil, err
	}
	attrs := &Attributes{Name: name}
	if attrs.BaseMassKg, err = number("base_mass_kg"); err != nil {
		return nil, err
	}
	if attrs.SpecificHeat, err = number("specific_heat"); err != nil {
		return nil, err
	}
	if attrs.FuelCapacity, err = number("fuel_capacity"); err != nil {
		return nil, err
	}
	if attrs.CargoCapacity, err = number("cargo_capacity"); err != nil {
		return nil, err
	}
	return attrs, nil
}

// Get returns a ship by name, case-insensitively.
func (c *Catalog) Get(name string) (*Attributes, bool) {
	attrs, ok := c.ships[strings.ToLower(strings.TrimSpace(name))]
	return attrs, ok
}

// Names returns the ship names in the catalog.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.ships))
	for _, attrs := range c.ships {
		names = append(names, attrs.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of ships in the catalog.
func (c *Catalog) Len() int {
	return len(c.ships)
}
