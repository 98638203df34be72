package starmap

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"star-router/internal/logger"

	_ "modernc.org/sqlite"
)

// ErrUnsupportedSchema is returned when the dataset matches neither the
// current SolarSystems/Jumps layout nor the legacy mapSolarSystems layout.
var ErrUnsupportedSchema = fmt.Errorf("unsupported dataset schema: expected SolarSystems/Jumps or mapSolarSystems tables")

// schemaDef describes how to read one of the supported sqlite layouts.
type schemaDef struct {
	name           string
	systemsTable   string
	idColumn       string
	nameColumn     string
	jumpsTable     string
	jumpFromColumn string
	jumpToColumn   string

	constellationJoin bool
	regionJoin        bool
	securityColumn    string
	positionColumns   [3]string // empty x column means no positions
	temperatureColumn string    // filled in by column probing
}

var staticSchema = schemaDef{
	name:              "static_data",
	systemsTable:      "SolarSystems",
	idColumn:          "solarSystemId",
	nameColumn:        "name",
	jumpsTable:        "Jumps",
	jumpFromColumn:    "fromSystemId",
	jumpToColumn:      "toSystemId",
	constellationJoin: true,
	regionJoin:        true,
	securityColumn:    "security",
	positionColumns:   [3]string{"centerX", "centerY", "centerZ"},
}

var legacySchema = schemaDef{
	name:           "legacy_map",
	systemsTable:   "mapSolarSystems",
	idColumn:       "solarSystemID",
	nameColumn:     "solarSystemName",
	jumpsTable:     "mapSolarSystemJumps",
	jumpFromColumn: "fromSolarSystemID",
	jumpToColumn:   "toSolarSystemID",
}

// Load reads a dataset file into an immutable Starmap. The schema is detected
// at runtime so both the current and the legacy sqlite layouts are supported.
// The returned starmap carries the dataset's SHA-256 fingerprint and, when a
// sibling ".release" marker exists, its release tag.
func Load(path string) (*Starmap, error) {
	fingerprint, err := FileFingerprint(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer db.Close()

	schema, err := detectSchema(db)
	if err != nil {
		return nil, err
	}
	logger.Info("STARMAP", fmt.Sprintf("Detected %s schema in %s", schema.name, path))

	systems, err := loadSystems(db, schema)
	if err != nil {
		return nil, fmt.Errorf("load systems: %w", err)
	}
	adjacency, err := loadAdjacency(db, schema, systems)
	if err != nil {
		return nil, fmt.Errorf("load jumps: %w", err)
	}

	m := New(systems, adjacency)
	m.Fingerprint = fingerprint
	m.ReleaseTag = ReadReleaseTag(path)
	logger.Success("STARMAP", fmt.Sprintf("Loaded %d systems", len(systems)))
	return m, nil
}

// FileFingerprint computes the SHA-256 checksum of a dataset file using
// streaming reads.
func FileFingerprint(path string) ([32]byte, error) {
	var sum [32]byte
	f, err := os.Open(path)
	if err != nil {
		return sum, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum, fmt.Errorf("hash dataset: %w", err)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// ReadReleaseTag reads the "resolved=" line from the dataset's ".release"
// marker file, if one exists next to it. Missing or malformed markers yield
// an empty tag rather than an error.
func ReadReleaseTag(datasetPath string) string {
	content, err := os.ReadFile(datasetPath + ".release")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(content), "\n") {
		if tag, ok := strings.CutPrefix(line, "resolved="); ok {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func detectSchema(db *sql.DB) (schemaDef, error) {
	if hasTable(db, staticSchema.systemsTable) && hasTable(db, staticSchema.jumpsTable) {
		schema := staticSchema
		// Temperature is optional even in the current layout.
		if hasColumn(db, schema.systemsTable, "minExternalTemp") {
			schema.temperatureColumn = "minExternalTemp"
		}
		return schema, nil
	}
	if hasTable(db, legacySchema.systemsTable) && hasTable(db, legacySchema.jumpsTable) {
		return legacySchema, nil
	}
	return schemaDef{}, ErrUnsupportedSchema
}

func hasTable(db *sql.DB, name string) bool {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&count)
	return err == nil && count > 0
}

func hasColumn(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dflt       sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &primaryKey); err != nil {
			return false
		}
		if name == column {
			return true
		}
	}
	return false
}

func loadSystems(db *sql.DB, schema schemaDef) (map[SystemID]*System, error) {
	if schema.positionColumns[0] == "" {
		return loadLegacySystems(db, schema)
	}
	return loadStaticSystems(db, schema)
}

func loadStaticSystems(db *sql.DB, schema schemaDef) (map[SystemID]*System, error) {
	selects := []string{
		fmt.Sprintf("s.%s", schema.idColumn),
		fmt.Sprintf("s.%s", schema.nameColumn),
	}
	joins := ""

	if schema.constellationJoin {
		selects = append(selects, "c.constellationName")
		joins += " LEFT JOIN Constellations c ON c.constellationID = s.constellationID"
	} else {
		selects = append(selects, "NULL")
	}
	if schema.regionJoin {
		selects = append(selects, "r.regionName")
		joins += " LEFT JOIN Regions r ON r.regionID = s.regionID"
	} else {
		selects = append(selects, "NULL")
	}
	if schema.securityColumn != "" {
		selects = append(selects, "s."+schema.securityColumn)
	} else {
		selects = append(selects, "NULL")
	}
	selects = append(selects,
		"s."+schema.positionColumns[0],
		"s."+schema.positionColumns[1],
		"s."+schema.positionColumns[2],
	)
	if schema.temperatureColumn != "" {
		selects = append(selects, "s."+schema.temperatureColumn)
	} else {
		selects = append(selects, "NULL")
	}

	query := fmt.Sprintf("SELECT %s FROM %s s%s",
		strings.Join(selects, ", "), schema.systemsTable, joins)

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	systems := make(map[SystemID]*System)
	for rows.Next() {
		var (
			id                         int64
			name                       string
			constellation, region      sql.NullString
			security, x, y, z, minTemp sql.NullFloat64
		)
		if err := rows.Scan(&id, &name, &constellation, &region, &security, &x, &y, &z, &minTemp); err != nil {
			return nil, err
		}

		sys := &System{ID: SystemID(id), Name: name}
		if constellation.Valid {
			sys.Metadata.ConstellationName = constellation.String
		}
		if region.Valid {
			sys.Metadata.RegionName = region.String
		}
		if security.Valid {
			v := security.Float64
			sys.Metadata.SecurityStatus = &v
		}
		if x.Valid && y.Valid && z.Valid {
			sys.Position = &Position{X: x.Float64, Y: y.Float64, Z: z.Float64}
		}
		if minTemp.Valid {
			v := minTemp.Float64
			sys.Metadata.MinExternalTemp = &v
		}
		systems[sys.ID] = sys
	}
	return systems, rows.Err()
}

func loadLegacySystems(db *sql.DB, schema schemaDef) (map[SystemID]*System, error) {
	query := fmt.Sprintf("SELECT %s, %s FROM %s",
		schema.idColumn, schema.nameColumn, schema.systemsTable)

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	systems := make(map[SystemID]*System)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		systems[SystemID(id)] = &System{ID: SystemID(id), Name: name}
	}
	return systems, rows.Err()
}

// loadAdjacency reads the jump relation and drops edges whose endpoints do
// not exist in the dataset, so corrupt rows never reach the in-memory graph.
func loadAdjacency(db *sql.DB, schema schemaDef, systems map[SystemID]*System) (map[SystemID][]SystemID, error) {
	query := fmt.Sprintf("SELECT %s, %s FROM %s",
		schema.jumpFromColumn, schema.jumpToColumn, schema.jumpsTable)

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	adjacency := make(map[SystemID][]SystemID)
	dropped := 0
	for rows.Next() {
		var from, to int64
		if err := rows.Scan(&from, &to); err != nil {
			return nil, err
		}
		fromID, toID := SystemID(from), SystemID(to)
		if _, ok := systems[fromID]; !ok {
			dropped++
			continue
		}
		if _, ok := systems[toID]; !ok {
			dropped++
			continue
		}
		adjacency[fromID] = append(adjacency[fromID], toID)
	}
	if dropped > 0 {
		logger.Warn("STARMAP", fmt.Sprintf("Dropped %d jump rows with unknown endpoints", dropped))
	}
	return adjacency, rows.Err()
}
