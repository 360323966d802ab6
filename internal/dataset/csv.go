// Package dataset reads and writes the local meteorite landings CSV.
package dataset

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/orbital-group/meteor-cli/internal/model"
)

// ErrMissing is returned when the input dataset file does not exist.
// The caller surfaces it to the operator and aborts the run.
var ErrMissing = eris.New("dataset: input file not found")

// header is the canonical column order written on save.
var header = []string{"name", "id", "recclass", "mass (g)", "fall", "year", "reclat", "reclong"}

// columns maps header cells (lowercased, trimmed) to record fields.
// Load is header-driven, so column order in the input file does not matter.
type columns struct {
	name, id, recclass, mass, fall, year, lat, long int
}

func resolveColumns(head []string) columns {
	c := columns{name: -1, id: -1, recclass: -1, mass: -1, fall: -1, year: -1, lat: -1, long: -1}
	for i, h := range head {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name":
			c.name = i
		case "id":
			c.id = i
		case "recclass":
			c.recclass = i
		case "mass (g)", "mass":
			c.mass = i
		case "fall":
			c.fall = i
		case "year":
			c.year = i
		case "reclat":
			c.lat = i
		case "reclong":
			c.long = i
		}
	}
	return c
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Load reads the dataset CSV at path. A missing file yields ErrMissing.
// Rows without a name are dropped; unparsable ids are logged and treated
// as unresolved rather than failing the whole load.
func Load(ctx context.Context, path string) ([]model.CatalogRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrMissing, "%s", path)
		}
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, f, CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var cols columns
	colsResolved := false
	var records []model.CatalogRecord
	dropped := 0

	for row := range rowCh {
		if !colsResolved {
			select {
			case head := <-headerCh:
				cols = resolveColumns(head)
				colsResolved = true
			default:
				return nil, eris.Errorf("dataset: %s has no header row", path)
			}
		}

		name := field(row, cols.name)
		if name == "" {
			dropped++
			continue
		}

		id, err := model.ParseExternalID(field(row, cols.id))
		if err != nil {
			zap.L().Warn("dataset: bad id column, treating as unresolved",
				zap.String("name", name),
				zap.Error(err),
			)
			id = model.ExternalID{}
		}

		records = append(records, model.CatalogRecord{
			Name:     name,
			ID:       id,
			Recclass: field(row, cols.recclass),
			Mass:     field(row, cols.mass),
			Fall:     model.ParseFall(field(row, cols.fall)),
			Year:     field(row, cols.year),
			Lat:      parseCoord(field(row, cols.lat)),
			Long:     parseCoord(field(row, cols.long)),
		})
	}

	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}

	if dropped > 0 {
		zap.L().Warn("dataset: dropped rows without a name",
			zap.String("path", path),
			zap.Int("dropped", dropped),
		)
	}

	return records, nil
}

// Save rewrites the dataset CSV at path. The write is synchronous and
// whole-file; a crash mid-write can leave a truncated file.
func Save(path string, records []model.CatalogRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "dataset: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "dataset: write header")
	}

	for i := range records {
		r := &records[i]
		row := []string{
			r.Name,
			r.ID.String(),
			r.Recclass,
			r.Mass,
			string(r.Fall),
			r.Year,
			formatCoord(r.Lat),
			formatCoord(r.Long),
		}
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "dataset: write row %d", i)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "dataset: flush %s", path)
	}
	return nil
}

func parseCoord(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
