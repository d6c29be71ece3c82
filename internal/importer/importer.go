// Package importer streams a county voter file (CSV) into the registry,
// deriving the normalized address and trigram fields each lookup path
// depends on. Imports never run concurrently with search traffic; the
// operator swaps traffic away before a full re-import.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/petition-qc/app/models"
	"github.com/petition-qc/internal/normalizer"
	"github.com/petition-qc/internal/registry"
	"github.com/petition-qc/internal/trigram"
)

// chunkSize rows per bulk insert.
const chunkSize = 1000

// dateLayouts accepted for the birth and registration date columns.
var dateLayouts = []string{"2006-01-02", "01/02/2006"}

// Importer reads voter-file CSVs into the registry store.
type Importer struct {
	store  *registry.Store
	logger *zap.Logger
}

// New builds an Importer over the registry store.
func New(store *registry.Store, logger *zap.Logger) *Importer {
	return &Importer{store: store, logger: logger}
}

// Run imports the CSV at path, returning the row count. With replace set,
// the registry is truncated first (full re-import). Voting-history
// columns and anything else outside the known header set are ignored.
func (im *Importer) Run(ctx context.Context, path string, replace bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening voter file: %w", err)
	}
	defer f.Close()

	if replace {
		if err := im.store.DeleteAll(ctx); err != nil {
			return 0, err
		}
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("reading voter file header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["RESIDENTIAL_ADDRESS1"]; !ok {
		return 0, fmt.Errorf("voter file missing RESIDENTIAL_ADDRESS1 column")
	}

	started := time.Now()
	chunk := make([]interface{}, 0, chunkSize)
	total := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("reading voter file row %d: %w", total+1, err)
		}

		voter := rowToVoter(cols, record)
		if voter.ResidentialAddress1 == "" {
			continue
		}
		chunk = append(chunk, voter)
		total++

		if len(chunk) == chunkSize {
			if err := im.flush(ctx, chunk, total); err != nil {
				return total, err
			}
			chunk = chunk[:0]
		}
	}
	if err := im.flush(ctx, chunk, total); err != nil {
		return total, err
	}

	if err := im.store.EnsureIndexes(ctx); err != nil {
		return total, err
	}

	im.logger.Info("voter import complete",
		zap.String("path", path),
		zap.Int("rows", total),
		zap.Duration("took", time.Since(started)))
	return total, nil
}

func (im *Importer) flush(ctx context.Context, chunk []interface{}, total int) error {
	if len(chunk) == 0 {
		return nil
	}
	if err := im.store.BulkInsert(ctx, chunk); err != nil {
		return err
	}
	im.logger.Debug("import progress", zap.Int("rows", total))
	return nil
}

// rowToVoter maps one CSV record onto a Voter, deriving the search fields.
func rowToVoter(cols map[string]int, record []string) *models.Voter {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	v := &models.Voter{
		SOSVoterID:          get("SOS_VOTERID"),
		CountyID:            get("COUNTY_ID"),
		FirstName:           get("FIRST_NAME"),
		MiddleName:          get("MIDDLE_NAME"),
		LastName:            get("LAST_NAME"),
		ResidentialAddress1: get("RESIDENTIAL_ADDRESS1"),
		ResidentialAddress2: get("RESIDENTIAL_ADDRESS2"),
		ResidentialCity:     get("RESIDENTIAL_CITY"),
		ResidentialState:    get("RESIDENTIAL_STATE"),
		ResidentialZip:      get("RESIDENTIAL_ZIP"),
		RegisteredCity:      get("CITY"),
		PrecinctCode:        get("PRECINCT_CODE"),
		PrecinctName:        get("PRECINCT_NAME"),
		Ward:                get("WARD"),
	}
	if v.ResidentialState == "" {
		v.ResidentialState = "OH"
	}
	v.DateOfBirth = parseDate(get("DATE_OF_BIRTH"))
	v.RegistrationDate = parseDate(get("REGISTRATION_DATE"))

	// The derived fields must come from the exact normalizer the query
	// path uses, or prefix and similarity comparisons drift.
	v.AddressNormalized = normalizer.Normalize(v.ResidentialAddress1)
	v.AddressTrigrams = trigram.Extract(v.AddressNormalized)
	v.LastNameTrigrams = trigram.Extract(normalizer.NormalizeName(v.LastName))
	return v
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
