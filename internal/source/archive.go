package source

import (
	"archive/tar"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ArchiveSource reads Synthea export archives. Every *.tar.gz file in Dir
// is one partition; the conditions table is the conditions.csv member,
// either at the archive root or inside a csv/ folder depending on the
// Synthea version.
type ArchiveSource struct {
	Dir string
}

func NewArchiveSource(dir string) *ArchiveSource {
	return &ArchiveSource{Dir: dir}
}

// Partitions lists the archive paths under Dir in lexical order.
func (s *ArchiveSource) Partitions() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, "*.tar.gz"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.Dir, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Read extracts all condition rows from one archive.
func (s *ArchiveSource) Read(partition string) ([]Row, error) {
	f, err := os.Open(partition)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPartitionUnavailable, partition, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPartitionUnavailable, partition, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrPartitionUnavailable, partition, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if strings.EqualFold(path.Base(hdr.Name), "conditions.csv") {
			log.Debug().Str("archive", filepath.Base(partition)).Str("member", hdr.Name).Msg("Found conditions table")
			return readConditions(tr)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoConditions, partition)
}

// readConditions parses a Synthea conditions.csv stream. Required columns
// are PATIENT, CODE and START; rows missing any of the three cells are
// dropped, malformed lines are skipped.
func readConditions(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable header: %v", ErrMissingFields, err)
	}

	patientIdx, codeIdx, startIdx := -1, -1, -1
	for i, name := range header {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "PATIENT":
			patientIdx = i
		case "CODE":
			codeIdx = i
		case "START":
			startIdx = i
		}
	}
	if patientIdx < 0 || codeIdx < 0 || startIdx < 0 {
		return nil, fmt.Errorf("%w: need PATIENT, CODE and START, got %v", ErrMissingFields, header)
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Bad line, keep the rest of the table.
			continue
		}
		need := patientIdx
		if codeIdx > need {
			need = codeIdx
		}
		if startIdx > need {
			need = startIdx
		}
		if len(record) <= need {
			continue
		}
		rows = append(rows, Row{
			PatientID: record[patientIdx],
			Code:      record[codeIdx],
			StartDate: record[startIdx],
		})
	}

	return rows, nil
}
