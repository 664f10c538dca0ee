package handover

import (
	"fmt"
	"strings"

	"github.com/mfreeborn/patient-list-generator/internal/domain/patient"
	"github.com/mfreeborn/patient-list-generator/internal/domain/ward"
)

// ParseExisting reads the patients off a previous handover list. Column
// header rows and full-width rows (ward headers, banners) are skipped. A
// patient row whose identifier cannot be read fails the whole parse with a
// *patient.ParseError in the chain.
func ParseExisting(rows [][]string, home ward.Ward) (*patient.Roster, error) {
	roster := patient.NewRoster(home)
	for i, row := range rows {
		var cells [NumColumns]string
		for col := 0; col < len(row) && col < NumColumns; col++ {
			cells[col] = strings.TrimSpace(row[col])
		}

		if strings.ToLower(cells[ColBed]) == "bed" {
			continue
		}
		// a merged cell repeats its text across the row
		if cells[ColBed] == cells[ColDetails] {
			continue
		}

		id, err := patient.ExtractIdentifier(cells[ColDetails])
		if err != nil {
			return nil, fmt.Errorf("existing list row %d: %w", i+1, err)
		}
		roster.Insert(patient.FromExistingRow(id, patient.ClinicalNotes{
			ReasonForAdmission: cells[ColReason],
			Jobs:               cells[ColJobs],
			EDD:                cells[ColEDD],
			DS:                 cells[ColDS],
			TTA:                cells[ColTTA],
			Bloods:             cells[ColBloods],
		}))
	}
	return roster, nil
}
