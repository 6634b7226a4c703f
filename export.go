package fastlap

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{"Platz", "Fahrer", "Team", "Rundenzeit", "Abstand"}

// Exporter renders an event's leaderboard in the formats the admin screens
// offer. Every format reads the ranked list from LapEntryManager.List so the
// exported ranks and gaps always match the public leaderboard.
type Exporter struct {
	entryManager *LapEntryManager
}

func NewExporter(entryManager *LapEntryManager) *Exporter {
	return &Exporter{entryManager: entryManager}
}

func (e *Exporter) WriteCSV(w io.Writer, eventID string) error {
	entries, err := e.entryManager.List(eventID)

	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return err
	}

	for _, entry := range entries {
		err := writer.Write([]string{
			strconv.Itoa(entry.Rank),
			entry.DriverName,
			entry.Team,
			entry.DisplayTime,
			entry.Gap,
		})

		if err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}

const xlsxSheetName = "Ergebnis"

func (e *Exporter) WriteXLSX(w io.Writer, eventID string) error {
	entries, err := e.entryManager.List(eventID)

	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheetName); err != nil {
		return err
	}

	for col, heading := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)

		if err != nil {
			return err
		}

		if err := f.SetCellValue(xlsxSheetName, cell, heading); err != nil {
			return err
		}
	}

	for row, entry := range entries {
		values := []interface{}{entry.Rank, entry.DriverName, entry.Team, entry.DisplayTime, entry.Gap}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)

			if err != nil {
				return err
			}

			if err := f.SetCellValue(xlsxSheetName, cell, value); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// PDFExport is the payload the front-end turns into a PDF client-side.
type PDFExport struct {
	Entries    []*RankedEntry `json:"entries"`
	ExportedAt time.Time      `json:"exported_at"`
}

func (e *Exporter) PDFData(eventID string) (*PDFExport, error) {
	entries, err := e.entryManager.List(eventID)

	if err != nil {
		return nil, err
	}

	return &PDFExport{Entries: entries, ExportedAt: time.Now()}, nil
}
