package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/xuri/excelize/v2"
)

const alertSheet = "Alerts"

var alertExportHeader = []string{
	"Alert ID",
	"Channel ID",
	"Channel",
	"Latitude",
	"Longitude",
	"Entry ID",
	"Priority",
	"Status",
	"Violated Fields",
	"Description",
	"Date",
}

var alertColumnWidths = []float64{10, 12, 24, 12, 12, 10, 10, 14, 24, 60, 22}

func alertRecord(a dto.AlertListItem) []string {
	return []string{
		strconv.FormatUint(uint64(a.AlertID), 10),
		strconv.FormatUint(uint64(a.ChannelID), 10),
		a.ChannelName,
		strconv.FormatFloat(a.Location[0], 'f', -1, 64),
		strconv.FormatFloat(a.Location[1], 'f', -1, 64),
		strconv.FormatInt(a.EntryID, 10),
		string(a.Priority),
		string(a.Status),
		strings.Join(a.FieldViolations, ", "),
		a.AlertDescription,
		a.Date.UTC().Format(time.RFC3339),
	}
}

// AlertsCSV renders alerts as RFC 4180 CSV with a header row.
func AlertsCSV(alerts []dto.AlertListItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(alertExportHeader); err != nil {
		return nil, err
	}
	for _, a := range alerts {
		if err := w.Write(alertRecord(a)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// AlertsXLSX renders alerts as a single-sheet workbook.
func AlertsXLSX(alerts []dto.AlertListItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(alertSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range alertExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(alertSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(alertSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(alertSheet, name, name, alertColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, a := range alerts {
		row := []interface{}{
			a.AlertID,
			a.ChannelID,
			a.ChannelName,
			a.Location[0],
			a.Location[1],
			a.EntryID,
			string(a.Priority),
			string(a.Status),
			strings.Join(a.FieldViolations, ", "),
			a.AlertDescription,
			a.Date.UTC().Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(alertSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
