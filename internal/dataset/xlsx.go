package dataset

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/triage-cli/internal/model"
)

// ScoresXLSXFile is the workbook name used by the xlsx export format.
const ScoresXLSXFile = "priority_scores.xlsx"

// WriteScoresXLSX writes the scored alerts to an xlsx workbook in dir,
// preserving row order. Mirrors the CSV layout for analysts who live in
// spreadsheets.
func WriteScoresXLSX(dir string, scored []model.ScoredAlert) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Priority Scores")
	if err != nil {
		return eris.Wrap(err, "dataset: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, h := range scoreHeader {
		header.AddCell().Value = h
	}

	for _, s := range scored {
		row := sheet.AddRow()
		row.AddCell().Value = s.AlertID
		row.AddCell().Value = s.CustomerID
		row.AddCell().Value = string(s.AlertType)
		row.AddCell().SetFloatWithFormat(s.PriorityScore, "0.000000")
	}

	path := filepath.Join(dir, ScoresXLSXFile)
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "dataset: save %s", path)
	}
	return nil
}
