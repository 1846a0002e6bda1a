// Package export renders a lead collection to tabular formats.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/Heetbisht/bagasse-scout/internal/model"
)

var header = []string{"score", "company", "type", "location", "email", "phone", "website", "market", "reasoning"}

func leadRow(l model.Lead) []string {
	score := ""
	if l.Score != nil {
		score = strconv.Itoa(*l.Score)
	}
	return []string{
		score,
		l.CompanyName,
		l.BusinessType,
		l.Location,
		l.ContactEmail,
		l.ContactPhone,
		l.URL,
		l.Market,
		l.Reasoning,
	}
}

// WriteCSV writes the leads as CSV, preserving their result order.
func WriteCSV(w io.Writer, leads []model.Lead) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, l := range leads {
		if err := cw.Write(leadRow(l)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteXLSX writes the leads as a single-sheet workbook at path.
func WriteXLSX(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	hr := sheet.AddRow()
	for _, h := range header {
		hr.AddCell().Value = h
	}
	for _, l := range leads {
		row := sheet.AddRow()
		for _, v := range leadRow(l) {
			row.AddCell().Value = v
		}
	}

	return eris.Wrap(f.Save(path), "export: save xlsx")
}
