package invoices

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/rgastelum/supplyline-backend/pkg/errors"
)

// ColumnMap names the headers carrying each invoice field. Matching is
// case-insensitive on the trimmed header text.
type ColumnMap struct {
	ProductName string
	Quantity    string
	UnitPrice   string
	Amount      string
}

// DefaultColumnMap covers the header names suppliers commonly use.
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		ProductName: "product",
		Quantity:    "quantity",
		UnitPrice:   "unit price",
		Amount:      "amount",
	}
}

var headerSynonyms = map[string][]string{
	"product":    {"product", "name", "item", "description"},
	"quantity":   {"quantity", "qty", "count"},
	"unit price": {"unit price", "price", "unit_price", "unitprice"},
	"amount":     {"amount", "total", "subtotal", "line total"},
}

// ParseXLSX reads invoice rows from the first sheet of an xlsx upload.
func ParseXLSX(r io.Reader, columns ColumnMap) ([]InvoiceRow, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "open xlsx file")
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "xlsx file has no sheets")
	}
	records, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read xlsx rows")
	}
	return rowsFromRecords(records, columns)
}

// ParseCSV reads invoice rows from a csv upload.
func ParseCSV(r io.Reader, columns ColumnMap) ([]InvoiceRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv rows")
	}
	return rowsFromRecords(records, columns)
}

func rowsFromRecords(records [][]string, columns ColumnMap) ([]InvoiceRow, error) {
	if len(records) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice file has no data rows")
	}

	nameIdx := findColumn(records[0], columns.ProductName)
	qtyIdx := findColumn(records[0], columns.Quantity)
	priceIdx := findColumn(records[0], columns.UnitPrice)
	amountIdx := findColumn(records[0], columns.Amount)
	if nameIdx < 0 || qtyIdx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product and quantity columns are required")
	}

	rows := make([]InvoiceRow, 0, len(records)-1)
	for i, record := range records[1:] {
		name := cell(record, nameIdx)
		if name == "" {
			continue
		}
		qty, err := parseDecimal(cell(record, qtyIdx))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("row %d: invalid quantity %q", i+2, cell(record, qtyIdx)))
		}

		row := InvoiceRow{ProductName: name, Quantity: qty}
		if priceIdx >= 0 {
			if price, err := parseDecimal(cell(record, priceIdx)); err == nil {
				row.UnitPrice = price
			}
		}
		if amountIdx >= 0 {
			if amount, err := parseDecimal(cell(record, amountIdx)); err == nil {
				row.Amount = amount
			}
		}
		if row.Amount.IsZero() && !row.UnitPrice.IsZero() {
			row.Amount = row.Quantity.Mul(row.UnitPrice).Round(2)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice file has no data rows")
	}
	return rows, nil
}

func findColumn(header []string, wanted string) int {
	wanted = strings.ToLower(strings.TrimSpace(wanted))
	candidates := headerSynonyms[wanted]
	if len(candidates) == 0 {
		candidates = []string{wanted}
	}
	for idx, raw := range header {
		got := strings.ToLower(strings.TrimSpace(raw))
		for _, candidate := range candidates {
			if got == candidate {
				return idx
			}
		}
	}
	return -1
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	cleaned = strings.TrimPrefix(cleaned, "$")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty value")
	}
	return decimal.NewFromString(cleaned)
}
