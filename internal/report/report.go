// Package report выгрузки в Excel и разбор загруженных листов.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Spok95/erp-backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Колонки листа остатков. counted пустая: её заполняют при инвентаризации
// и загружают файл обратно.
var stockHeader = []any{
	"warehouse_id",
	"product_id",
	"product_code",
	"product_name",
	"quantity",
	"counted",
}

var ErrBadSheet = errors.New("report: unexpected sheet format")

func writeRows(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return nil
}

func finish(f *excelize.File) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StockSheet остатки склада.
func StockSheet(balances []inventory.Balance) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	rows := make([][]any, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, []any{
			b.WarehouseID,
			b.ProductID,
			b.ProductCode,
			b.ProductName,
			b.Quantity.InexactFloat64(),
			nil,
		})
	}
	if err := writeRows(f, sheet, stockHeader, rows); err != nil {
		return nil, err
	}
	return finish(f)
}

// ItemCardSheet карточка товара: начальный остаток, проводки, нарастающий итог.
func ItemCardSheet(card inventory.Card) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []any{"date", "number", "in", "out", "balance"}
	rows := make([][]any, 0, len(card.Lines)+2)
	rows = append(rows, []any{"", "opening", nil, nil, card.Opening.InexactFloat64()})
	for _, l := range card.Lines {
		var in, out any
		if l.Direction == inventory.DirIn {
			in = l.Quantity.InexactFloat64()
		} else {
			out = l.Quantity.InexactFloat64()
		}
		rows = append(rows, []any{
			l.Date.Format("2006-01-02"),
			l.Number,
			in,
			out,
			l.Balance.InexactFloat64(),
		})
	}
	rows = append(rows, []any{"", "closing", nil, nil, card.Closing.InexactFloat64()})
	if err := writeRows(f, sheet, header, rows); err != nil {
		return nil, err
	}
	return finish(f)
}

type RowError struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: invalid %s %q", e.Row, e.Column, e.Value)
}

// ParseCountSheet читает лист инвентаризации. Колонки ищем по заголовку,
// пустой counted означает «не считали» и пропускается. Кривые строки
// не прерывают разбор, а попадают в список ошибок.
func ParseCountSheet(r io.Reader) ([]inventory.CountLine, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 1 {
		return nil, nil, fmt.Errorf("%w: empty sheet", ErrBadSheet)
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, need := range []string{"warehouse_id", "product_id", "counted"} {
		if _, ok := col[need]; !ok {
			return nil, nil, fmt.Errorf("%w: missing column %s", ErrBadSheet, need)
		}
	}

	cell := func(row []string, name string) string {
		i := col[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		out  []inventory.CountLine
		errs []RowError
	)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1
		counted := cell(row, "counted")
		if counted == "" {
			continue
		}

		whStr, prStr := cell(row, "warehouse_id"), cell(row, "product_id")
		wh, err := strconv.ParseInt(whStr, 10, 64)
		if err != nil || wh <= 0 {
			errs = append(errs, RowError{Row: rowNum, Column: "warehouse_id", Value: whStr})
			continue
		}
		pr, err := strconv.ParseInt(prStr, 10, 64)
		if err != nil || pr <= 0 {
			errs = append(errs, RowError{Row: rowNum, Column: "product_id", Value: prStr})
			continue
		}
		qty, err := decimal.NewFromString(strings.ReplaceAll(counted, ",", "."))
		if err != nil || qty.IsNegative() {
			errs = append(errs, RowError{Row: rowNum, Column: "counted", Value: counted})
			continue
		}
		out = append(out, inventory.CountLine{WarehouseID: wh, ProductID: pr, Counted: qty})
	}
	return out, errs, nil
}
