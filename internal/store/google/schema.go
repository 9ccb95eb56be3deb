package google

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/store"

	gsheet "google.golang.org/api/sheets/v4"
)

// SchemaReport lists what EnsureSchema changed, by tab title.
type SchemaReport struct {
	Created        []string
	HeadersWritten []string
	Seeded         []string
}

// EnsureSchema creates missing tabs and writes the canonical header row into
// empty ones. With seed set, empty reference tabs also get default rows.
// Existing data is never modified.
func (c *Client) EnsureSchema(ctx context.Context, seed bool) (SchemaReport, error) {
	var report SchemaReport
	svc, err := c.service()
	if err != nil {
		return report, err
	}

	ss, err := svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return report, fmt.Errorf("get spreadsheet %s: %w", c.spreadsheetID, err)
	}
	existing := make(map[string]bool, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}

	var requests []*gsheet.Request
	for _, k := range core.Kinds() {
		name := c.sheets[k]
		if existing[name] {
			continue
		}
		requests = append(requests, &gsheet.Request{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
		})
		report.Created = append(report.Created, name)
	}
	if len(requests) > 0 {
		batch := &gsheet.BatchUpdateSpreadsheetRequest{Requests: requests}
		if _, err := svc.Spreadsheets.BatchUpdate(c.spreadsheetID, batch).Context(ctx).Do(); err != nil {
			return report, fmt.Errorf("add sheets: %w", err)
		}
		c.logger.InfoContext(ctx, "Created worksheet tabs", "tabs", report.Created)
	}

	for _, k := range core.Kinds() {
		rows, err := c.ReadRows(ctx, k)
		if err != nil {
			return report, err
		}
		name := c.sheets[k]
		if len(rows) == 0 {
			if err := c.writeHeader(ctx, svc, k); err != nil {
				return report, err
			}
			report.HeadersWritten = append(report.HeadersWritten, name)
		}
		if !seed || len(rows) > 1 {
			continue
		}
		seedRows := defaultRows(k)
		if len(seedRows) == 0 {
			continue
		}
		for _, r := range seedRows {
			if err := c.AppendRow(ctx, k, r); err != nil {
				return report, err
			}
		}
		report.Seeded = append(report.Seeded, name)
	}
	return report, nil
}

func (c *Client) writeHeader(ctx context.Context, svc *gsheet.Service, kind core.Kind) error {
	headers := store.SchemaFor(kind).Headers()
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	rng := quoteSheet(c.sheets[kind]) + "!A1"
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	if _, err := svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write header %s: %w", rng, err)
	}
	return nil
}

// defaultRows returns the seed rows of a reference kind in schema order.
func defaultRows(kind core.Kind) [][]any {
	var out [][]any
	switch kind {
	case core.KindCategory:
		for _, n := range core.DefaultIncomeCategories() {
			out = append(out, []any{string(core.CategoryIncome), n})
		}
		for _, n := range core.DefaultExpenseCategories() {
			out = append(out, []any{string(core.CategoryExpense), n})
		}
	case core.KindPaymentMethod:
		for _, n := range core.DefaultPaymentMethods() {
			out = append(out, []any{n})
		}
	case core.KindCard:
		for _, n := range core.DefaultCards() {
			out = append(out, []any{n})
		}
	}
	return out
}
