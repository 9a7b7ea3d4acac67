package export

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// SheetsWriter implements TableWriter using the Google Sheets API.
type SheetsWriter struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheetsWriter creates a SheetsWriter authenticated with a service account JSON.
func NewSheetsWriter(ctx context.Context, spreadsheetID, credentialsJSON string) (*SheetsWriter, error) {
	creds, err := google.CredentialsFromJSON(
		ctx,
		[]byte(credentialsJSON),
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &SheetsWriter{spreadsheetID: spreadsheetID, svc: svc}, nil
}

// Write ensures the table sheets exist, then clears and rewrites them.
func (w *SheetsWriter) Write(ctx context.Context, tables []Table) error {
	names := lo.Map(tables, func(t Table, _ int) string { return t.Sheet })
	if err := w.ensureSheets(ctx, names...); err != nil {
		return err
	}

	_, err := w.svc.Spreadsheets.Values.BatchClear(
		w.spreadsheetID,
		&sheets.BatchClearValuesRequest{
			Ranges: lo.Map(names, func(n string, _ int) string { return n + "!A:Z" }),
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing sheets: %w", err)
	}

	_, err = w.svc.Spreadsheets.Values.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data: lo.Map(tables, func(t Table, _ int) *sheets.ValueRange {
				return &sheets.ValueRange{Range: t.Sheet + "!A1", Values: t.Rows}
			}),
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing sheets: %w", err)
	}

	return nil
}

// AppendHistory writes the header if the History sheet is empty, then appends row.
func (w *SheetsWriter) AppendHistory(ctx context.Context, header, row []any) error {
	if err := w.ensureSheets(ctx, HistorySheet); err != nil {
		return fmt.Errorf("ensuring %s sheet: %w", HistorySheet, err)
	}

	existing, err := w.svc.Spreadsheets.Values.Get(
		w.spreadsheetID, HistorySheet+"!A1",
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading %s header: %w", HistorySheet, err)
	}

	if len(existing.Values) == 0 {
		_, err = w.svc.Spreadsheets.Values.Update(
			w.spreadsheetID,
			HistorySheet+"!A1",
			&sheets.ValueRange{Values: [][]any{header}},
		).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("writing %s header: %w", HistorySheet, err)
		}
	}

	_, err = w.svc.Spreadsheets.Values.Append(
		w.spreadsheetID,
		HistorySheet+"!A:G",
		&sheets.ValueRange{Values: [][]any{row}},
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending %s row: %w", HistorySheet, err)
	}
	return nil
}

// ensureSheets creates any of the named sheets that do not already exist.
func (w *SheetsWriter) ensureSheets(ctx context.Context, names ...string) error {
	spreadsheet, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("getting spreadsheet metadata: %w", err)
	}

	existing := make(map[string]bool, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		existing[s.Properties.Title] = true
	}

	var requests []*sheets.Request
	for _, name := range names {
		if !existing[name] {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			})
		}
	}

	if len(requests) == 0 {
		return nil
	}

	_, err = w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating sheets: %w", err)
	}

	return nil
}
