package sheetstore

import (
	"context"
	"fmt"
	"strconv"

	"google.golang.org/api/sheets/v4"

	"github.com/cvoinescu/garda/internal/config"
	"github.com/cvoinescu/garda/pkg/db"
)

// Tab names in the backing spreadsheet. Each tab holds one table with a
// header row; reads skip the header and writes rewrite the whole tab.
const (
	tabStaff          = "Staff"
	tabAbsences       = "Absences"
	tabPreferences    = "Preferences"
	tabReservations   = "Reservations"
	tabPriorityLedger = "PriorityLedger"
	tabSchedule       = "Schedule"
)

var tabHeaders = map[string][]interface{}{
	tabStaff:          {"id", "name", "specialty", "max_shifts_per_month"},
	tabAbsences:       {"staff_id", "date"},
	tabPreferences:    {"staff_id", "weekday", "shift_label"},
	tabReservations:   {"id", "staff_id", "date", "shift_label", "status", "submitted_at"},
	tabPriorityLedger: {"staff_id", "month", "score"},
	tabSchedule:       {"date", "shift_label", "staff_id"},
}

// Store implements db.RosterStore on top of a Google spreadsheet.
type Store struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewStore authorizes against the Sheets API and makes sure every tab the
// store needs exists with its header row.
func NewStore(ctx context.Context, oauthCfg *config.OAuthClientConfig, spreadsheetID string) (*Store, error) {
	service, err := newService(ctx, oauthCfg)
	if err != nil {
		return nil, err
	}

	store := &Store{service: service, spreadsheetID: spreadsheetID}
	if err := store.ensureTabs(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureTabs(ctx context.Context) error {
	spreadsheet, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	existing := make(map[string]bool)
	for _, sheet := range spreadsheet.Sheets {
		existing[sheet.Properties.Title] = true
	}

	var requests []*sheets.Request
	var missing []string
	for tab := range tabHeaders {
		if !existing[tab] {
			missing = append(missing, tab)
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: tab},
				},
			})
		}
	}
	if len(requests) == 0 {
		return nil
	}

	_, err = s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to add missing tabs: %w", err)
	}

	for _, tab := range missing {
		if err := s.writeTable(ctx, tab, nil); err != nil {
			return err
		}
	}
	return nil
}

// readTable returns the data rows of a tab, header excluded.
func (s *Store) readTable(ctx context.Context, tab string) ([][]interface{}, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, tab).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %s: %w", tab, err)
	}
	if len(resp.Values) <= 1 {
		return nil, nil
	}
	return resp.Values[1:], nil
}

// writeTable clears a tab and rewrites it with the header plus the given
// rows. The tab afterwards contains exactly those rows.
func (s *Store) writeTable(ctx context.Context, tab string, rows [][]interface{}) error {
	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, tab, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear tab %s: %w", tab, err)
	}

	values := append([][]interface{}{tabHeaders[tab]}, rows...)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, tab+"!A1", &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write tab %s: %w", tab, err)
	}
	return nil
}

// cellString reads a cell as a string; missing cells come back empty.
func cellString(row []interface{}, idx int) string {
	if idx >= len(row) {
		return ""
	}
	if s, ok := row[idx].(string); ok {
		return s
	}
	return fmt.Sprint(row[idx])
}

// cellInt reads a cell as an int. Non-numeric cells come back as zero,
// which downstream validation treats as an invalid id and drops with a
// warning rather than failing the run.
func cellInt(row []interface{}, idx int) int {
	n, err := strconv.Atoi(cellString(row, idx))
	if err != nil {
		return 0
	}
	return n
}

func (s *Store) GetStaff(ctx context.Context) ([]db.StaffRow, error) {
	rows, err := s.readTable(ctx, tabStaff)
	if err != nil {
		return nil, err
	}

	staff := make([]db.StaffRow, 0, len(rows))
	for _, row := range rows {
		staff = append(staff, db.StaffRow{
			ID:                cellInt(row, 0),
			Name:              cellString(row, 1),
			Specialty:         cellString(row, 2),
			MaxShiftsPerMonth: cellInt(row, 3),
		})
	}
	return staff, nil
}

func (s *Store) GetAbsences(ctx context.Context) ([]db.AbsenceRow, error) {
	rows, err := s.readTable(ctx, tabAbsences)
	if err != nil {
		return nil, err
	}

	absences := make([]db.AbsenceRow, 0, len(rows))
	for _, row := range rows {
		absences = append(absences, db.AbsenceRow{
			StaffID: cellInt(row, 0),
			Date:    cellString(row, 1),
		})
	}
	return absences, nil
}

func (s *Store) GetPreferences(ctx context.Context) ([]db.PreferenceRow, error) {
	rows, err := s.readTable(ctx, tabPreferences)
	if err != nil {
		return nil, err
	}

	preferences := make([]db.PreferenceRow, 0, len(rows))
	for _, row := range rows {
		preferences = append(preferences, db.PreferenceRow{
			StaffID:    cellInt(row, 0),
			Weekday:    cellInt(row, 1),
			ShiftLabel: cellString(row, 2),
		})
	}
	return preferences, nil
}

func (s *Store) GetReservations(ctx context.Context) ([]db.ReservationRow, error) {
	rows, err := s.readTable(ctx, tabReservations)
	if err != nil {
		return nil, err
	}

	reservations := make([]db.ReservationRow, 0, len(rows))
	for _, row := range rows {
		reservations = append(reservations, db.ReservationRow{
			ID:          cellString(row, 0),
			StaffID:     cellInt(row, 1),
			Date:        cellString(row, 2),
			ShiftLabel:  cellString(row, 3),
			Status:      cellString(row, 4),
			SubmittedAt: cellString(row, 5),
		})
	}
	return reservations, nil
}

func (s *Store) GetPriorityLedger(ctx context.Context) ([]db.PriorityRow, error) {
	rows, err := s.readTable(ctx, tabPriorityLedger)
	if err != nil {
		return nil, err
	}

	entries := make([]db.PriorityRow, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, db.PriorityRow{
			StaffID: cellInt(row, 0),
			Month:   cellString(row, 1),
			Score:   cellInt(row, 2),
		})
	}
	return entries, nil
}

func (s *Store) ReplaceSchedule(ctx context.Context, entries []db.ScheduleRow) error {
	rows := make([][]interface{}, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []interface{}{entry.Date, entry.ShiftLabel, entry.StaffID})
	}
	return s.writeTable(ctx, tabSchedule, rows)
}

func (s *Store) ReplaceReservations(ctx context.Context, reservations []db.ReservationRow) error {
	rows := make([][]interface{}, 0, len(reservations))
	for _, r := range reservations {
		rows = append(rows, []interface{}{r.ID, r.StaffID, r.Date, r.ShiftLabel, r.Status, r.SubmittedAt})
	}
	return s.writeTable(ctx, tabReservations, rows)
}

func (s *Store) ReplacePriorityLedger(ctx context.Context, entries []db.PriorityRow) error {
	rows := make([][]interface{}, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []interface{}{entry.StaffID, entry.Month, entry.Score})
	}
	return s.writeTable(ctx, tabPriorityLedger, rows)
}

// InsertAbsence appends one absence row, skipping the write if the same
// (staff, date) pair is already present.
func (s *Store) InsertAbsence(ctx context.Context, row db.AbsenceRow) error {
	existing, err := s.GetAbsences(ctx)
	if err != nil {
		return err
	}
	for _, a := range existing {
		if a.StaffID == row.StaffID && a.Date == row.Date {
			return nil
		}
	}

	_, err = s.service.Spreadsheets.Values.Append(s.spreadsheetID, tabAbsences, &sheets.ValueRange{
		Values: [][]interface{}{{row.StaffID, row.Date}},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append absence: %w", err)
	}
	return nil
}
