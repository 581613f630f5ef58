// internal/capabilities/intelligence/store.go
package intelligence

import (
	"context"
	"database/sql"
	"encoding/json"

	"agrimarket-ai/internal/common/errors"
	"agrimarket-ai/internal/common/logger"
)

// ReportStore persists one intelligence report per location per day.
// Re-running a report within the day overwrites that day's row.
type ReportStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewReportStore(db *sql.DB, log logger.Logger) *ReportStore {
	return &ReportStore{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "report_store"}),
	}
}

const upsertReportQuery = `
INSERT INTO location_reports (location, analysis_date, report, alert_count, generated_at)
VALUES ($1, $2::date, $3, $4, $5)
ON CONFLICT (location, analysis_date)
DO UPDATE SET report = EXCLUDED.report,
              alert_count = EXCLUDED.alert_count,
              generated_at = EXCLUDED.generated_at`

// Save upserts the report keyed on (location, analysis_date).
func (s *ReportStore) Save(ctx context.Context, report *LocationReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return errors.NewStoreWriteFailedError(err)
	}

	_, err = s.db.ExecContext(ctx, upsertReportQuery,
		report.Location,
		report.GeneratedAt.Format("2006-01-02"),
		body,
		len(report.AllAlerts()),
		report.GeneratedAt,
	)
	if err != nil {
		return errors.NewStoreWriteFailedError(err)
	}

	s.logger.Debug("report persisted", map[string]interface{}{
		"location": report.Location,
		"date":     report.GeneratedAt.Format("2006-01-02"),
	})
	return nil
}

// Latest loads the most recent persisted report for a location.
func (s *ReportStore) Latest(ctx context.Context, location string) (*LocationReport, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT report FROM location_reports WHERE location = $1 ORDER BY analysis_date DESC LIMIT 1`,
		location,
	).Scan(&body)
	if err != nil {
		return nil, err
	}

	var report LocationReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
