package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/weatherdesk/weatherdesk-go/internal/model"
)

var ErrRecordNotFound = errors.New("weather record not found")

// WeatherRepository handles weather record persistence operations. Hourly
// temperatures are owned by their record: every write path deletes and
// recreates them wholesale inside one transaction.
type WeatherRepository struct {
	db *sql.DB
}

// NewWeatherRepository creates a new WeatherRepository.
func NewWeatherRepository(db *sql.DB) *WeatherRepository {
	return &WeatherRepository{db: db}
}

const selectRecordColumns = `SELECT id, record_date, weather_type, average_temperature FROM weather_records`

// FindByDate retrieves the weather record for a calendar date, including its
// hourly temperatures.
func (r *WeatherRepository) FindByDate(ctx context.Context, date time.Time) (*model.WeatherRecord, error) {
	query := selectRecordColumns + ` WHERE record_date = ?`

	rec := &model.WeatherRecord{}
	err := r.db.QueryRowContext(ctx, query, date.Format("2006-01-02")).Scan(
		&rec.ID, &rec.Date, &rec.WeatherType, &rec.AverageTemperature,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	if rec.HourlyTemperatures, err = r.loadHours(ctx, rec.ID); err != nil {
		return nil, err
	}

	return rec, nil
}

// FindPage retrieves one page of weather records ordered by date descending,
// including hourly temperatures.
func (r *WeatherRepository) FindPage(ctx context.Context, offset, limit int) ([]model.WeatherRecord, error) {
	query := selectRecordColumns + ` ORDER BY record_date DESC LIMIT ? OFFSET ?`
	return r.queryRecords(ctx, query, limit, offset)
}

// FindAll retrieves every weather record ordered by date descending,
// including hourly temperatures.
func (r *WeatherRepository) FindAll(ctx context.Context) ([]model.WeatherRecord, error) {
	query := selectRecordColumns + ` ORDER BY record_date DESC`
	return r.queryRecords(ctx, query)
}

// Create inserts a new weather record and its hourly temperatures.
func (r *WeatherRepository) Create(ctx context.Context, rec *model.WeatherRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO weather_records (id, record_date, weather_type, average_temperature) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Date.Format("2006-01-02"), rec.WeatherType, rec.AverageTemperature,
	)
	if err != nil {
		return err
	}

	if err := insertHoursTx(ctx, tx, rec.ID, rec.HourlyTemperatures); err != nil {
		return err
	}

	return tx.Commit()
}

// UpsertByDate inserts the record if no record exists for its date, otherwise
// updates the existing record in place. Hourly temperatures are replaced
// wholesale either way. On update the existing record's id is written back
// into rec.
func (r *WeatherRepository) UpsertByDate(ctx context.Context, rec *model.WeatherRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM weather_records WHERE record_date = ?`,
		rec.Date.Format("2006-01-02"),
	).Scan(&existingID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO weather_records (id, record_date, weather_type, average_temperature) VALUES (?, ?, ?, ?)`,
			rec.ID, rec.Date.Format("2006-01-02"), rec.WeatherType, rec.AverageTemperature,
		)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		rec.ID = existingID
		_, err = tx.ExecContext(ctx,
			`UPDATE weather_records SET weather_type = ?, average_temperature = ? WHERE id = ?`,
			rec.WeatherType, rec.AverageTemperature, rec.ID,
		)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM hourly_temperatures WHERE record_id = ?`, rec.ID); err != nil {
			return err
		}
	}

	if err := insertHoursTx(ctx, tx, rec.ID, rec.HourlyTemperatures); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateByID updates an existing weather record and replaces its hourly
// temperatures wholesale.
func (r *WeatherRepository) UpdateByID(ctx context.Context, rec *model.WeatherRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE weather_records SET record_date = ?, weather_type = ?, average_temperature = ? WHERE id = ?`,
		rec.Date.Format("2006-01-02"), rec.WeatherType, rec.AverageTemperature, rec.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM hourly_temperatures WHERE record_id = ?`, rec.ID); err != nil {
		return err
	}

	if err := insertHoursTx(ctx, tx, rec.ID, rec.HourlyTemperatures); err != nil {
		return err
	}

	return tx.Commit()
}

// queryRecords runs a multi-record query and attaches hourly temperatures to
// each result.
func (r *WeatherRepository) queryRecords(ctx context.Context, query string, args ...any) ([]model.WeatherRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.WeatherRecord
	for rows.Next() {
		var rec model.WeatherRecord
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.WeatherType, &rec.AverageTemperature); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].HourlyTemperatures, err = r.loadHours(ctx, records[i].ID); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// loadHours retrieves the hourly temperatures for a record ordered by hour.
func (r *WeatherRepository) loadHours(ctx context.Context, recordID string) ([]model.HourlyTemperature, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT hour, temperature FROM hourly_temperatures WHERE record_id = ? ORDER BY hour`,
		recordID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []model.HourlyTemperature
	for rows.Next() {
		var h model.HourlyTemperature
		if err := rows.Scan(&h.Hour, &h.Temperature); err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}

	return hours, rows.Err()
}

// insertHoursTx inserts hourly temperatures for a record within a transaction.
func insertHoursTx(ctx context.Context, tx *sql.Tx, recordID string, hours []model.HourlyTemperature) error {
	for _, h := range hours {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO hourly_temperatures (record_id, hour, temperature) VALUES (?, ?, ?)`,
			recordID, h.Hour, h.Temperature,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
