package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/weatherdesk/weatherdesk-go/internal/model"
)

func setupWeatherMock(t *testing.T) (*WeatherRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewWeatherRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

const (
	selectRecordByDateSQL = `SELECT id, record_date, weather_type, average_temperature FROM weather_records WHERE record_date = ?`
	selectHoursSQL        = `SELECT hour, temperature FROM hourly_temperatures WHERE record_id = ? ORDER BY hour`
	insertRecordSQL       = `INSERT INTO weather_records (id, record_date, weather_type, average_temperature) VALUES (?, ?, ?, ?)`
	insertHourSQL         = `INSERT INTO hourly_temperatures (record_id, hour, temperature) VALUES (?, ?, ?)`
	deleteHoursSQL        = `DELETE FROM hourly_temperatures WHERE record_id = ?`
)

func TestFindByDate_Found(t *testing.T) {
	repo, mock, cleanup := setupWeatherMock(t)
	defer cleanup()

	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(selectRecordByDateSQL)).
		WithArgs("2024-01-01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "record_date", "weather_type", "average_temperature"}).
			AddRow("rec-1", date, "SUNNY", 21.5))

	mock.ExpectQuery(regexp.QuoteMeta(selectHoursSQL)).
		WithArgs("rec-1").
		WillReturnRows(sqlmock.NewRows([]string{"hour", "temperature"}).
			AddRow(0, 18.0).
			AddRow(1, 17.5))

	rec, err := repo.FindByDate(context.Background(), date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.WeatherType != model.WeatherSunny {
		t.Errorf("expected SUNNY, got %s", rec.WeatherType)
	}
	if len(rec.HourlyTemperatures) != 2 {
		t.Fatalf("expected 2 hourly readings, got %d", len(rec.HourlyTemperatures))
	}
	if rec.HourlyTemperatures[1].Hour != 1 {
		t.Errorf("expected hour 1, got %d", rec.HourlyTemperatures[1].Hour)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindByDate_NotFound(t *testing.T) {
	repo, mock, cleanup := setupWeatherMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectRecordByDateSQL)).
		WithArgs("2024-06-01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "record_date", "weather_type", "average_temperature"}))

	_, err := repo.FindByDate(context.Background(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindPage(t *testing.T) {
	repo, mock, cleanup := setupWeatherMock(t)
	defer cleanup()

	d2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, record_date, weather_type, average_temperature FROM weather_records ORDER BY record_date DESC LIMIT ? OFFSET ?`)).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "record_date", "weather_type", "average_temperature"}).
			AddRow("rec-2", d2, "RAINY", 12.0).
			AddRow("rec-1", d1, "SUNNY", 21.5))

	mock.ExpectQuery(regexp.QuoteMeta(selectHoursSQL)).
		WithArgs("rec-2").
		WillReturnRows(sqlmock.NewRows([]string{"hour", "temperature"}))
	mock.ExpectQuery(regexp.QuoteMeta(selectHoursSQL)).
		WithArgs("rec-1").
		WillReturnRows(sqlmock.NewRows([]string{"hour", "temperature"}))

	records, err := repo.FindPage(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !records[0].Date.After(records[1].Date) {
		t.Error("expected newest-first ordering")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreate_InsertsRecordAndHours(t *testing.T) {
	repo, mock, cleanup := setupWeatherMock(t)
	defer cleanup()

	rec := &model.WeatherRecord{
		ID:                 "rec-1",
		Date:               time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		WeatherType:        model.WeatherSnowy,
		AverageTemperature: -3.5,
		HourlyTemperatures: []model.HourlyTemperature{
			{Hour: 0, Temperature: -5},
			{Hour: 1, Temperature: -4.5},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertRecordSQL)).
		WithArgs("rec-1", "2024-01-01", rec.WeatherType, rec.AverageTemperature).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertHourSQL)).
		WithArgs("rec-1", 0, -5.0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertHourSQL)).
		WithArgs("rec-1", 1, -4.5).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpsertByDate_ExistingRecordReplacesHours(t *testing.T) {
	repo, mock, cleanup := setupWeatherMock(t)
	defer cleanup()

	rec := &model.WeatherRecord{
		ID:                 "new-id",
		Date:               time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		WeatherType:        model.WeatherCloudy,
		AverageTemperature: 10,
		HourlyTemperatures: []model.HourlyTemperature{{Hour: 0, Temperature: 9}},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM weather_records WHERE record_date = ?`)).
		WithArgs("2024-01-01").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-id"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE weather_records SET weather_type = ?, average_temperature = ? WHERE id = ?`)).
		WithArgs(rec.WeatherType, rec.AverageTemperature, "existing-id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteHoursSQL)).
		WithArgs("existing-id").
		WillReturnResult(sqlmock.NewResult(0, 24))
	mock.ExpectExec(regexp.QuoteMeta(insertHourSQL)).
		WithArgs("existing-id", 0, 9.0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.UpsertByDate(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "existing-id" {
		t.Errorf("expected existing id to be kept, got %q", rec.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupWeatherMock(t)
	defer cleanup()

	rec := &model.WeatherRecord{
		ID:          "missing",
		Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		WeatherType: model.WeatherRainy,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE weather_records SET record_date = ?, weather_type = ?, average_temperature = ? WHERE id = ?`)).
		WithArgs("2024-01-01", rec.WeatherType, rec.AverageTemperature, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateByID(context.Background(), rec)
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
