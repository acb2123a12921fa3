package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/weatherdesk/weatherdesk-go/internal/model"
	"github.com/weatherdesk/weatherdesk-go/internal/repository"
)

// PageSize is the fixed number of records per range page.
const PageSize = 10

var (
	ErrInvalidDate    = errors.New("invalid date, expected YYYY-MM-DD")
	ErrRecordNotFound = errors.New("weather record not found")
	ErrValidation     = errors.New("invalid weather record")
)

var validate = validator.New()

// WeatherStore is the persistence contract the weather service needs.
// *repository.WeatherRepository implements it.
type WeatherStore interface {
	FindByDate(ctx context.Context, date time.Time) (*model.WeatherRecord, error)
	FindPage(ctx context.Context, offset, limit int) ([]model.WeatherRecord, error)
	FindAll(ctx context.Context) ([]model.WeatherRecord, error)
	Create(ctx context.Context, rec *model.WeatherRecord) error
	UpsertByDate(ctx context.Context, rec *model.WeatherRecord) error
	UpdateByID(ctx context.Context, rec *model.WeatherRecord) error
}

// WeatherService handles weather record business logic.
type WeatherService struct {
	store WeatherStore
}

// NewWeatherService creates a new WeatherService.
func NewWeatherService(store WeatherStore) *WeatherService {
	return &WeatherService{store: store}
}

// GetByDate returns the record for a single calendar date.
func (s *WeatherService) GetByDate(ctx context.Context, dateStr string) (model.WeatherRecord, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return model.WeatherRecord{}, ErrInvalidDate
	}

	rec, err := s.store.FindByDate(ctx, date)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return model.WeatherRecord{}, ErrRecordNotFound
		}
		return model.WeatherRecord{}, err
	}

	return *rec, nil
}

// GetPage returns one fixed-size page of records, newest first. Pages are
// 1-based; a page past the end is an empty slice, not an error.
func (s *WeatherService) GetPage(ctx context.Context, page int) ([]model.WeatherRecord, error) {
	if page < 1 {
		page = 1
	}

	records, err := s.store.FindPage(ctx, (page-1)*PageSize, PageSize)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.WeatherRecord{}
	}
	return records, nil
}

// GetAll returns every record, newest first.
func (s *WeatherService) GetAll(ctx context.Context) ([]model.WeatherRecord, error) {
	records, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.WeatherRecord{}
	}
	return records, nil
}

// Create validates the payload and inserts a new record with a generated id.
func (s *WeatherService) Create(ctx context.Context, req model.WeatherRecordRequest) (model.WeatherRecord, error) {
	rec, err := recordFromRequest(req)
	if err != nil {
		return model.WeatherRecord{}, err
	}
	rec.ID = uuid.NewString()

	if err := s.store.Create(ctx, &rec); err != nil {
		return model.WeatherRecord{}, err
	}

	return rec, nil
}

// Upsert validates the payload and creates or replaces the record for its
// date.
func (s *WeatherService) Upsert(ctx context.Context, req model.WeatherRecordRequest) (model.WeatherRecord, error) {
	rec, err := recordFromRequest(req)
	if err != nil {
		return model.WeatherRecord{}, err
	}
	rec.ID = uuid.NewString()

	if err := s.store.UpsertByDate(ctx, &rec); err != nil {
		return model.WeatherRecord{}, err
	}

	return rec, nil
}

// Update validates the payload and updates the record with the given id.
func (s *WeatherService) Update(ctx context.Context, id string, req model.WeatherRecordRequest) (model.WeatherRecord, error) {
	rec, err := recordFromRequest(req)
	if err != nil {
		return model.WeatherRecord{}, err
	}
	rec.ID = id

	if err := s.store.UpdateByID(ctx, &rec); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return model.WeatherRecord{}, ErrRecordNotFound
		}
		return model.WeatherRecord{}, err
	}

	return rec, nil
}

// recordFromRequest validates a payload and converts it to a record. Hourly
// readings, when present, must cover hours 0-23 exactly once; struct tags
// already pin the length to 24, so a duplicate-free set is a full set.
func recordFromRequest(req model.WeatherRecordRequest) (model.WeatherRecord, error) {
	if err := validate.Struct(req); err != nil {
		return model.WeatherRecord{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	seen := make(map[int]bool, len(req.HourlyTemperatures))
	for _, h := range req.HourlyTemperatures {
		if seen[h.Hour] {
			return model.WeatherRecord{}, fmt.Errorf("%w: duplicate hour %d", ErrValidation, h.Hour)
		}
		seen[h.Hour] = true
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return model.WeatherRecord{}, ErrInvalidDate
	}

	hours := make([]model.HourlyTemperature, len(req.HourlyTemperatures))
	for i, h := range req.HourlyTemperatures {
		hours[i] = model.HourlyTemperature{Hour: h.Hour, Temperature: h.Temperature}
	}

	return model.WeatherRecord{
		Date:               date,
		WeatherType:        model.WeatherType(req.WeatherType),
		AverageTemperature: req.AverageTemperature,
		HourlyTemperatures: hours,
	}, nil
}
