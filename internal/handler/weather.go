package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/weatherdesk/weatherdesk-go/internal/model"
	"github.com/weatherdesk/weatherdesk-go/internal/service"
)

// WeatherHandler handles HTTP requests for weather record operations.
type WeatherHandler struct {
	service *service.WeatherService
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(svc *service.WeatherService) *WeatherHandler {
	return &WeatherHandler{service: svc}
}

// HandleGetByDate handles GET /api/weather/{date} requests.
func (h *WeatherHandler) HandleGetByDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	rec, err := h.service.GetByDate(r.Context(), date)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDate):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrRecordNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// HandleRange handles GET /api/weather/range?page=N requests.
func (h *WeatherHandler) HandleRange(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}

	records, err := h.service.GetPage(r.Context(), page)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// HandleAll handles GET /api/weather/all requests.
func (h *WeatherHandler) HandleAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.GetAll(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// HandleCreate handles POST /api/weather requests.
func (h *WeatherHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRecordRequest(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeRecordError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// HandleUpsert handles POST /api/weather/update requests, creating or
// replacing the record for the payload's date.
func (h *WeatherHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRecordRequest(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Upsert(r.Context(), req)
	if err != nil {
		writeRecordError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// HandleUpdate handles PUT /api/weather/{id} requests.
func (h *WeatherHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > 36 {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid record id"))
		return
	}

	req, ok := decodeRecordRequest(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		writeRecordError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// decodeRecordRequest decodes a weather record payload, writing the error
// response itself when decoding fails.
func decodeRecordRequest(w http.ResponseWriter, r *http.Request) (model.WeatherRecordRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.WeatherRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err.Error() == "http: request body too large" {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return req, false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return req, false
	}

	return req, true
}

func writeRecordError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrRecordNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}
