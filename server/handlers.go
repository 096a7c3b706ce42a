package server

import (
	"context"
	"encoding/json"
	"net/http"

	"bikeshop-prices/models"
	"bikeshop-prices/services"
	"bikeshop-prices/storage"
)

type recordsResponse struct {
	Total   int                  `json:"total"`
	Count   int                  `json:"count"`
	Records []*models.ShopRecord `json:"records"`
}

type summaryResponse struct {
	Total    int                      `json:"total"`
	Filtered int                      `json:"filtered"`
	Average  *models.AverageDelta     `json:"average"`
	Extent   *models.Extent           `json:"extent"`
	Settings models.SelectionSettings `json:"settings"`
	Load     models.LoadReport        `json:"load"`
}

// Records returns the filtered records, optionally sorted by ?sort=<column>&order=asc|desc.
func (s *Server) Records(w http.ResponseWriter, r *http.Request) {
	view := s.dash.View()
	records := view.Records

	if col := r.URL.Query().Get("sort"); col != "" {
		key, err := services.ParseSortKey(col)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		order := r.URL.Query().Get("order")
		if order != "" && order != "asc" && order != "desc" {
			writeError(w, http.StatusBadRequest, "order must be asc or desc")
			return
		}
		records = services.SortRecords(records, key, order == "desc")
	}

	writeJSON(w, http.StatusOK, recordsResponse{Total: view.Total, Count: len(records), Records: records})
}

func (s *Server) Histogram(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.View().Histogram)
}

func (s *Server) Scatter(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.View().Scatter)
}

func (s *Server) Summary(w http.ResponseWriter, r *http.Request) {
	view := s.dash.View()
	writeJSON(w, http.StatusOK, summaryResponse{
		Total:    view.Total,
		Filtered: len(view.Records),
		Average:  view.Average,
		Extent:   view.Extent,
		Settings: view.Settings,
		Load:     view.Report,
	})
}

func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Settings())
}

// ReplaceSettings installs the request body as the new settings value. Fields
// left out of the body take their default, never the previous value.
func (s *Server) ReplaceSettings(w http.ResponseWriter, r *http.Request) {
	settings := models.DefaultSelectionSettings()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings: "+err.Error())
		return
	}
	if err := services.ValidateSettings(settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings: "+err.Error())
		return
	}

	version := s.dash.ReplaceSettings(settings)
	writeJSON(w, http.StatusOK, map[string]interface{}{"version": version, "settings": settings})
}

// Reload runs to completion even if the client goes away.
func (s *Server) Reload(w http.ResponseWriter, r *http.Request) {
	if err := s.dash.Reload(context.WithoutCancel(r.Context())); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	snap := s.dash.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{"snapshot": snap.ID, "load": snap.Report})
}

func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	view := s.dash.View()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="shops.csv"`)

	cw, err := storage.NewCSVStreamWriter(w)
	if err != nil {
		s.logger.Error("[server] CSV export failed: %v", err)
		return
	}
	if err := cw.Write(view.Records); err != nil {
		s.logger.Error("[server] CSV export failed: %v", err)
	}
}
