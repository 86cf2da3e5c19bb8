package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bannerforge/bannerforge/pkg/batch"
	"github.com/bannerforge/bannerforge/pkg/errors"
	"github.com/bannerforge/bannerforge/pkg/job"
	"github.com/bannerforge/bannerforge/pkg/mapping"
	"github.com/bannerforge/bannerforge/pkg/rows"
	"github.com/bannerforge/bannerforge/pkg/template"
)

// renderRequest is the JSON body for preview and job-creation requests.
type renderRequest struct {
	// Template is the template document.
	Template json.RawMessage `json:"template"`

	// Mapping explicitly assigns source columns to template fields. When
	// omitted, columns are auto-detected from the CSV headers.
	Mapping map[string]string `json:"mapping,omitempty"`

	// CSV is the raw CSV payload, header row first.
	CSV string `json:"csv"`

	// Limit caps the number of preview rows. Zero uses the server default.
	// Ignored for full renders.
	Limit int `json:"limit,omitempty"`
}

// parse decodes and validates the request into its domain objects.
func (req *renderRequest) parse() (*template.Template, mapping.ColumnMapping, *rows.Set, error) {
	if len(req.Template) == 0 {
		return nil, nil, nil, errors.New(errors.ErrCodeInvalidInput, "missing template")
	}
	tpl, err := template.Read(bytes.NewReader(req.Template))
	if err != nil {
		return nil, nil, nil, err
	}

	set, err := rows.ReadCSV(strings.NewReader(req.CSV))
	if err != nil {
		return nil, nil, nil, err
	}

	var m mapping.ColumnMapping
	if len(req.Mapping) > 0 {
		m, err = mapping.Parse(req.Mapping)
		if err != nil {
			return nil, nil, nil, err
		}
	} else {
		m = mapping.AutoDetect(set.Headers)
	}

	return tpl, m, set, nil
}

func decodeRenderRequest(r *http.Request) (*renderRequest, error) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return &req, nil
}

// handleValidateTemplate parses a template document and reports the
// normalized result without rendering anything.
func (s *Server) handleValidateTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := template.Read(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    true,
		"template": tpl,
	})
}

// previewResult mirrors batch.PreviewResult with the image inlined as
// base64 for JSON transport.
type previewResult struct {
	RowIndex int             `json:"rowIndex"`
	Status   job.AssetStatus `json:"status"`
	Error    string          `json:"error,omitempty"`
	Image    []byte          `json:"image,omitempty"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRenderRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	tpl, m, set, err := req.parse()
	if err != nil {
		writeError(w, err)
		return
	}

	results := s.orch.Preview(r.Context(), tpl, m, set, req.Limit)
	out := make([]previewResult, 0, len(results))
	for _, res := range results {
		out = append(out, previewResult{
			RowIndex: res.RowIndex,
			Status:   res.Status,
			Error:    res.Error,
			Image:    res.Data,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mapping": m,
		"results": out,
	})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRenderRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	tpl, m, set, err := req.parse()
	if err != nil {
		writeError(w, err)
		return
	}

	j, err := s.orch.Start(r.Context(), tpl, m, set)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("job started", "job", j.ID, "assets", j.TotalAssets)
	writeJSON(w, http.StatusAccepted, j)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	j, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if j.State == job.StateCompleted || j.State == job.StateError {
		writeError(w, errors.New(errors.ErrCodeJobCancelled, "job %s already finished", id))
		return
	}
	s.orch.Cancel(id)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}

// handleAsset streams one rendered asset by row index.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	j, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 || idx >= len(j.Assets) {
		writeError(w, errors.New(errors.ErrCodeAssetNotFound, "no asset at index %s", chi.URLParam(r, "index")))
		return
	}

	a := j.Assets[idx]
	if a.Status != job.AssetCompleted {
		writeError(w, errors.New(errors.ErrCodeAssetNotFound, "asset %d is %s", idx, a.Status))
		return
	}
	http.ServeFile(w, r, a.FilePath)
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	s.serveJobFile(w, r, batch.ManifestFileName, "application/json")
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	s.serveJobFile(w, r, batch.ArchiveFileName, "application/zip")
}

// serveJobFile streams a file from a completed job's output directory.
func (s *Server) serveJobFile(w http.ResponseWriter, r *http.Request, name, contentType string) {
	id := chi.URLParam(r, "id")
	j, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if j.State != job.StateCompleted {
		writeError(w, errors.New(errors.ErrCodeAssetNotFound, "job %s is %s, %s not available", id, j.State, name))
		return
	}

	path := filepath.Join(s.orch.JobDir(id), name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, errors.New(errors.ErrCodeAssetNotFound, "%s not found for job %s", name, id))
		return
	}
	w.Header().Set("Content-Type", contentType)
	http.ServeFile(w, r, path)
}
