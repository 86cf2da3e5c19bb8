package batch

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/bannerforge/bannerforge/pkg/errors"
	"github.com/bannerforge/bannerforge/pkg/job"
)

// ManifestFileName is the manifest's file name inside a job directory.
const ManifestFileName = "manifest.json"

// Manifest summarizes a finished batch: job metadata plus the outcome of
// every asset, in row order. It is written next to the assets and
// included in the archive so a download is self-describing.
type Manifest struct {
	JobID       string    `json:"jobId"`
	TemplateID  string    `json:"templateId"`
	Format      string    `json:"format"`
	GeneratedAt time.Time `json:"generatedAt"`

	TotalAssets     int `json:"totalAssets"`
	CompletedAssets int `json:"completedAssets"`
	FailedAssets    int `json:"failedAssets"`

	Assets []ManifestAsset `json:"assets"`
}

// ManifestAsset records one asset's outcome.
type ManifestAsset struct {
	RowIndex int             `json:"rowIndex"`
	Status   job.AssetStatus `json:"status"`
	FilePath string          `json:"filePath,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// BuildManifest derives the manifest from a finished job. Assets keep
// their row order.
func BuildManifest(j *job.Job) *Manifest {
	m := &Manifest{
		JobID:           j.ID,
		TemplateID:      j.TemplateID,
		Format:          j.Format,
		GeneratedAt:     time.Now().UTC(),
		TotalAssets:     j.TotalAssets,
		CompletedAssets: j.CompletedAssets,
		FailedAssets:    j.FailedAssets,
		Assets:          make([]ManifestAsset, 0, len(j.Assets)),
	}
	for _, a := range j.Assets {
		m.Assets = append(m.Assets, ManifestAsset{
			RowIndex: a.RowIndex,
			Status:   a.Status,
			FilePath: a.FilePath,
			Error:    a.Error,
		})
	}
	return m
}

// Encode writes the manifest as indented JSON.
func (m *Manifest) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode manifest for job %s", m.JobID)
	}
	return nil
}

// WriteFile writes the manifest to path.
func (m *Manifest) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create manifest for job %s", m.JobID)
	}
	defer f.Close()
	return m.Encode(f)
}
