package batch

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/bannerforge/bannerforge/pkg/errors"
	"github.com/bannerforge/bannerforge/pkg/job"
)

// ArchiveFileName is the archive's file name inside a job directory.
const ArchiveFileName = "assets.zip"

// WriteArchive packages all completed assets plus the manifest into a zip
// at path. Failed and pending assets are skipped; their outcomes are
// still visible in the embedded manifest.
func WriteArchive(path string, j *job.Job, man *Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create archive for job %s", j.ID)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	for _, a := range j.Assets {
		if a.Status != job.AssetCompleted || a.FilePath == "" {
			continue
		}
		if err := addFile(zw, a.FilePath); err != nil {
			zw.Close()
			return err
		}
	}

	mw, err := zw.Create(ManifestFileName)
	if err != nil {
		zw.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "add manifest to archive")
	}
	if err := man.Encode(mw); err != nil {
		zw.Close()
		return err
	}

	if err := zw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "finalize archive for job %s", j.ID)
	}
	return nil
}

func addFile(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "open asset %s", path)
	}
	defer src.Close()

	dst, err := zw.Create(filepath.Base(path))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "add %s to archive", path)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "copy %s into archive", path)
	}
	return nil
}
