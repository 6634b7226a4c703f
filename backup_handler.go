package fastlap

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// BackupHandler streams a zip of the raw store files so admins can snapshot
// the installation before events.
type BackupHandler struct {
	*BaseHandler

	storePath string
}

func NewBackupHandler(baseHandler *BaseHandler, storePath string) *BackupHandler {
	return &BackupHandler{
		BaseHandler: baseHandler,
		storePath:   storePath,
	}
}

func (bh *BackupHandler) download(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="fastlap_backup_%s.zip"`, time.Now().Format("2006-01-02_15_04")))
	w.Header().Set("Content-Type", "application/zip")

	if err := bh.buildArchive(w); err != nil {
		logRequestError(r, err)
	}
}

func (bh *BackupHandler) buildArchive(w io.Writer) (err error) {
	z := zip.NewWriter(w)

	defer func() {
		closeErr := z.Close()

		if err == nil {
			err = closeErr
		}
	}()

	info, err := os.Stat(bh.storePath)

	if err != nil {
		return err
	}

	if !info.IsDir() {
		return bh.addFile(z, bh.storePath, filepath.Base(bh.storePath))
	}

	entries, err := os.ReadDir(bh.storePath)

	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if err := bh.addFile(z, filepath.Join(bh.storePath, entry.Name()), entry.Name()); err != nil {
			return err
		}
	}

	return nil
}

func (bh *BackupHandler) addFile(z *zip.Writer, path, name string) error {
	f, err := os.Open(path)

	if err != nil {
		return err
	}

	defer f.Close()

	out, err := z.Create(name)

	if err != nil {
		return err
	}

	_, err = io.Copy(out, f)

	return err
}
