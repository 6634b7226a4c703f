package fastlap

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// image uploads only, used for event and track artwork and the site favicon
var allowedUploadExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
	".ico":  true,
}

type UploadHandler struct {
	*BaseHandler

	path        string
	maxBytes    int64
	servePrefix string
}

func NewUploadHandler(baseHandler *BaseHandler, config UploadsConfig) *UploadHandler {
	return &UploadHandler{
		BaseHandler: baseHandler,
		path:        config.Path,
		maxBytes:    int64(config.MaxSizeMB) << 20,
		servePrefix: config.ServePrefix,
	}
}

type uploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// upload stores a single multipart image under a generated name and returns
// the path it will be served from. Generated names stop one upload from
// overwriting another and keep user-provided filenames out of the filesystem.
func (uh *UploadHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, uh.maxBytes)

	file, header, err := r.FormFile("file")

	if err != nil {
		uh.respondDetail(w, http.StatusBadRequest,
			fmt.Sprintf("Datei fehlt oder ist größer als %s", humanize.Bytes(uint64(uh.maxBytes))))
		return
	}

	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))

	if !allowedUploadExtensions[ext] {
		uh.respondDetail(w, http.StatusBadRequest, "Nur Bilddateien sind erlaubt")
		return
	}

	if err := os.MkdirAll(uh.path, 0755); err != nil {
		uh.respondError(w, r, err)
		return
	}

	name := uuid.New().String() + ext
	destination := filepath.Join(uh.path, name)

	out, err := os.Create(destination)

	if err != nil {
		uh.respondError(w, r, err)
		return
	}

	defer out.Close()

	size, err := io.Copy(out, file)

	if err != nil {
		_ = os.Remove(destination)
		uh.respondError(w, r, err)
		return
	}

	logrus.Infof("Stored upload %s (%s)", name, humanize.Bytes(uint64(size)))

	uh.respondJSON(w, http.StatusOK, uploadResponse{
		Filename: name,
		URL:      uh.servePrefix + "/" + name,
		Size:     size,
	})
}

// serve exposes the upload directory read-only.
func (uh *UploadHandler) serve() http.Handler {
	return http.StripPrefix(uh.servePrefix+"/", http.FileServer(http.Dir(uh.path)))
}
