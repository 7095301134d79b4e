package http

import (
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-admin/internal/catalog"
	"io"
	"net/http"
	"os"
)

// multipartOverhead is allowed on top of the image size for the form framing
const multipartOverhead = 1 << 20

// ObjectReader opens stored objects for serving
type ObjectReader interface {
	Open(path string) (*os.File, error)
}

// ImageHandler uploads images into the open draft and serves locally stored
// images
type ImageHandler struct {
	log      hclog.Logger
	workflow *catalog.Workflow
	store    ObjectReader
	maxSize  int64
}

// NewImageHandler creates a new image handler. store may be nil when images
// are served by the hosted backend.
func NewImageHandler(l hclog.Logger, w *catalog.Workflow, store ObjectReader, maxSize int64) *ImageHandler {
	return &ImageHandler{log: l, workflow: w, store: store, maxSize: maxSize}
}

// UploadMultipart handles POST /catalog/draft/image
//
// swagger:route POST /catalog/draft/image images uploadImage
//
// Uploads the file form field and sets it as the image of the open draft.
//
// Consumes:
// - multipart/form-data
//
// Responses:
//
//	200: snapshotResponse
//	400: errorResponse
//	409: errorResponse
//	413: errorResponse
//	502: errorResponse
func (f *ImageHandler) UploadMultipart(rw http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(rw, r.Body, f.maxSize+multipartOverhead)

	err := r.ParseMultipartForm(128 * 1024)
	if err != nil {
		f.log.Error("Unable to parse multipart form", "error", err)
		writeError(rw, http.StatusBadRequest, "Unable to parse form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	// Retrieve the file
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		f.log.Error("Unable to get file from form data", "error", err)
		writeError(rw, http.StatusBadRequest, "Unable to get file from form data")
		return
	}
	defer file.Close()

	fn := fileHeader.Filename
	f.log.Debug("Handle image upload", "filename", fn, "size", fileHeader.Size)

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if detected, err := getContentType(file); err == nil {
			contentType = detected
		}
	}

	_, err = f.workflow.AttachImage(r.Context(), catalog.Attachment{
		Filename:    fn,
		ContentType: contentType,
		Body:        file,
	})
	f.respond(rw, err)
}

// RemoveImage handles DELETE /catalog/draft/image
//
// swagger:route DELETE /catalog/draft/image images removeImage
//
// Clears the image of the open draft. The stored file is kept.
//
// Responses:
//
//	200: snapshotResponse
//	409: errorResponse
func (f *ImageHandler) RemoveImage(rw http.ResponseWriter, r *http.Request) {
	f.respond(rw, f.workflow.RemoveImage())
}

// GetFile handles GET /images/{path}
//
// swagger:route GET /images/{path} images getImage
//
// Serves a locally stored image.
//
// Produces:
// - image/png
// - image/jpeg
//
// Responses:
//
//	200: imageResponse
//	404: errorResponse
func (f *ImageHandler) GetFile(rw http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]

	f.log.Debug("Handle GET", "path", path)

	file, err := f.store.Open(path)
	if err != nil {
		f.log.Error("Unable to get the file", "path", path, "error", err)
		writeError(rw, http.StatusNotFound, "File not found")
		return
	}
	defer file.Close()

	// Determine the content type
	contentType, err := getContentType(file)
	if err != nil {
		f.log.Error("Unable to detect content type", "error", err)
		contentType = "application/octet-stream"
	}
	rw.Header().Set("Content-Type", contentType)
	rw.Header().Set("Cache-Control", "max-age=3600")

	// Write the file content to the response
	_, err = io.Copy(rw, file)
	if err != nil {
		f.log.Error("Unable to write file to response", "error", err)
	}
}

func (f *ImageHandler) respond(rw http.ResponseWriter, err error) {
	if err == nil {
		writeJSON(rw, http.StatusOK, f.workflow.Snapshot())
		return
	}
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		f.log.Error("Image request failed", "error", err)
	}
	s := f.workflow.Snapshot()
	writeJSON(rw, status, ErrorResponse{Message: err.Error(), State: &s})
}

// getContentType determines the MIME type of the file based on its content
// and rewinds it
func getContentType(file io.ReadSeeker) (string, error) {
	// Read a portion of the file to detect the content type
	buf := make([]byte, 512) // 512 bytes is sufficient
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}

	// Reset the file pointer to the beginning
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return "", err
	}

	return http.DetectContentType(buf[:n]), nil
}
