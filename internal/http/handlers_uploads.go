package httpx

import (
	"errors"
	"io"
	"net/http"

	"github.com/splax/learnhub/internal/routing"
	"github.com/splax/learnhub/internal/service/upload"
)

const (
	uploadFormField   = "file"
	multipartOverhead = 64 << 10
)

// handleUpload streams the "file" part of a multipart form straight into the
// upload service without buffering it on disk first.
func (r *Router) handleUpload(w http.ResponseWriter, req *routing.Request) {
	httpReq := req.HTTP
	httpReq.Body = http.MaxBytesReader(w, httpReq.Body, r.svc.Uploads.MaxBytes()+multipartOverhead)
	reader, err := httpReq.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Multipart form with a file field required")
		return
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				r.fail(w, req, upload.ErrTooLarge)
				return
			}
			writeError(w, http.StatusBadRequest, "Malformed multipart body")
			return
		}
		if part.FormName() != uploadFormField || part.FileName() == "" {
			_ = part.Close()
			continue
		}
		stored, err := r.svc.Uploads.Store(req.Context(), caller(req), part.FileName(), part)
		_ = part.Close()
		if err != nil {
			r.failUpload(w, req, err)
			return
		}
		writeMessage(w, http.StatusCreated, "File uploaded", stored)
		return
	}
	writeErrorDetails(w, http.StatusUnprocessableEntity, messageValidation, map[string]string{uploadFormField: "file is required"}, nil)
}

func (r *Router) failUpload(w http.ResponseWriter, req *routing.Request, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		err = upload.ErrTooLarge
	}
	r.fail(w, req, err)
}

func (r *Router) handleGetUpload(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	stored, err := r.svc.Uploads.Get(req.Context(), caller(req), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, stored)
}

func (r *Router) handleDeleteUpload(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.svc.Uploads.Delete(req.Context(), caller(req), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "File deleted", nil)
}
