package handler

import (
	"encoding/json"
	"net/http"
	"rovify-backend/event"
	"rovify-backend/response"
	"rovify-backend/storage"
	"time"
)

const (
	multipartOverhead = 1 << 20
	presignTTL        = 15 * time.Minute
)

type presignRequest struct {
	ContentType string `json:"contentType"`
	Folder      string `json:"folder,omitempty"`
}

// PinFile pins the multipart "file" field to IPFS.
func PinFile(service *event.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+multipartOverhead)
		file, header, err := r.FormFile("file")
		if err != nil {
			response.SendError(ctx, w, "pinFile", response.BadRequest("A file is required", "pinFile: "+err.Error()))
			return
		}
		defer file.Close()

		res, err := service.PinFile(ctx, header.Filename, file)
		if err != nil {
			response.SendError(ctx, w, "pinFile", err)
			return
		}
		response.OK(w, res)
	}
}

func PinJSON(service *event.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var content json.RawMessage
		if err := decode(w, r, &content); err != nil {
			response.SendError(ctx, w, "pinJSON", err)
			return
		}

		res, err := service.PinJSON(ctx, content)
		if err != nil {
			response.SendError(ctx, w, "pinJSON", err)
			return
		}
		response.OK(w, res)
	}
}

// UploadImage stores the multipart "file" field in the bucket. The optional "folder" field picks
// the key prefix.
func UploadImage(uploader storage.Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if uploader == nil {
			response.SendError(ctx, w, "uploadImage", response.ServiceUnavailable("Uploads are not configured"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+multipartOverhead)
		file, header, err := r.FormFile("file")
		if err != nil {
			response.SendError(ctx, w, "uploadImage", response.BadRequest("A file is required", "uploadImage: "+err.Error()))
			return
		}
		defer file.Close()

		if header.Size > storage.MaxImageSize {
			response.SendError(ctx, w, "uploadImage", response.BadRequest("File is too large", "uploadImage: file exceeds limit"))
			return
		}

		contentType := header.Header.Get("Content-Type")
		if !storage.Supported(contentType) {
			response.SendError(ctx, w, "uploadImage", response.InvalidData("unsupported content type "+contentType))
			return
		}

		upload, err := uploader.Upload(ctx, r.FormValue("folder"), contentType, file)
		if err != nil {
			response.SendError(ctx, w, "uploadImage", err)
			return
		}
		response.Created(w, upload, "File uploaded")
	}
}

func PresignUpload(uploader storage.Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if uploader == nil {
			response.SendError(ctx, w, "presignUpload", response.ServiceUnavailable("Uploads are not configured"))
			return
		}

		var req presignRequest
		if err := decode(w, r, &req); err != nil {
			response.SendError(ctx, w, "presignUpload", err)
			return
		}
		if !storage.Supported(req.ContentType) {
			response.SendError(ctx, w, "presignUpload", response.InvalidData("unsupported content type "+req.ContentType))
			return
		}

		upload, err := uploader.Presign(ctx, req.Folder, req.ContentType, presignTTL)
		if err != nil {
			response.SendError(ctx, w, "presignUpload", err)
			return
		}
		response.OK(w, upload)
	}
}
