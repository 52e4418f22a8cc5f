package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/service"
	"github.com/yasinhessnawi1/taskmanager/internal/storage"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// multipartOverhead is the room left above a file size limit for the
// boundaries and part headers of the form
const multipartOverhead = 64 << 10

// DocumentHandler handles HTTP requests related to documents.
type DocumentHandler struct {
	documentService DocumentServiceInterface
}

// NewDocumentHandler creates a new DocumentHandler with the provided service.
func NewDocumentHandler(documentService DocumentServiceInterface) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// UploadDocument handles POST /upload with the file in the "upload" form field
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	principal, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	file, header, err := readUpload(w, r, constants.DocumentFormField, storage.DocumentPolicy.MaxBytes)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	defer file.Close()

	if _, err := h.documentService.Upload(r.Context(), principal.UserID(), header.Filename, header.Size, file); err != nil {
		writeUploadError(w, err)
		return
	}

	utils.Message(w, http.StatusOK, constants.MsgDocumentUploaded)
}

// readUpload parses a multipart body capped near maxBytes and returns the file
// sent in field.
//
// Parameters:
//   - w: The response writer, needed by http.MaxBytesReader
//   - r: The multipart request
//   - field: The form field carrying the file
//   - maxBytes: The largest file the caller accepts
//
// Returns:
//   - The file and its header. The caller closes the file.
//   - A 400 AppError "File too large" when the body exceeds the cap
//   - A 400 AppError "No file provided." when the field is missing
func readUpload(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	limit := maxBytes + multipartOverhead
	if r.ContentLength > limit {
		return nil, nil, utils.NewBadRequestError(constants.MsgFileTooLarge)
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return nil, nil, utils.NewBadRequestError(constants.MsgFileTooLarge)
		}
		log.Debug().Err(err).Str("field", field).Msg("Unreadable multipart body")
		return nil, nil, utils.NewBadRequestError(constants.MsgNoFileProvided)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, utils.NewBadRequestError(constants.MsgNoFileProvided)
	}

	return file, header, nil
}

// writeUploadError answers a failed storage operation. A backend failure is a
// bodiless 500, anything else goes through the regular error mapping.
func writeUploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrStorageUnavailable) {
		log.Error().Err(err).Str("category", constants.LogCategoryStorage).Msg("Blob storage operation failed")
		utils.Empty(w, http.StatusInternalServerError)
		return
	}
	utils.HandleError(w, err)
}
