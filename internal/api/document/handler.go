package document

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/logger"
	"github.com/futig/rag-gateway/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	fileField = "file"

	// parsed multipart parts above this size spill to temp files
	multipartMemory = 8 << 20
)

type Handler struct {
	usecase IngestUsecase
	cfg     config.FileUploadConfig
	rs      *response.Responder
}

func NewHandler(usecase IngestUsecase, cfg config.FileUploadConfig, rs *response.Responder) *Handler {
	return &Handler{usecase: usecase, cfg: cfg, rs: rs}
}

// Upload handles POST /admin/upload-document
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UploadDocument")

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.rs.FromError(ctx, w, fmt.Errorf("%w: upload exceeds %d bytes", entity.ErrPayloadTooLarge, tooLarge.Limit))
			return
		}
		if errors.Is(err, http.ErrNotMultipart) {
			h.rs.FromError(ctx, w, fmt.Errorf("%w: %w", entity.ErrNoFile, err))
			return
		}
		h.rs.Error(ctx, w, http.StatusBadRequest, "invalid form data", err)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(fileField)
	if err != nil {
		h.rs.FromError(ctx, w, fmt.Errorf("%w: %w", entity.ErrNoFile, err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.rs.Error(ctx, w, http.StatusBadRequest, "failed to read uploaded file", err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(content)
	}

	ctxzap.Info(ctx, "uploading document",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)

	doc, err := h.usecase.Ingest(ctx, &entity.UploadDocumentRequest{
		Filename:    header.Filename,
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		h.rs.FromError(ctx, w, err)
		return
	}

	h.rs.Success(w, &entity.UploadDocumentResponse{
		Success:    true,
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		BlobURL:    doc.BlobURL,
	})
}

// ListAll handles GET /admin/documents
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListDocuments")

	docs, err := h.usecase.List(ctx)
	if err != nil {
		h.rs.FromError(ctx, w, err)
		return
	}
	h.rs.Success(w, &entity.ListDocumentsResponse{Documents: docs})
}

// ListPublic handles GET /documents
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListPublicDocuments")

	docs, err := h.usecase.ListPublic(ctx)
	if err != nil {
		h.rs.FromError(ctx, w, err)
		return
	}
	h.rs.Success(w, &entity.ListDocumentsResponse{Documents: docs})
}

// Delete handles DELETE /admin/documents/{documentId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentId")
	ctx := logger.AddFields(r.Context(),
		zap.String("document_id", documentID),
		zap.String("action", "DeleteDocument"),
	)

	if err := h.usecase.Deindex(ctx, documentID); err != nil {
		h.rs.FromError(ctx, w, err)
		return
	}
	h.rs.Success(w, &entity.SuccessResponse{Success: true})
}
