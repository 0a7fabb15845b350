package entity

// PublicDocumentsLimit caps the unauthenticated document listing.
const PublicDocumentsLimit = 50

type UploadDocumentRequest struct {
	Filename    string
	ContentType string
	Content     []byte
}

type UploadDocumentResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename"`
	BlobURL    string `json:"blobUrl"`
}

type ListDocumentsResponse struct {
	Documents []*Document `json:"documents"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
