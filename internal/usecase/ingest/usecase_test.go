package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/validator"
	"github.com/stretchr/testify/require"
)

type memoryDocuments struct {
	mu        sync.Mutex
	docs      map[string]*entity.Document
	createErr error
}

func newMemoryDocuments() *memoryDocuments {
	return &memoryDocuments{docs: map[string]*entity.Document{}}
}

func (m *memoryDocuments) CreateDocument(_ context.Context, doc *entity.Document) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

func (m *memoryDocuments) GetDocument(_ context.Context, id string) (*entity.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, entity.ErrDocumentNotFound
	}
	return doc, nil
}

func (m *memoryDocuments) ListDocuments(_ context.Context, limit int) ([]*entity.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Document
	for _, d := range m.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryDocuments) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return entity.ErrDocumentNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memoryDocuments) CountDocuments(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.docs)), nil
}

func (m *memoryDocuments) ListPending(context.Context, int) ([]*entity.Document, error) {
	return nil, nil
}

func (m *memoryDocuments) MarkIndexed(context.Context, string, int, time.Time) error { return nil }

func (m *memoryDocuments) MarkFailed(context.Context, string, string) error { return nil }

type fakeBlobs struct {
	objects   map[string][]byte
	putErr    error
	ensured   int
	deleteErr error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}}
}

func (f *fakeBlobs) EnsureContainer(context.Context) error {
	f.ensured++
	return nil
}

func (f *fakeBlobs) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects[key] = data
	return "https://blobs.test/documents/" + key, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.objects[key]; !ok {
		return entity.ErrBlobNotFound
	}
	delete(f.objects, key)
	return nil
}

type recordingRemover struct {
	removed []string
	err     error
}

func (r *recordingRemover) DeleteDocument(_ context.Context, id string) error {
	r.removed = append(r.removed, id)
	return r.err
}

func testValidator() *validator.Validator {
	return validator.NewValidator(config.FileUploadConfig{MaxFileSize: 1024, MaxAudioSize: 1024})
}

func TestIngest(t *testing.T) {
	docs := newMemoryDocuments()
	blobs := newFakeBlobs()
	uc := NewUsecase(docs, blobs, nil, testValidator())

	doc, err := uc.Ingest(context.Background(), &entity.UploadDocumentRequest{
		Filename:    "horarios (2026).md",
		ContentType: "text/markdown",
		Content:     []byte("# Horarios\nLunes a viernes"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)
	require.False(t, doc.Indexed)
	require.Equal(t, entity.DocumentStatusPending, doc.Status())
	require.Equal(t, "horarios (2026).md", doc.Filename)
	require.Equal(t, doc.ID+"-horarios_2026.md", doc.BlobKey)
	require.True(t, strings.HasSuffix(doc.BlobURL, doc.BlobKey))
	require.Equal(t, 1, blobs.ensured)
	require.Contains(t, blobs.objects, doc.BlobKey)

	stored, err := docs.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, doc, stored)
}

func TestIngest_Rejected(t *testing.T) {
	uc := NewUsecase(newMemoryDocuments(), newFakeBlobs(), nil, testValidator())

	_, err := uc.Ingest(context.Background(), &entity.UploadDocumentRequest{Filename: "a.md"})
	require.ErrorIs(t, err, entity.ErrNoFile)

	_, err = uc.Ingest(context.Background(), &entity.UploadDocumentRequest{Filename: "a.pdf", Content: []byte("x")})
	require.ErrorIs(t, err, entity.ErrInvalidExtension)

	_, err = uc.Ingest(context.Background(), &entity.UploadDocumentRequest{Filename: "a.txt", Content: make([]byte, 2048)})
	require.ErrorIs(t, err, entity.ErrPayloadTooLarge)
}

func TestIngest_NoBlobStorage(t *testing.T) {
	docs := newMemoryDocuments()
	uc := NewUsecase(docs, nil, nil, testValidator())

	_, err := uc.Ingest(context.Background(), &entity.UploadDocumentRequest{Filename: "a.txt", Content: []byte("x")})
	require.ErrorIs(t, err, entity.ErrStorageUnavailable)

	n, _ := docs.CountDocuments(context.Background())
	require.Zero(t, n)
}

func TestIngest_BlobFailureWritesNoRecord(t *testing.T) {
	docs := newMemoryDocuments()
	blobs := newFakeBlobs()
	blobs.putErr = errors.New("connection reset")
	uc := NewUsecase(docs, blobs, nil, testValidator())

	_, err := uc.Ingest(context.Background(), &entity.UploadDocumentRequest{Filename: "a.txt", Content: []byte("x")})
	require.Error(t, err)

	n, _ := docs.CountDocuments(context.Background())
	require.Zero(t, n)
}

func TestDeindex(t *testing.T) {
	docs := newMemoryDocuments()
	blobs := newFakeBlobs()
	remover := &recordingRemover{}
	uc := NewUsecase(docs, blobs, remover, testValidator())

	doc, err := uc.Ingest(context.Background(), &entity.UploadDocumentRequest{Filename: "a.txt", Content: []byte("x")})
	require.NoError(t, err)

	require.NoError(t, uc.Deindex(context.Background(), doc.ID))
	require.Empty(t, blobs.objects)
	require.Equal(t, []string{doc.ID}, remover.removed)

	_, err = docs.GetDocument(context.Background(), doc.ID)
	require.ErrorIs(t, err, entity.ErrDocumentNotFound)

	err = uc.Deindex(context.Background(), doc.ID)
	require.ErrorIs(t, err, entity.ErrDocumentNotFound)
}

func TestDeindex_BlobAlreadyGone(t *testing.T) {
	docs := newMemoryDocuments()
	remover := &recordingRemover{err: errors.New("index offline")}
	uc := NewUsecase(docs, newFakeBlobs(), remover, testValidator())

	require.NoError(t, docs.CreateDocument(context.Background(), &entity.Document{ID: "d1", BlobKey: "d1-a.txt"}))

	require.NoError(t, uc.Deindex(context.Background(), "d1"))
	_, err := docs.GetDocument(context.Background(), "d1")
	require.ErrorIs(t, err, entity.ErrDocumentNotFound)
}

func TestDeindex_BlobFailureKeepsRecord(t *testing.T) {
	docs := newMemoryDocuments()
	blobs := newFakeBlobs()
	blobs.deleteErr = errors.New("access denied")
	uc := NewUsecase(docs, blobs, nil, testValidator())

	require.NoError(t, docs.CreateDocument(context.Background(), &entity.Document{ID: "d1", BlobKey: "d1-a.txt"}))

	require.Error(t, uc.Deindex(context.Background(), "d1"))
	_, err := docs.GetDocument(context.Background(), "d1")
	require.NoError(t, err)
}

func TestListPublic_Limit(t *testing.T) {
	docs := newMemoryDocuments()
	uc := NewUsecase(docs, newFakeBlobs(), nil, testValidator())

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < entity.PublicDocumentsLimit+5; i++ {
		require.NoError(t, docs.CreateDocument(context.Background(), &entity.Document{ID: fmt.Sprintf("doc-%d", i), UploadedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	public, err := uc.ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, public, entity.PublicDocumentsLimit)
	require.Equal(t, base.Add(time.Duration(entity.PublicDocumentsLimit+4)*time.Minute), public[0].UploadedAt)

	all, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, entity.PublicDocumentsLimit+5)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	uc := NewUsecase(newMemoryDocuments(), nil, nil, testValidator())
	docs, err := uc.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, docs)
}
