package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

var _ DocumentRepository = &DocumentMongo{}

type documentRecord struct {
	ID          string     `bson:"_id"`
	Filename    string     `bson:"filename"`
	BlobKey     string     `bson:"blobKey"`
	BlobURL     string     `bson:"blobUrl"`
	ContentType string     `bson:"contentType"`
	Size        int64      `bson:"size"`
	Indexed     bool       `bson:"indexed"`
	UploadedAt  time.Time  `bson:"uploadedAt"`
	IndexedAt   *time.Time `bson:"indexedAt,omitempty"`
	TotalChunks *int       `bson:"totalChunks,omitempty"`
	IndexError  *string    `bson:"indexError,omitempty"`
}

func (d *documentRecord) toEntity() *entity.Document {
	doc := &entity.Document{
		ID:          d.ID,
		Filename:    d.Filename,
		BlobKey:     d.BlobKey,
		BlobURL:     d.BlobURL,
		ContentType: d.ContentType,
		Size:        d.Size,
		Indexed:     d.Indexed,
		UploadedAt:  d.UploadedAt.UTC(),
		TotalChunks: d.TotalChunks,
		IndexError:  d.IndexError,
	}
	if d.IndexedAt != nil {
		at := d.IndexedAt.UTC()
		doc.IndexedAt = &at
	}
	return doc
}

type DocumentMongo struct {
	coll *mongo.Collection
}

func NewDocumentMongo(db *mongo.Database) *DocumentMongo {
	return &DocumentMongo{coll: db.Collection(documentsCollection)}
}

func (r *DocumentMongo) CreateDocument(ctx context.Context, doc *entity.Document) error {
	_, err := r.coll.InsertOne(ctx, documentRecord{
		ID:          doc.ID,
		Filename:    doc.Filename,
		BlobKey:     doc.BlobKey,
		BlobURL:     doc.BlobURL,
		ContentType: doc.ContentType,
		Size:        doc.Size,
		Indexed:     doc.Indexed,
		UploadedAt:  doc.UploadedAt,
	})
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (r *DocumentMongo) GetDocument(ctx context.Context, id string) (*entity.Document, error) {
	var rec documentRecord
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return rec.toEntity(), nil
}

func (r *DocumentMongo) ListDocuments(ctx context.Context, limit int) ([]*entity.Document, error) {
	opts := mongoopts.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, "list documents", bson.M{}, opts)
}

func (r *DocumentMongo) DeleteDocument(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return entity.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentMongo) CountDocuments(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func (r *DocumentMongo) ListPending(ctx context.Context, limit int) ([]*entity.Document, error) {
	opts := mongoopts.Find().SetSort(bson.D{{Key: "uploadedAt", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	filter := bson.M{"indexed": false, "indexError": bson.M{"$exists": false}}
	return r.find(ctx, "list pending documents", filter, opts)
}

func (r *DocumentMongo) MarkIndexed(ctx context.Context, id string, totalChunks int, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   bson.M{"indexed": true, "indexedAt": at, "totalChunks": totalChunks},
		"$unset": bson.M{"indexError": ""},
	})
	if err != nil {
		return fmt.Errorf("mark document indexed: %w", err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentMongo) MarkFailed(ctx context.Context, id string, reason string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "indexed": false}, bson.M{
		"$set": bson.M{"indexError": reason},
	})
	if err != nil {
		return fmt.Errorf("mark document failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentMongo) find(ctx context.Context, op string, filter any, opts *mongoopts.FindOptions) ([]*entity.Document, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	var recs []documentRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	docs := make([]*entity.Document, 0, len(recs))
	for i := range recs {
		docs = append(docs, recs[i].toEntity())
	}
	return docs, nil
}
