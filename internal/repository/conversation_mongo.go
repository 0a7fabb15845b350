package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

var _ ConversationRepository = &ConversationMongo{}

type turnDocument struct {
	ID             string    `bson:"_id"`
	ConversationID string    `bson:"conversationId"`
	UserID         string    `bson:"userId"`
	Question       string    `bson:"question"`
	Answer         string    `bson:"answer"`
	ResponseTimeMs int64     `bson:"responseTimeMs"`
	CreatedAt      time.Time `bson:"createdAt"`
}

type ConversationMongo struct {
	coll *mongo.Collection
}

func NewConversationMongo(db *mongo.Database) *ConversationMongo {
	return &ConversationMongo{coll: db.Collection(conversationsCollection)}
}

func (r *ConversationMongo) AppendTurn(ctx context.Context, turn *entity.ConversationTurn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	_, err := r.coll.InsertOne(ctx, turnDocument{
		ID:             turn.ID,
		ConversationID: turn.ConversationID,
		UserID:         turn.UserID,
		Question:       turn.Question,
		Answer:         turn.Answer,
		ResponseTimeMs: turn.ResponseTimeMs,
		CreatedAt:      turn.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("append conversation turn: %w", err)
	}
	return nil
}

func (r *ConversationMongo) ListByConversation(ctx context.Context, conversationID string) ([]*entity.ConversationTurn, error) {
	opts := mongoopts.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := r.coll.Find(ctx, bson.M{"conversationId": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list conversation turns: %w", err)
	}
	defer cur.Close(ctx)

	var docs []turnDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode conversation turns: %w", err)
	}

	turns := make([]*entity.ConversationTurn, 0, len(docs))
	for _, d := range docs {
		turns = append(turns, &entity.ConversationTurn{
			ID:             d.ID,
			ConversationID: d.ConversationID,
			UserID:         d.UserID,
			Question:       d.Question,
			Answer:         d.Answer,
			ResponseTimeMs: d.ResponseTimeMs,
			CreatedAt:      d.CreatedAt.UTC(),
		})
	}
	return turns, nil
}

func (r *ConversationMongo) ConversationStats(ctx context.Context, since time.Time) (*entity.ConversationStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$conversationId"},
			{Key: "turns", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "responseTime", Value: bson.D{{Key: "$sum", Value: "$responseTimeMs"}}},
			{Key: "lastAt", Value: bson.D{{Key: "$max", Value: "$createdAt"}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "recent", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{bson.D{{Key: "$gte", Value: bson.A{"$lastAt", since}}}, 1, 0}},
			}}}},
			{Key: "turns", Value: bson.D{{Key: "$sum", Value: "$turns"}}},
			{Key: "responseTime", Value: bson.D{{Key: "$sum", Value: "$responseTime"}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("conversation stats: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Total        int64 `bson:"total"`
		Recent       int64 `bson:"recent"`
		Turns        int64 `bson:"turns"`
		ResponseTime int64 `bson:"responseTime"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode conversation stats: %w", err)
	}

	stats := &entity.ConversationStats{}
	if len(rows) > 0 {
		stats.TotalConversations = rows[0].Total
		stats.ConversationsLast24h = rows[0].Recent
		if rows[0].Turns > 0 {
			stats.AvgResponseTimeMs = float64(rows[0].ResponseTime) / float64(rows[0].Turns)
		}
	}
	return stats, nil
}

func (r *ConversationMongo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
