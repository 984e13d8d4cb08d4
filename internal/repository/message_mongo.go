package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathima-sithara/quickchat/internal/apperr"
	"github.com/fathima-sithara/quickchat/internal/models"
)

type MongoMessageStore struct {
	coll *mongo.Collection
}

func NewMongoMessageStore(coll *mongo.Collection) *MongoMessageStore {
	ix := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("conversation_idx"),
		},
		{
			Keys:    bson.D{{Key: "receiver_id", Value: 1}, {Key: "seen", Value: 1}},
			Options: options.Index().SetName("unseen_idx"),
		},
	}
	_, _ = coll.Indexes().CreateMany(context.Background(), ix)
	return &MongoMessageStore{coll: coll}
}

func (s *MongoMessageStore) Insert(ctx context.Context, m *models.Message) (*models.Message, error) {
	// ids are stored as object-id hex so the string _id round-trips on decode
	m.ID = primitive.NewObjectID().Hex()
	m.CreatedAt = time.Now().UTC()
	if _, err := s.coll.InsertOne(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MongoMessageStore) Conversation(ctx context.Context, userA, userB string) ([]*models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": userA, "receiver_id": userB},
		bson.M{"sender_id": userB, "receiver_id": userA},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Message{}
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

func (s *MongoMessageStore) MarkConversationSeen(ctx context.Context, viewerID, otherID string) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"sender_id": otherID, "receiver_id": viewerID, "seen": false},
		bson.M{"$set": bson.M{"seen": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *MongoMessageStore) MarkMessageSeen(ctx context.Context, id string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"seen": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *MongoMessageStore) UnseenCounts(ctx context.Context, viewerID string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"receiver_id": viewerID, "seen": false}}},
		{{Key: "$group", Value: bson.M{"_id": "$sender_id", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	counts := map[string]int64{}
	for cur.Next(ctx) {
		var row struct {
			SenderID string `bson:"_id"`
			Count    int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.SenderID] = row.Count
	}
	return counts, cur.Err()
}
