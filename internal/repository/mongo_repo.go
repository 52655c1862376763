package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/juampibolanio/trofi-chat-service/internal/models"
)

type mongoRepo struct {
	chatColl *mongo.Collection
	msgColl  *mongo.Collection
}

func NewMongoRepository(chatColl, msgColl *mongo.Collection, log *zap.SugaredLogger) Repository {
	r := &mongoRepo{chatColl: chatColl, msgColl: msgColl}
	// listing chats by participant depends on these; a failure here must
	// be visible at startup
	if _, err := r.chatColl.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "participants", Value: 1}},
		Options: options.Index().SetName("participants_idx"),
	}); err != nil {
		log.Errorw("create participants index", "err", err)
	}
	if _, err := r.msgColl.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "timestamp", Value: -1}},
	}); err != nil {
		log.Errorw("create messages index", "err", err)
	}
	return r
}

func (r *mongoRepo) CreateChatIfAbsent(ctx context.Context, chat *models.Chat) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	doc := bson.M{
		"participants": chat.Participants,
		"last_message": chat.LastMessage,
		"timestamp":    chat.Timestamp,
		"read_by":      chat.ReadBy,
		"deleted_by":   chat.DeletedBy,
	}
	res, err := r.chatColl.UpdateByID(ctx, chat.ID,
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (r *mongoRepo) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c models.Chat
	if err := r.chatColl.FindOne(ctx, bson.M{"_id": chatID}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if c.ReadBy == nil {
		c.ReadBy = map[string]bool{}
	}
	if c.DeletedBy == nil {
		c.DeletedBy = map[string]bool{}
	}
	return &c, nil
}

func (r *mongoRepo) ListChatsForUser(ctx context.Context, uid string) ([]models.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"participants":      uid,
		"deleted_by." + uid: bson.M{"$ne": true},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.chatColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Chat{}
	for cur.Next(ctx) {
		var c models.Chat
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		if c.ReadBy == nil {
			c.ReadBy = map[string]bool{}
		}
		if c.DeletedBy == nil {
			c.DeletedBy = map[string]bool{}
		}
		out = append(out, c)
	}
	return out, cur.Err()
}

func (r *mongoRepo) TouchChat(ctx context.Context, chatID, lastMessage string, ts int64, readBy map[string]bool) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.chatColl.UpdateByID(ctx, chatID, bson.M{"$set": bson.M{
		"last_message": lastMessage,
		"timestamp":    ts,
		"read_by":      readBy,
	}})
	return err
}

func (r *mongoRepo) SetChatDeleted(ctx context.Context, chatID, uid string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// single-key merge, the other participant's flag is untouched
	_, err := r.chatColl.UpdateByID(ctx, chatID, bson.M{"$set": bson.M{"deleted_by." + uid: true}})
	return err
}

func (r *mongoRepo) SetChatRead(ctx context.Context, chatID, uid string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.chatColl.UpdateByID(ctx, chatID, bson.M{"$set": bson.M{"read_by." + uid: true}})
	return err
}

func (r *mongoRepo) InsertMessage(ctx context.Context, m *models.Message) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if m.ID == "" {
		// ObjectIDs are time-prefixed, so ids stay creation-ordered
		m.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.msgColl.InsertOne(ctx, m)
	return err
}

func (r *mongoRepo) GetMessage(ctx context.Context, chatID, messageID string) (*models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m models.Message
	err := r.msgColl.FindOne(ctx, bson.M{"_id": messageID, "chat_id": chatID}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *mongoRepo) ListMessages(ctx context.Context, chatID string, limit int64) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// newest first so the limit keeps the most recent window; _id breaks
	// timestamp ties since ObjectIDs are creation-ordered
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := r.msgColl.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Message{}
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	// back to chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *mongoRepo) RemoveMessage(ctx context.Context, chatID, messageID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.msgColl.DeleteOne(ctx, bson.M{"_id": messageID, "chat_id": chatID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
