package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"autopier/entity"
)

// SaveChatSession creates the session unless one already exists for the
// same (type, referenceId). The reference filter plus a no-op update with
// upsert keeps creation idempotent without a read-then-write race.
func (m *MongoDB) SaveChatSession(session entity.ChatSession) (entity.ChatSession, error) {
	connection, err := m.connect()
	if err != nil {
		return entity.ChatSession{}, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)
	filter := bson.D{{Key: "type", Value: session.Type}, {Key: "reference_id", Value: session.ReferenceID}}
	update := bson.D{{Key: "$setOnInsert", Value: session}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var result entity.ChatSession
	err = collection.FindOneAndUpdate(m.ctx, filter, update, opts).Decode(&result)
	if err != nil {
		return entity.ChatSession{}, fmt.Errorf("mongodb upsert chat session: %w", err)
	}
	return result, nil
}

func (m *MongoDB) GetChatSessionByReference(kind entity.ConversationKind, referenceID string) (*entity.ChatSession, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)
	filter := bson.D{{Key: "type", Value: string(kind)}, {Key: "reference_id", Value: referenceID}}

	var session entity.ChatSession
	err = collection.FindOne(m.ctx, filter).Decode(&session)
	if err != nil {
		return nil, m.findError(err)
	}
	return &session, nil
}

func (m *MongoDB) GetActiveChatsForPhone(normalizedPhone string) ([]entity.ChatSession, error) {
	return m.findSessions(bson.D{
		{Key: "client_phone", Value: normalizedPhone},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: entity.ChatClosed}}},
	})
}

func (m *MongoDB) GetAllActiveChats() ([]entity.ChatSession, error) {
	return m.findSessions(bson.D{{Key: "status", Value: bson.D{{Key: "$ne", Value: entity.ChatClosed}}}})
}

func (m *MongoDB) findSessions(filter bson.D) ([]entity.ChatSession, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}})

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find chat sessions: %w", err)
	}
	defer cursor.Close(m.ctx)

	var sessions []entity.ChatSession
	if err = cursor.All(m.ctx, &sessions); err != nil {
		return nil, fmt.Errorf("mongodb decode chat sessions: %w", err)
	}
	return sessions, nil
}

// ApplyMessageToSession folds a message event into the session summary.
// The unread counter uses $inc so concurrent client messages never lose
// an increment. Returns nil when no session exists for the reference.
func (m *MongoDB) ApplyMessageToSession(kind entity.ConversationKind, referenceID string, msg entity.Message, fromClient bool) (*entity.ChatSession, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)
	filter := bson.D{{Key: "type", Value: string(kind)}, {Key: "reference_id", Value: referenceID}}

	set := bson.D{
		{Key: "last_message_at", Value: msg.CreatedAt},
		{Key: "last_message_preview", Value: msg.Preview()},
		{Key: "updated_at", Value: time.Now().UTC()},
	}
	var update bson.D
	if fromClient {
		set = append(set, bson.E{Key: "status", Value: entity.ChatWaitingResponse})
		update = bson.D{{Key: "$set", Value: set}, {Key: "$inc", Value: bson.D{{Key: "unread_count", Value: 1}}}}
	} else {
		set = append(set,
			bson.E{Key: "status", Value: entity.ChatActive},
			bson.E{Key: "unread_count", Value: 0},
		)
		update = bson.D{{Key: "$set", Value: set}}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session entity.ChatSession
	err = collection.FindOneAndUpdate(m.ctx, filter, update, opts).Decode(&session)
	if err != nil {
		return nil, m.findError(err)
	}
	return &session, nil
}

func (m *MongoDB) MarkChatRead(kind entity.ConversationKind, referenceID string) error {
	return m.updateSessionStatus(kind, referenceID, entity.ChatActive, true)
}

func (m *MongoDB) CloseChatSession(kind entity.ConversationKind, referenceID string) error {
	return m.updateSessionStatus(kind, referenceID, entity.ChatClosed, false)
}

func (m *MongoDB) updateSessionStatus(kind entity.ConversationKind, referenceID, status string, resetUnread bool) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)
	filter := bson.D{{Key: "type", Value: string(kind)}, {Key: "reference_id", Value: referenceID}}

	set := bson.D{
		{Key: "status", Value: status},
		{Key: "updated_at", Value: time.Now().UTC()},
	}
	if resetUnread {
		set = append(set, bson.E{Key: "unread_count", Value: 0})
	}

	_, err = collection.UpdateOne(m.ctx, filter, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("mongodb update chat session: %w", err)
	}
	return nil
}

// EnsureChatSessionIndexes creates the reference and phone indexes.
func (m *MongoDB) EnsureChatSessionIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "reference_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "client_phone", Value: 1}, {Key: "last_message_at", Value: -1}}},
	}
	_, err = collection.Indexes().CreateMany(m.ctx, indexes)
	if err != nil {
		return fmt.Errorf("mongodb create chat session indexes: %w", err)
	}
	return nil
}
