package repository

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"autopier/entity"
)

// SaveMessage appends one message to the ledger. Messages are never
// updated or deleted afterwards.
func (m *MongoDB) SaveMessage(msg entity.Message) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)
	_, err = collection.InsertOne(m.ctx, msg)
	if err != nil {
		return fmt.Errorf("mongodb insert message: %w", err)
	}
	return nil
}

// GetMessagesByConversation returns the full message list for one
// conversation, ascending by creation time.
func (m *MongoDB) GetMessagesByConversation(ref entity.ConversationRef) ([]entity.Message, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	field := "negotiation_id"
	if ref.Kind == entity.ConversationOrder {
		field = "order_id"
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := collection.Find(m.ctx, bson.D{{Key: field, Value: ref.ID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find messages: %w", err)
	}
	defer cursor.Close(m.ctx)

	var messages []entity.Message
	if err = cursor.All(m.ctx, &messages); err != nil {
		return nil, fmt.Errorf("mongodb decode messages: %w", err)
	}
	return messages, nil
}

// EnsureMessageIndexes creates the conversation lookup indexes.
func (m *MongoDB) EnsureMessageIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "negotiation_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	_, err = collection.Indexes().CreateMany(m.ctx, indexes)
	if err != nil {
		return fmt.Errorf("mongodb create message indexes: %w", err)
	}
	return nil
}
