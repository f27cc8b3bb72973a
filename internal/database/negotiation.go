package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"autopier/entity"
)

func (m *MongoDB) SaveNegotiation(n entity.Negotiation) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(negotiationsCollection)
	_, err = collection.InsertOne(m.ctx, n)
	if err != nil {
		return fmt.Errorf("mongodb insert negotiation: %w", err)
	}
	return nil
}

func (m *MongoDB) GetNegotiationByID(id string) (*entity.Negotiation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(negotiationsCollection)

	var n entity.Negotiation
	err = collection.FindOne(m.ctx, bson.D{{Key: "_id", Value: id}}).Decode(&n)
	if err != nil {
		return nil, m.findError(err)
	}
	return &n, nil
}

func (m *MongoDB) GetNegotiations() ([]entity.Negotiation, error) {
	return m.findNegotiations(bson.D{}, bson.D{{Key: "created_at", Value: -1}})
}

func (m *MongoDB) GetNegotiationsByPhone(normalizedPhone string) ([]entity.Negotiation, error) {
	return m.findNegotiations(bson.D{{Key: "customer_phone", Value: normalizedPhone}}, bson.D{{Key: "updated_at", Value: -1}})
}

func (m *MongoDB) findNegotiations(filter, sortKeys bson.D) ([]entity.Negotiation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(negotiationsCollection)
	opts := options.Find().SetSort(sortKeys)

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find negotiations: %w", err)
	}
	defer cursor.Close(m.ctx)

	var negotiations []entity.Negotiation
	if err = cursor.All(m.ctx, &negotiations); err != nil {
		return nil, fmt.Errorf("mongodb decode negotiations: %w", err)
	}
	return negotiations, nil
}

func (m *MongoDB) UpdateNegotiationStatus(id, status string) (*entity.Negotiation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(negotiationsCollection)
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n entity.Negotiation
	err = collection.FindOneAndUpdate(m.ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&n)
	if err != nil {
		return nil, m.findError(err)
	}
	return &n, nil
}

// EnsureNegotiationIndexes creates the phone lookup index.
func (m *MongoDB) EnsureNegotiationIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(negotiationsCollection)
	index := mongo.IndexModel{
		Keys: bson.D{{Key: "customer_phone", Value: 1}, {Key: "updated_at", Value: -1}},
	}
	_, err = collection.Indexes().CreateOne(m.ctx, index)
	if err != nil {
		return fmt.Errorf("mongodb create negotiation index: %w", err)
	}
	return nil
}
