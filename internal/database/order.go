package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"autopier/entity"
)

func (m *MongoDB) SaveOrder(order entity.Order) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(ordersCollection)
	_, err = collection.InsertOne(m.ctx, order)
	if err != nil {
		return fmt.Errorf("mongodb insert order: %w", err)
	}
	return nil
}

func (m *MongoDB) GetOrderByID(id string) (*entity.Order, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(ordersCollection)

	var order entity.Order
	err = collection.FindOne(m.ctx, bson.D{{Key: "_id", Value: id}}).Decode(&order)
	if err != nil {
		return nil, m.findError(err)
	}
	return &order, nil
}

func (m *MongoDB) GetOrders() ([]entity.Order, error) {
	return m.findOrders(bson.D{})
}

func (m *MongoDB) GetOrdersByPhone(normalizedPhone string) ([]entity.Order, error) {
	return m.findOrders(bson.D{{Key: "customer_phone", Value: normalizedPhone}})
}

func (m *MongoDB) findOrders(filter bson.D) ([]entity.Order, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(ordersCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find orders: %w", err)
	}
	defer cursor.Close(m.ctx)

	var orders []entity.Order
	if err = cursor.All(m.ctx, &orders); err != nil {
		return nil, fmt.Errorf("mongodb decode orders: %w", err)
	}
	return orders, nil
}

func (m *MongoDB) UpdateOrderStatus(id, status string) (*entity.Order, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(ordersCollection)
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order entity.Order
	err = collection.FindOneAndUpdate(m.ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&order)
	if err != nil {
		return nil, m.findError(err)
	}
	return &order, nil
}

// EnsureOrderIndexes creates the phone lookup index.
func (m *MongoDB) EnsureOrderIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(ordersCollection)
	index := mongo.IndexModel{
		Keys: bson.D{{Key: "customer_phone", Value: 1}, {Key: "created_at", Value: -1}},
	}
	_, err = collection.Indexes().CreateOne(m.ctx, index)
	if err != nil {
		return fmt.Errorf("mongodb create order index: %w", err)
	}
	return nil
}
