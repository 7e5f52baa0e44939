package internal

import (
	"context"
	"evroam/internal/config"
	"evroam/models"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"log"
	"time"
)

const (
	collectionLog           = "sys_log"
	collectionUserTags      = "user_tags"
	collectionChargePoints  = "charge_points"
	collectionLocations     = "locations"
	collectionTransactions  = "transactions"
	collectionCdrs          = "cdrs"
	collectionEndpoints     = "roaming_endpoints"
	collectionStatusEvents  = "status_events"
	collectionSubscriptions = "subscriptions"
)

type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
}

func NewMongoClient(conf *config.Config) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
	return client, nil
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, err
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	err := connection.Disconnect(m.ctx)
	if err != nil {
		log.Println("mongodb disconnect error;", err)
	}
}

func (m *MongoDB) WriteLogMessage(data Data) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionLog)
	_, err = collection.InsertOne(m.ctx, data)
	return err
}

func (m *MongoDB) ReadLog() (interface{}, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var logMessages []FeatureLogMessage
	collection := connection.Database(m.database).Collection(collectionLog)
	filter := bson.D{}
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: -1}}).SetLimit(1000)
	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	if err = cursor.All(m.ctx, &logMessages); err != nil {
		return nil, err
	}
	return logMessages, nil
}

func (m *MongoDB) GetLocation(locationId string) (*models.Location, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var location models.Location
	collection := connection.Database(m.database).Collection(collectionLocations)
	filter := bson.D{{Key: "id", Value: locationId}}
	if err = collection.FindOne(m.ctx, filter).Decode(&location); err != nil {
		return nil, err
	}
	if err = m.attachChargePoints(connection, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

// attachChargePoints joins the stations of a location onto the document, so
// callers always see the full site hierarchy.
func (m *MongoDB) attachChargePoints(connection *mongo.Client, location *models.Location) error {
	collection := connection.Database(m.database).Collection(collectionChargePoints)
	filter := bson.D{{Key: "location_id", Value: location.Id}}
	cursor, err := collection.Find(m.ctx, filter)
	if err != nil {
		return err
	}
	return cursor.All(m.ctx, &location.Evses)
}

func (m *MongoDB) GetLocations() ([]*models.Location, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var locations []*models.Location
	collection := connection.Database(m.database).Collection(collectionLocations)
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	cursor, err := collection.Find(m.ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	if err = cursor.All(m.ctx, &locations); err != nil {
		return nil, err
	}
	for _, location := range locations {
		if err = m.attachChargePoints(connection, location); err != nil {
			return nil, err
		}
	}
	return locations, nil
}

func (m *MongoDB) UpsertLocation(location *models.Location) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionLocations)
	filter := bson.D{{Key: "id", Value: location.Id}}
	// stations live in their own collection; the location document never
	// embeds them
	document := *location
	document.Evses = nil
	_, err = collection.ReplaceOne(m.ctx, filter, &document, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoDB) GetChargePoint(chargePointId string) (*models.ChargePoint, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var chargePoint models.ChargePoint
	collection := connection.Database(m.database).Collection(collectionChargePoints)
	filter := bson.D{{Key: "charge_point_id", Value: chargePointId}}
	if err = collection.FindOne(m.ctx, filter).Decode(&chargePoint); err != nil {
		return nil, err
	}
	return &chargePoint, nil
}

func (m *MongoDB) GetChargePoints() ([]*models.ChargePoint, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var chargePoints []*models.ChargePoint
	collection := connection.Database(m.database).Collection(collectionChargePoints)
	cursor, err := collection.Find(m.ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	if err = cursor.All(m.ctx, &chargePoints); err != nil {
		return nil, err
	}
	return chargePoints, nil
}

func (m *MongoDB) UpsertChargePoint(chargePoint *models.ChargePoint) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionChargePoints)
	filter := bson.D{{Key: "charge_point_id", Value: chargePoint.Id}}
	_, err = collection.ReplaceOne(m.ctx, filter, chargePoint, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoDB) DeleteChargePoint(chargePointId string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionChargePoints)
	filter := bson.D{{Key: "charge_point_id", Value: chargePointId}}
	_, err = collection.DeleteOne(m.ctx, filter)
	return err
}

func (m *MongoDB) UpdateConnector(connector *models.Connector) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionChargePoints)
	filter := bson.D{
		{Key: "charge_point_id", Value: connector.ChargePointId},
		{Key: "connectors.connector_id", Value: connector.Id},
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "connectors.$", Value: connector}}}}
	_, err = collection.UpdateOne(m.ctx, filter, update)
	return err
}

func (m *MongoDB) GetUserTag(idTag string) (*models.UserTag, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var tag models.UserTag
	collection := connection.Database(m.database).Collection(collectionUserTags)
	filter := bson.D{{Key: "id_tag", Value: idTag}}
	if err = collection.FindOne(m.ctx, filter).Decode(&tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (m *MongoDB) GetUserTags() ([]*models.UserTag, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var tags []*models.UserTag
	collection := connection.Database(m.database).Collection(collectionUserTags)
	opts := options.Find().SetSort(bson.D{{Key: "id_tag", Value: 1}})
	cursor, err := collection.Find(m.ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	if err = cursor.All(m.ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (m *MongoDB) UpsertUserTag(tag *models.UserTag) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionUserTags)
	filter := bson.D{{Key: "id_tag", Value: tag.IdTag}}
	_, err = collection.ReplaceOne(m.ctx, filter, tag, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoDB) GetTransaction(transactionId int) (*models.Transaction, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var transaction models.Transaction
	collection := connection.Database(m.database).Collection(collectionTransactions)
	filter := bson.D{{Key: "transaction_id", Value: transactionId}}
	if err = collection.FindOne(m.ctx, filter).Decode(&transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (m *MongoDB) UpdateTransactionSession(transaction *models.Transaction) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionTransactions)
	filter := bson.D{{Key: "transaction_id", Value: transaction.Id}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "ocpi_session", Value: transaction.Session}}}}
	_, err = collection.UpdateOne(m.ctx, filter, update)
	return err
}

func (m *MongoDB) AddCdr(cdr Data) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionCdrs)
	_, err = collection.InsertOne(m.ctx, cdr)
	return err
}

func (m *MongoDB) GetEndpoints() ([]*models.RoamingEndpoint, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var endpoints []*models.RoamingEndpoint
	collection := connection.Database(m.database).Collection(collectionEndpoints)
	cursor, err := collection.Find(m.ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	if err = cursor.All(m.ctx, &endpoints); err != nil {
		return nil, err
	}
	return endpoints, nil
}

// UpdateEndpointSyncResult persists the outcome of a bulk sync run. It is
// written after every run, successful or not, so the next run computes its
// delta from this run and never from an older one.
func (m *MongoDB) UpdateEndpointSyncResult(endpointId string, result *models.SyncResult) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionEndpoints)
	filter := bson.D{{Key: "endpoint_id", Value: endpointId}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "last_sync", Value: result}}}}
	_, err = collection.UpdateOne(m.ctx, filter, update)
	return err
}

func (m *MongoDB) AddStatusEvent(event *models.StatusEvent) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionStatusEvents)
	_, err = collection.InsertOne(m.ctx, event)
	return err
}

func (m *MongoDB) GetStatusEventsAfter(t time.Time) ([]*models.StatusEvent, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var events []*models.StatusEvent
	collection := connection.Database(m.database).Collection(collectionStatusEvents)
	filter := bson.D{{Key: "time", Value: bson.D{{Key: "$gt", Value: t}}}}
	cursor, err := collection.Find(m.ctx, filter)
	if err != nil {
		return nil, err
	}
	if err = cursor.All(m.ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (m *MongoDB) GetSubscriptions() ([]models.UserSubscription, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var subscriptions []models.UserSubscription
	collection := connection.Database(m.database).Collection(collectionSubscriptions)
	cursor, err := collection.Find(m.ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	if err = cursor.All(m.ctx, &subscriptions); err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (m *MongoDB) AddSubscription(subscription *models.UserSubscription) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionSubscriptions)
	_, err = collection.InsertOne(m.ctx, subscription)
	return err
}

func (m *MongoDB) DeleteSubscription(subscription *models.UserSubscription) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionSubscriptions)
	filter := bson.D{{Key: "user_id", Value: subscription.UserID}}
	_, err = collection.DeleteOne(m.ctx, filter)
	return err
}
