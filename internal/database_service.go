package internal

import (
	"evroam/models"
	"time"
)

type Database interface {
	WriteLogMessage(data Data) error
	ReadLog() (interface{}, error)

	GetLocation(locationId string) (*models.Location, error)
	GetLocations() ([]*models.Location, error)
	UpsertLocation(location *models.Location) error

	GetChargePoint(chargePointId string) (*models.ChargePoint, error)
	GetChargePoints() ([]*models.ChargePoint, error)
	UpsertChargePoint(chargePoint *models.ChargePoint) error
	DeleteChargePoint(chargePointId string) error

	UpdateConnector(connector *models.Connector) error

	GetUserTag(idTag string) (*models.UserTag, error)
	GetUserTags() ([]*models.UserTag, error)
	UpsertUserTag(tag *models.UserTag) error

	GetTransaction(transactionId int) (*models.Transaction, error)
	UpdateTransactionSession(transaction *models.Transaction) error

	AddCdr(cdr Data) error

	GetEndpoints() ([]*models.RoamingEndpoint, error)
	UpdateEndpointSyncResult(endpointId string, result *models.SyncResult) error

	AddStatusEvent(event *models.StatusEvent) error
	GetStatusEventsAfter(t time.Time) ([]*models.StatusEvent, error)

	GetSubscriptions() ([]models.UserSubscription, error)
	AddSubscription(subscription *models.UserSubscription) error
	DeleteSubscription(subscription *models.UserSubscription) error
}

type Data interface {
	DataType() string
}
