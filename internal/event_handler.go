package internal

import "time"

type EventHandler interface {
	OnStatusNotification(event *EventMessage)
	OnTransactionStart(event *EventMessage)
	OnMeterValues(event *EventMessage)
	OnTransactionStop(event *EventMessage)
}

// EventMessage is the trigger signal produced by the charging-station
// subsystem and consumed by the roaming engine.
type EventMessage struct {
	Type          string    `json:"type" bson:"type"`
	ChargePointId string    `json:"charge_point_id" bson:"charge_point_id"`
	ConnectorId   int       `json:"connector_id" bson:"connector_id"`
	Time          time.Time `json:"time" bson:"time"`
	Username      string    `json:"username" bson:"username"`
	IdTag         string    `json:"id_tag" bson:"id_tag"`
	TransactionId int       `json:"transaction_id" bson:"transaction_id"`
	Status        string    `json:"status" bson:"status"`
	Meter         int       `json:"meter" bson:"meter"`
	Info          string    `json:"info" bson:"info"`
}

const (
	EventTypeStatusNotification = "StatusNotification"
	EventTypeTransactionStart   = "TransactionStart"
	EventTypeMeterValues        = "MeterValues"
	EventTypeTransactionStop    = "TransactionStop"
)
