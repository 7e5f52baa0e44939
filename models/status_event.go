package models

import "time"

// StatusEvent records one connector status change reported by the
// charging-station subsystem; the delta sync reads events newer than the
// previous run to build its candidate set.
type StatusEvent struct {
	ChargePointId string    `json:"charge_point_id" bson:"charge_point_id"`
	ConnectorId   int       `json:"connector_id" bson:"connector_id"`
	Status        string    `json:"status" bson:"status"`
	Time          time.Time `json:"time" bson:"time"`
}
