package models

import "time"

// OcpiSession is the roaming snapshot embedded on a transaction; it is created
// once at transaction start and never re-created for the same transaction.
type OcpiSession struct {
	Id              string    `json:"session_id" bson:"session_id"`
	AuthorizationId string    `json:"authorization_id" bson:"authorization_id"`
	Status          string    `json:"status" bson:"status"`
	Kwh             float64   `json:"kwh" bson:"kwh"`
	TotalCost       float64   `json:"total_cost" bson:"total_cost"`
	Currency        string    `json:"currency" bson:"currency"`
	StartDateTime   time.Time `json:"start_datetime" bson:"start_datetime"`
	EndDateTime     time.Time `json:"end_datetime,omitempty" bson:"end_datetime,omitempty"`
	LastUpdated     time.Time `json:"last_updated" bson:"last_updated"`
	CdrSent         bool      `json:"cdr_sent" bson:"cdr_sent"`
}

type Transaction struct {
	Id            int          `json:"transaction_id" bson:"transaction_id"`
	IsFinished    bool         `json:"is_finished" bson:"is_finished"`
	ConnectorId   int          `json:"connector_id" bson:"connector_id"`
	ChargePointId string       `json:"charge_point_id" bson:"charge_point_id"`
	IdTag         string       `json:"id_tag" bson:"id_tag"`
	MeterStart    int          `json:"meter_start" bson:"meter_start"`
	MeterStop     int          `json:"meter_stop" bson:"meter_stop"`
	TimeStart     time.Time    `json:"time_start" bson:"time_start"`
	TimeStop      time.Time    `json:"time_stop" bson:"time_stop"`
	Reason        string       `json:"reason" bson:"reason"`
	Username      string       `json:"username" bson:"username"`
	PaymentAmount int          `json:"payment_amount" bson:"payment_amount"`
	Currency      string       `json:"currency" bson:"currency"`
	Session       *OcpiSession `json:"ocpi_session,omitempty" bson:"ocpi_session,omitempty"`
}

// MeterValue returns the consumed energy in kWh.
func (t *Transaction) MeterValue() float64 {
	meter := t.MeterStop
	if meter == 0 {
		meter = t.MeterStart
	}
	if meter < t.MeterStart {
		return 0
	}
	return float64(meter-t.MeterStart) / 1000
}
