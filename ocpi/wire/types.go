package wire

import "time"

type GeoLocation struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

type Location struct {
	Id          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Address     string      `json:"address"`
	City        string      `json:"city"`
	PostalCode  string      `json:"postal_code"`
	Country     string      `json:"country"`
	Coordinates GeoLocation `json:"coordinates"`
	Evses       []*Evse     `json:"evses,omitempty"`
	LastUpdated time.Time   `json:"last_updated"`
}

type Evse struct {
	Uid         string       `json:"uid"`
	EvseId      string       `json:"evse_id"`
	Status      Status       `json:"status"`
	Connectors  []*Connector `json:"connectors,omitempty"`
	LastUpdated time.Time    `json:"last_updated"`
}

type Connector struct {
	Id          string    `json:"id"`
	Standard    string    `json:"standard"`
	Format      string    `json:"format"`
	PowerType   string    `json:"power_type"`
	Voltage     int       `json:"voltage"`
	Amperage    int       `json:"amperage"`
	LastUpdated time.Time `json:"last_updated"`
}

type Token struct {
	Uid          string    `json:"uid"`
	Type         string    `json:"type"`
	AuthId       string    `json:"auth_id"`
	VisualNumber string    `json:"visual_number,omitempty"`
	Issuer       string    `json:"issuer"`
	Valid        bool      `json:"valid"`
	Whitelist    string    `json:"whitelist"`
	LastUpdated  time.Time `json:"last_updated"`
}

// LocationReferences narrows a token authorization to one EVSE of one location.
type LocationReferences struct {
	LocationId string   `json:"location_id"`
	EvseUids   []string `json:"evse_uids,omitempty"`
}

type AuthorizationInfo struct {
	Allowed         string              `json:"allowed"`
	AuthorizationId string              `json:"authorization_id,omitempty"`
	Location        *LocationReferences `json:"location,omitempty"`
	Info            string              `json:"info,omitempty"`
}

type Session struct {
	Id            string    `json:"id"`
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   string    `json:"end_datetime,omitempty"`
	Kwh           float64   `json:"kwh"`
	AuthId        string    `json:"auth_id"`
	AuthMethod    string    `json:"auth_method"`
	LocationId    string    `json:"location_id"`
	EvseUid       string    `json:"evse_uid"`
	ConnectorId   string    `json:"connector_id"`
	Currency      string    `json:"currency"`
	TotalCost     float64   `json:"total_cost"`
	Status        string    `json:"status"`
	LastUpdated   time.Time `json:"last_updated"`
}

type CdrDimension struct {
	Type   string  `json:"type"`
	Volume float64 `json:"volume"`
}

type ChargingPeriod struct {
	StartDateTime time.Time      `json:"start_date_time"`
	Dimensions    []CdrDimension `json:"dimensions"`
}

type Cdr struct {
	Id               string           `json:"id"`
	StartDateTime    time.Time        `json:"start_date_time"`
	StopDateTime     time.Time        `json:"stop_date_time"`
	SessionId        string           `json:"session_id"`
	AuthId           string           `json:"auth_id"`
	AuthMethod       string           `json:"auth_method"`
	TotalEnergy      float64          `json:"total_energy"`
	TotalTime        float64          `json:"total_time"`
	TotalParkingTime float64          `json:"total_parking_time"`
	TotalCost        float64          `json:"total_cost"`
	Currency         string           `json:"currency"`
	ChargingPeriods  []ChargingPeriod `json:"charging_periods"`
	LastUpdated      time.Time        `json:"last_updated"`
}

func (c *Cdr) DataType() string {
	return "cdr"
}
