package models

type Connector struct {
	Id            int    `json:"connector_id" bson:"connector_id"`
	ChargePointId string `json:"charge_point_id" bson:"charge_point_id"`
	IsEnabled     bool   `json:"is_enabled" bson:"is_enabled"`
	Status        string `json:"status" bson:"status"`
	Type          string `json:"type" bson:"type"`
	Format        string `json:"format" bson:"format"`
	PowerType     string `json:"power_type" bson:"power_type"`
	Voltage       int    `json:"voltage" bson:"voltage"`
	Amperage      int    `json:"amperage" bson:"amperage"`
}
