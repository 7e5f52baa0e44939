package models

type ChargePoint struct {
	Id         string `json:"charge_point_id" bson:"charge_point_id"`
	LocationId string `json:"location_id" bson:"location_id"`
	IsEnabled  bool   `json:"is_enabled" bson:"is_enabled"`
	Roaming    bool   `json:"roaming" bson:"roaming"`
	Title      string `json:"title" bson:"title"`
	Model      string `json:"model" bson:"model"`
	Vendor     string `json:"vendor" bson:"vendor"`
	Status     string `json:"status" bson:"status"`
	ErrorCode  string `json:"error_code" bson:"error_code"`
	// PowerSharing means the station cannot charge its connectors in parallel;
	// such a station is published as one synthetic EVSE per connector.
	PowerSharing bool         `json:"power_sharing" bson:"power_sharing"`
	Connectors   []*Connector `json:"connectors,omitempty" bson:"connectors,omitempty"`
}
