package models

type GeoLocation struct {
	Latitude  string `json:"latitude" bson:"latitude"`
	Longitude string `json:"longitude" bson:"longitude"`
}

type Location struct {
	Id          string         `json:"id" bson:"id" validate:"required,max=39"`
	Roaming     bool           `json:"roaming" bson:"roaming"`
	Name        string         `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,max=255"`
	Address     string         `json:"address" bson:"address" validate:"required,max=45"`
	City        string         `json:"city" bson:"city" validate:"required,max=45"`
	PostalCode  string         `json:"postal_code" bson:"postal_code" validate:"required,max=10"`
	Country     string         `json:"country" bson:"country" validate:"required,iso3166_1_alpha3"`
	Coordinates GeoLocation    `json:"coordinates" bson:"coordinates"`
	Evses       []*ChargePoint `json:"evses,omitempty" bson:"evses,omitempty"`
}
