// Package mapper converts between the internal site hierarchy and the roaming
// wire model. All functions are pure: no storage access, no partial failure.
package mapper

import (
	"evroam/models"
	"evroam/ocpi/wire"
	"strconv"
	"time"
)

func ToLocation(countryCode, partyId string, location *models.Location) *wire.Location {
	wl := &wire.Location{
		Id:         location.Id,
		Name:       location.Name,
		Address:    location.Address,
		City:       location.City,
		PostalCode: location.PostalCode,
		Country:    location.Country,
		Coordinates: wire.GeoLocation{
			Latitude:  location.Coordinates.Latitude,
			Longitude: location.Coordinates.Longitude,
		},
		LastUpdated: time.Now().UTC(),
	}
	for _, chargePoint := range location.Evses {
		wl.Evses = append(wl.Evses, ToEvses(countryCode, partyId, chargePoint)...)
	}
	return wl
}

// ToEvses publishes a station as wire EVSEs. A station that can charge its
// connectors in parallel becomes a single EVSE holding all connectors; a
// power-sharing station becomes one synthetic EVSE per connector.
func ToEvses(countryCode, partyId string, chargePoint *models.ChargePoint) []*wire.Evse {
	evseId := DeriveEvseID(countryCode, partyId, chargePoint.Id)
	now := time.Now().UTC()

	if !chargePoint.PowerSharing {
		evse := &wire.Evse{
			Uid:         evseId,
			EvseId:      evseId,
			Status:      AggregateStatus(chargePoint.Connectors),
			LastUpdated: now,
		}
		for _, connector := range chargePoint.Connectors {
			evse.Connectors = append(evse.Connectors, ToConnector(evseId, connector))
		}
		return []*wire.Evse{evse}
	}

	var evses []*wire.Evse
	for _, connector := range chargePoint.Connectors {
		uid := DeriveConnectorID(evseId, connector.Id)
		evses = append(evses, &wire.Evse{
			Uid:         uid,
			EvseId:      uid,
			Status:      AggregateStatus([]*models.Connector{connector}),
			Connectors:  []*wire.Connector{ToConnector(evseId, connector)},
			LastUpdated: now,
		})
	}
	return evses
}

func ToConnector(evseId string, connector *models.Connector) *wire.Connector {
	return &wire.Connector{
		Id:          DeriveConnectorID(evseId, connector.Id),
		Standard:    wire.ToWireStandard(connector.Type),
		Format:      wire.ToWireFormat(connector.Format),
		PowerType:   wire.ToWirePowerType(connector.PowerType),
		Voltage:     connector.Voltage,
		Amperage:    connector.Amperage,
		LastUpdated: time.Now().UTC(),
	}
}

func ToToken(tag *models.UserTag) *wire.Token {
	return &wire.Token{
		Uid:         tag.IdTag,
		Type:        wire.TokenTypeRfid,
		AuthId:      tag.UserId,
		Issuer:      tag.Issuer,
		Valid:       tag.IsEnabled && tag.UserStatus == models.UserStatusActive,
		Whitelist:   wire.WhitelistNever,
		LastUpdated: tag.LastSeen,
	}
}

// FromToken converts a partner-pushed or pulled token into a user tag. Such
// tags are roaming-issued: they are persisted authoritatively but never
// treated as local credentials.
func FromToken(token *wire.Token) *models.UserTag {
	status := models.UserStatusActive
	if !token.Valid {
		status = models.UserStatusBlocked
	}
	return &models.UserTag{
		IdTag:      token.Uid,
		UserId:     token.AuthId,
		Username:   token.VisualNumber,
		Issuer:     token.Issuer,
		UserStatus: status,
		IsEnabled:  token.Valid,
		Local:      false,
		Source:     "roaming",
		LastSeen:   token.LastUpdated,
	}
}

func FromLocation(location *wire.Location) *models.Location {
	return &models.Location{
		Id:         location.Id,
		Roaming:    true,
		Name:       location.Name,
		Address:    location.Address,
		City:       location.City,
		PostalCode: location.PostalCode,
		Country:    location.Country,
		Coordinates: models.GeoLocation{
			Latitude:  location.Coordinates.Latitude,
			Longitude: location.Coordinates.Longitude,
		},
	}
}

func FromEvse(locationId string, evse *wire.Evse) *models.ChargePoint {
	chargePoint := &models.ChargePoint{
		Id:         evse.Uid,
		LocationId: locationId,
		IsEnabled:  true,
		Roaming:    true,
		Status:     wire.FromWireStatus(evse.Status),
	}
	for i, connector := range evse.Connectors {
		chargePoint.Connectors = append(chargePoint.Connectors, FromConnector(evse.Uid, i+1, connector))
	}
	return chargePoint
}

func FromConnector(chargePointId string, fallbackId int, connector *wire.Connector) *models.Connector {
	id := fallbackId
	if parsed, err := strconv.Atoi(connector.Id); err == nil {
		id = parsed
	}
	return &models.Connector{
		Id:            id,
		ChargePointId: chargePointId,
		IsEnabled:     true,
		Type:          wire.FromWireStandard(connector.Standard),
		Format:        wire.FromWireFormat(connector.Format),
		PowerType:     wire.FromWirePowerType(connector.PowerType),
		Voltage:       connector.Voltage,
		Amperage:      connector.Amperage,
	}
}

// SessionFromTransaction recomputes the full session payload from the current
// transaction state; partial diffs are never sent.
func SessionFromTransaction(countryCode, partyId, locationId string, transaction *models.Transaction) *wire.Session {
	snapshot := transaction.Session
	evseId := DeriveEvseID(countryCode, partyId, transaction.ChargePointId)
	session := &wire.Session{
		Id:            snapshot.Id,
		StartDatetime: snapshot.StartDateTime,
		Kwh:           snapshot.Kwh,
		AuthId:        snapshot.AuthorizationId,
		AuthMethod:    wire.AuthMethodRequest,
		LocationId:    locationId,
		EvseUid:       evseId,
		ConnectorId:   DeriveConnectorID(evseId, transaction.ConnectorId),
		Currency:      snapshot.Currency,
		TotalCost:     snapshot.TotalCost,
		Status:        snapshot.Status,
		LastUpdated:   snapshot.LastUpdated,
	}
	if !snapshot.EndDateTime.IsZero() {
		session.EndDatetime = snapshot.EndDateTime.UTC().Format(time.RFC3339)
	}
	return session
}

// CdrFromTransaction summarizes a completed transaction into its charge
// detail record with a single energy charging period.
func CdrFromTransaction(transaction *models.Transaction) *wire.Cdr {
	snapshot := transaction.Session
	totalTime := transaction.TimeStop.Sub(transaction.TimeStart).Hours()
	if totalTime < 0 {
		totalTime = 0
	}
	return &wire.Cdr{
		Id:            snapshot.Id,
		StartDateTime: transaction.TimeStart,
		StopDateTime:  transaction.TimeStop,
		SessionId:     snapshot.Id,
		AuthId:        snapshot.AuthorizationId,
		AuthMethod:    wire.AuthMethodRequest,
		TotalEnergy:   transaction.MeterValue(),
		TotalTime:     totalTime,
		TotalCost:     snapshot.TotalCost,
		Currency:      snapshot.Currency,
		ChargingPeriods: []wire.ChargingPeriod{
			{
				StartDateTime: transaction.TimeStart,
				Dimensions: []wire.CdrDimension{
					{Type: wire.DimensionEnergy, Volume: transaction.MeterValue()},
				},
			},
		},
		LastUpdated: time.Now().UTC(),
	}
}
