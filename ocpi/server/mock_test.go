package server

import (
	"errors"
	"evroam/internal"
	"evroam/models"
	"fmt"
	"time"
)

var errNotFound = errors.New("not found")

type mockDatabase struct {
	getLocations      func() ([]*models.Location, error)
	getLocation       func(locationId string) (*models.Location, error)
	upsertLocation    func(location *models.Location) error
	getChargePoint    func(chargePointId string) (*models.ChargePoint, error)
	upsertChargePoint func(chargePoint *models.ChargePoint) error
	deleteChargePoint func(chargePointId string) error
	updateConnector   func(connector *models.Connector) error
	getUserTag        func(idTag string) (*models.UserTag, error)
	getUserTags       func() ([]*models.UserTag, error)
	upsertUserTag     func(tag *models.UserTag) error
	getEndpoints      func() ([]*models.RoamingEndpoint, error)
}

func (m *mockDatabase) WriteLogMessage(internal.Data) error { return nil }
func (m *mockDatabase) ReadLog() (interface{}, error)       { return nil, nil }

func (m *mockDatabase) GetLocation(locationId string) (*models.Location, error) {
	if m.getLocation != nil {
		return m.getLocation(locationId)
	}
	return nil, errors.New("unexpected GetLocation call")
}
func (m *mockDatabase) GetLocations() ([]*models.Location, error) {
	if m.getLocations != nil {
		return m.getLocations()
	}
	return nil, errors.New("unexpected GetLocations call")
}
func (m *mockDatabase) UpsertLocation(location *models.Location) error {
	if m.upsertLocation != nil {
		return m.upsertLocation(location)
	}
	return nil
}

func (m *mockDatabase) GetChargePoint(chargePointId string) (*models.ChargePoint, error) {
	if m.getChargePoint != nil {
		return m.getChargePoint(chargePointId)
	}
	return nil, errors.New("unexpected GetChargePoint call")
}
func (m *mockDatabase) GetChargePoints() ([]*models.ChargePoint, error) {
	return nil, errors.New("unexpected GetChargePoints call")
}
func (m *mockDatabase) UpsertChargePoint(chargePoint *models.ChargePoint) error {
	if m.upsertChargePoint != nil {
		return m.upsertChargePoint(chargePoint)
	}
	return nil
}
func (m *mockDatabase) DeleteChargePoint(chargePointId string) error {
	if m.deleteChargePoint != nil {
		return m.deleteChargePoint(chargePointId)
	}
	return nil
}
func (m *mockDatabase) UpdateConnector(connector *models.Connector) error {
	if m.updateConnector != nil {
		return m.updateConnector(connector)
	}
	return nil
}

func (m *mockDatabase) GetUserTag(idTag string) (*models.UserTag, error) {
	if m.getUserTag != nil {
		return m.getUserTag(idTag)
	}
	return nil, errors.New("unexpected GetUserTag call")
}
func (m *mockDatabase) GetUserTags() ([]*models.UserTag, error) {
	if m.getUserTags != nil {
		return m.getUserTags()
	}
	return nil, errors.New("unexpected GetUserTags call")
}
func (m *mockDatabase) UpsertUserTag(tag *models.UserTag) error {
	if m.upsertUserTag != nil {
		return m.upsertUserTag(tag)
	}
	return nil
}

func (m *mockDatabase) GetTransaction(int) (*models.Transaction, error) {
	return nil, errors.New("unexpected GetTransaction call")
}
func (m *mockDatabase) UpdateTransactionSession(*models.Transaction) error { return nil }
func (m *mockDatabase) AddCdr(internal.Data) error                         { return nil }

func (m *mockDatabase) GetEndpoints() ([]*models.RoamingEndpoint, error) {
	if m.getEndpoints != nil {
		return m.getEndpoints()
	}
	return []*models.RoamingEndpoint{{Id: "partner", Token: "secret"}}, nil
}
func (m *mockDatabase) UpdateEndpointSyncResult(string, *models.SyncResult) error { return nil }

func (m *mockDatabase) AddStatusEvent(*models.StatusEvent) error { return nil }
func (m *mockDatabase) GetStatusEventsAfter(time.Time) ([]*models.StatusEvent, error) {
	return nil, errors.New("unexpected GetStatusEventsAfter call")
}

func (m *mockDatabase) GetSubscriptions() ([]models.UserSubscription, error) {
	return nil, errors.New("unexpected GetSubscriptions call")
}
func (m *mockDatabase) AddSubscription(*models.UserSubscription) error    { return nil }
func (m *mockDatabase) DeleteSubscription(*models.UserSubscription) error { return nil }

type mockLogger struct {
	warnings []string
	failures []string
}

func (l *mockLogger) FeatureEvent(string, string, string) {}
func (l *mockLogger) Debug(string)                        {}
func (l *mockLogger) Warn(text string)                    { l.warnings = append(l.warnings, text) }
func (l *mockLogger) Error(text string, err error) {
	l.failures = append(l.failures, fmt.Sprintf("%s: %v", text, err))
}
