package session

import (
	"errors"
	"evroam/internal"
	"evroam/models"
	"fmt"
	"time"
)

type mockDatabase struct {
	getLocation    func(locationId string) (*models.Location, error)
	getChargePoint func(chargePointId string) (*models.ChargePoint, error)
	getUserTag     func(idTag string) (*models.UserTag, error)
	getTransaction func(transactionId int) (*models.Transaction, error)
	addCdr         func(cdr internal.Data) error
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
	return nil, errors.New("unexpected GetLocations call")
}
func (m *mockDatabase) UpsertLocation(*models.Location) error { return nil }

func (m *mockDatabase) GetChargePoint(chargePointId string) (*models.ChargePoint, error) {
	if m.getChargePoint != nil {
		return m.getChargePoint(chargePointId)
	}
	return nil, errors.New("unexpected GetChargePoint call")
}
func (m *mockDatabase) GetChargePoints() ([]*models.ChargePoint, error) {
	return nil, errors.New("unexpected GetChargePoints call")
}
func (m *mockDatabase) UpsertChargePoint(*models.ChargePoint) error { return nil }
func (m *mockDatabase) DeleteChargePoint(string) error              { return nil }
func (m *mockDatabase) UpdateConnector(*models.Connector) error     { return nil }

func (m *mockDatabase) GetUserTag(idTag string) (*models.UserTag, error) {
	if m.getUserTag != nil {
		return m.getUserTag(idTag)
	}
	return nil, errors.New("unexpected GetUserTag call")
}
func (m *mockDatabase) GetUserTags() ([]*models.UserTag, error) {
	return nil, errors.New("unexpected GetUserTags call")
}
func (m *mockDatabase) UpsertUserTag(*models.UserTag) error { return nil }

func (m *mockDatabase) GetTransaction(transactionId int) (*models.Transaction, error) {
	if m.getTransaction != nil {
		return m.getTransaction(transactionId)
	}
	return nil, errors.New("unexpected GetTransaction call")
}
func (m *mockDatabase) UpdateTransactionSession(*models.Transaction) error { return nil }

func (m *mockDatabase) AddCdr(cdr internal.Data) error {
	if m.addCdr != nil {
		return m.addCdr(cdr)
	}
	return nil
}

func (m *mockDatabase) GetEndpoints() ([]*models.RoamingEndpoint, error) {
	return nil, errors.New("unexpected GetEndpoints call")
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
