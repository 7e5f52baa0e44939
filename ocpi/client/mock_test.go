package client

import (
	"errors"
	"evroam/internal"
	"evroam/models"
	"fmt"
	"time"
)

// mockDatabase implements internal.Database with overridable behavior per
// method; a read without an override fails the call so tests only touch the
// collections they set up.
type mockDatabase struct {
	getLocation              func(locationId string) (*models.Location, error)
	getChargePoint           func(chargePointId string) (*models.ChargePoint, error)
	getChargePoints          func() ([]*models.ChargePoint, error)
	upsertUserTag            func(tag *models.UserTag) error
	getTransaction           func(transactionId int) (*models.Transaction, error)
	updateTransactionSession func(transaction *models.Transaction) error
	addCdr                   func(cdr internal.Data) error
	updateEndpointSyncResult func(endpointId string, result *models.SyncResult) error
	getStatusEventsAfter     func(t time.Time) ([]*models.StatusEvent, error)
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
	if m.getChargePoints != nil {
		return m.getChargePoints()
	}
	return nil, errors.New("unexpected GetChargePoints call")
}
func (m *mockDatabase) UpsertChargePoint(*models.ChargePoint) error { return nil }
func (m *mockDatabase) DeleteChargePoint(string) error              { return nil }
func (m *mockDatabase) UpdateConnector(*models.Connector) error     { return nil }

func (m *mockDatabase) GetUserTag(string) (*models.UserTag, error) {
	return nil, errors.New("unexpected GetUserTag call")
}
func (m *mockDatabase) GetUserTags() ([]*models.UserTag, error) {
	return nil, errors.New("unexpected GetUserTags call")
}
func (m *mockDatabase) UpsertUserTag(tag *models.UserTag) error {
	if m.upsertUserTag != nil {
		return m.upsertUserTag(tag)
	}
	return nil
}

func (m *mockDatabase) GetTransaction(transactionId int) (*models.Transaction, error) {
	if m.getTransaction != nil {
		return m.getTransaction(transactionId)
	}
	return nil, errors.New("unexpected GetTransaction call")
}
func (m *mockDatabase) UpdateTransactionSession(transaction *models.Transaction) error {
	if m.updateTransactionSession != nil {
		return m.updateTransactionSession(transaction)
	}
	return nil
}

func (m *mockDatabase) AddCdr(cdr internal.Data) error {
	if m.addCdr != nil {
		return m.addCdr(cdr)
	}
	return nil
}

func (m *mockDatabase) GetEndpoints() ([]*models.RoamingEndpoint, error) {
	return nil, errors.New("unexpected GetEndpoints call")
}
func (m *mockDatabase) UpdateEndpointSyncResult(endpointId string, result *models.SyncResult) error {
	if m.updateEndpointSyncResult != nil {
		return m.updateEndpointSyncResult(endpointId, result)
	}
	return nil
}

func (m *mockDatabase) AddStatusEvent(*models.StatusEvent) error { return nil }
func (m *mockDatabase) GetStatusEventsAfter(t time.Time) ([]*models.StatusEvent, error) {
	if m.getStatusEventsAfter != nil {
		return m.getStatusEventsAfter(t)
	}
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

type mockNotifier struct {
	messages []string
}

func (n *mockNotifier) NotifyOperators(text string) {
	n.messages = append(n.messages, text)
}
