package session

import (
	"encoding/json"
	"evroam/internal"
	"evroam/models"
	"evroam/ocpi/client"
	"evroam/ocpi/wire"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type partnerCalls struct {
	authorizations int
	sessionPuts    int
	cdrPosts       int
}

func partnerServer(t *testing.T, calls *partnerCalls, allowed string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/authorize"):
			calls.authorizations++
			info := &wire.AuthorizationInfo{Allowed: allowed}
			if allowed == wire.AllowedAllowed {
				info.AuthorizationId = "auth-1"
			}
			_ = json.NewEncoder(w).Encode(info)
		case strings.HasPrefix(r.URL.Path, "/sessions/"):
			calls.sessionPuts++
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/cdrs":
			calls.cdrPosts++
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected partner call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestAdapter(url string, database internal.Database, logger internal.LogHandler) *Adapter {
	endpoint := &models.RoamingEndpoint{Id: "partner", Role: models.RoleEMSP, Url: url, Token: "secret"}
	c := client.NewForEndpoint(endpoint, client.Config{CountryCode: "ES", PartyId: "ABC", Currency: "EUR"})
	c.SetDatabase(database)
	c.SetLogger(logger)
	adapter := NewAdapter(c)
	adapter.SetDatabase(database)
	adapter.SetLogger(logger)
	return adapter
}

func lifecycleDatabase(transaction *models.Transaction) *mockDatabase {
	return &mockDatabase{
		getTransaction: func(int) (*models.Transaction, error) { return transaction, nil },
		getUserTag: func(idTag string) (*models.UserTag, error) {
			return &models.UserTag{IdTag: idTag, IsEnabled: true, UserStatus: models.UserStatusActive}, nil
		},
		getChargePoint: func(chargePointId string) (*models.ChargePoint, error) {
			return &models.ChargePoint{
				Id:         chargePointId,
				LocationId: "loc1",
				IsEnabled:  true,
				Connectors: []*models.Connector{{Id: 1, Status: "Charging"}},
			}, nil
		},
		getLocation: func(locationId string) (*models.Location, error) {
			return &models.Location{Id: locationId}, nil
		},
	}
}

func TestOnTransactionStart(t *testing.T) {
	calls := &partnerCalls{}
	ts := partnerServer(t, calls, wire.AllowedAllowed)

	transaction := &models.Transaction{
		Id:            7,
		ChargePointId: "chp1",
		ConnectorId:   1,
		IdTag:         "TAG1",
		TimeStart:     time.Now().UTC(),
	}
	logger := &mockLogger{}
	adapter := newTestAdapter(ts.URL, lifecycleDatabase(transaction), logger)

	adapter.OnTransactionStart(&internal.EventMessage{TransactionId: 7, IdTag: "TAG1"})

	if transaction.Session == nil {
		t.Fatal("session not created")
	}
	if transaction.Session.Id != "auth-1" {
		t.Errorf("session id = %q, expected the partner authorization id", transaction.Session.Id)
	}
	if transaction.Session.Status != wire.SessionPending {
		t.Errorf("session status = %s", transaction.Session.Status)
	}
	if calls.authorizations != 1 || calls.sessionPuts != 1 {
		t.Errorf("partner calls = %+v", calls)
	}
}

func TestOnTransactionStartDenied(t *testing.T) {
	calls := &partnerCalls{}
	ts := partnerServer(t, calls, wire.AllowedNotAllowed)

	transaction := &models.Transaction{
		Id:            8,
		ChargePointId: "chp1",
		ConnectorId:   1,
		IdTag:         "TAG1",
		TimeStart:     time.Now().UTC(),
	}
	logger := &mockLogger{}
	adapter := newTestAdapter(ts.URL, lifecycleDatabase(transaction), logger)

	adapter.OnTransactionStart(&internal.EventMessage{TransactionId: 8, IdTag: "TAG1"})

	// the session still opens, with a locally generated id
	if transaction.Session == nil {
		t.Fatal("session not created after denied authorization")
	}
	if transaction.Session.Id == "" || transaction.Session.Id == "auth-1" {
		t.Errorf("session id = %q, expected a generated one", transaction.Session.Id)
	}
	if len(logger.failures) == 0 {
		t.Error("denied authorization not logged")
	}
	if calls.sessionPuts != 1 {
		t.Errorf("partner calls = %+v", calls)
	}
}

func TestOnMeterValuesActivatesSession(t *testing.T) {
	calls := &partnerCalls{}
	ts := partnerServer(t, calls, wire.AllowedAllowed)

	transaction := &models.Transaction{
		Id:            9,
		ChargePointId: "chp1",
		MeterStart:    0,
		MeterStop:     2500,
		Session: &models.OcpiSession{
			Id:     "sess-9",
			Status: wire.SessionPending,
		},
	}
	adapter := newTestAdapter(ts.URL, lifecycleDatabase(transaction), &mockLogger{})

	adapter.OnMeterValues(&internal.EventMessage{TransactionId: 9, Meter: 2500})

	if transaction.Session.Status != wire.SessionActive {
		t.Errorf("session status = %s, expected ACTIVE", transaction.Session.Status)
	}
	if transaction.Session.Kwh != 2.5 {
		t.Errorf("session kwh = %v", transaction.Session.Kwh)
	}
	if calls.sessionPuts != 1 {
		t.Errorf("partner calls = %+v", calls)
	}
}

func TestOnTransactionStopSendsCdrOnce(t *testing.T) {
	calls := &partnerCalls{}
	ts := partnerServer(t, calls, wire.AllowedAllowed)

	start := time.Now().UTC().Add(-time.Hour)
	transaction := &models.Transaction{
		Id:            10,
		ChargePointId: "chp1",
		IsFinished:    true,
		MeterStart:    0,
		MeterStop:     4500,
		TimeStart:     start,
		TimeStop:      start.Add(time.Hour),
		Session: &models.OcpiSession{
			Id:     "sess-10",
			Status: wire.SessionActive,
		},
	}
	logger := &mockLogger{}
	adapter := newTestAdapter(ts.URL, lifecycleDatabase(transaction), logger)

	adapter.OnTransactionStop(&internal.EventMessage{TransactionId: 10})

	if transaction.Session.Status != wire.SessionCompleted {
		t.Errorf("session status = %s, expected COMPLETED", transaction.Session.Status)
	}
	if !transaction.Session.CdrSent {
		t.Error("cdr sent flag not set")
	}
	if calls.cdrPosts != 1 {
		t.Errorf("cdr posts = %d", calls.cdrPosts)
	}

	// a repeated stop event must never produce a second cdr
	adapter.OnTransactionStop(&internal.EventMessage{TransactionId: 10})
	if calls.cdrPosts != 1 {
		t.Errorf("cdr posts after repeat = %d", calls.cdrPosts)
	}
	if len(logger.warnings) != 1 {
		t.Errorf("expected one warning for the repeated stop, got %v", logger.warnings)
	}
}
