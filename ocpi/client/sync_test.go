package client

import (
	"encoding/json"
	"evroam/models"
	"evroam/ocpi/wire"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestPullTokensPaged(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "" {
			next := fmt.Sprintf("http://%s/tokens?limit=1&offset=1", r.Host)
			w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
			_ = json.NewEncoder(w).Encode([]*wire.Token{{Uid: "TAG1", Valid: true}})
			return
		}
		_ = json.NewEncoder(w).Encode([]*wire.Token{{Uid: "TAG2", Valid: false}})
	}))
	defer ts.Close()

	conf := testConfig()
	conf.PageSize = 1
	var upserted []string
	c := NewForEndpoint(emspEndpoint(ts.URL), conf)
	c.SetLogger(&mockLogger{})
	c.SetDatabase(&mockDatabase{
		upsertUserTag: func(tag *models.UserTag) error {
			upserted = append(upserted, tag.IdTag)
			return nil
		},
	})

	result, err := c.PullTokens(false)
	if err != nil {
		t.Fatalf("PullTokens failed: %v", err)
	}
	if result.Success != 2 || result.Failure != 0 || result.Total != 2 {
		t.Errorf("result = %+v", result)
	}
	if !reflect.DeepEqual(upserted, []string{"TAG1", "TAG2"}) {
		t.Errorf("upserted tags = %v", upserted)
	}
}

func TestPullTokensStopsOnRepeatedNextLink(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		current := fmt.Sprintf("http://%s%s", r.Host, r.URL.RequestURI())
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, current))
		_ = json.NewEncoder(w).Encode([]*wire.Token{{Uid: "TAG1", Valid: true}})
	}))
	defer ts.Close()

	c := NewForEndpoint(emspEndpoint(ts.URL), testConfig())
	c.SetLogger(&mockLogger{})
	c.SetDatabase(&mockDatabase{})

	result, err := c.PullTokens(false)
	if err != nil {
		t.Fatalf("PullTokens failed: %v", err)
	}
	if requests != 1 {
		t.Errorf("expected the loop to stop after one repeated page, saw %d requests", requests)
	}
	if result.Success != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestPullTokensIncrementalWindow(t *testing.T) {
	var dateFrom string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dateFrom = r.URL.Query().Get("date_from")
		_ = json.NewEncoder(w).Encode([]*wire.Token{})
	}))
	defer ts.Close()

	c := NewForEndpoint(emspEndpoint(ts.URL), testConfig())
	c.SetLogger(&mockLogger{})
	c.SetDatabase(&mockDatabase{})

	if _, err := c.PullTokens(true); err != nil {
		t.Fatalf("PullTokens failed: %v", err)
	}
	parsed, err := time.Parse(time.RFC3339, dateFrom)
	if err != nil {
		t.Fatalf("date_from %q is not RFC3339: %v", dateFrom, err)
	}
	age := time.Since(parsed)
	if age < 23*time.Hour || age > 25*time.Hour {
		t.Errorf("date_from window is %v old, expected about a day", age)
	}
}

func syncStations() map[string]*models.ChargePoint {
	stations := make(map[string]*models.ChargePoint)
	for _, id := range []string{"cp1", "cp2", "cp3"} {
		stations[id] = &models.ChargePoint{
			Id:         id,
			LocationId: "loc1",
			IsEnabled:  true,
			Connectors: []*models.Connector{{Id: 1, Status: "Available"}},
		}
	}
	return stations
}

func TestSendEvseStatusesFullRun(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "ECP2") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	stations := syncStations()
	var persisted *models.SyncResult
	notifier := &mockNotifier{}
	logger := &mockLogger{}

	endpoint := emspEndpoint(ts.URL)
	c := NewForEndpoint(endpoint, testConfig())
	c.SetLogger(logger)
	c.SetNotificationService(notifier)
	c.SetDatabase(&mockDatabase{
		getChargePoints: func() ([]*models.ChargePoint, error) {
			all := []*models.ChargePoint{stations["cp1"], stations["cp2"], stations["cp3"]}
			// disabled and partner-owned stations are never published
			all = append(all, &models.ChargePoint{Id: "cp4", IsEnabled: false})
			all = append(all, &models.ChargePoint{Id: "cp5", IsEnabled: true, Roaming: true})
			return all, nil
		},
		getChargePoint: func(chargePointId string) (*models.ChargePoint, error) {
			return stations[chargePointId], nil
		},
		updateEndpointSyncResult: func(endpointId string, result *models.SyncResult) error {
			persisted = result
			return nil
		},
	})

	result, err := c.SendEvseStatuses(true)
	if err != nil {
		t.Fatalf("SendEvseStatuses failed: %v", err)
	}
	if result.Success != 2 || result.Failure != 1 || result.Total != 3 {
		t.Errorf("result = %+v", result)
	}
	if persisted == nil {
		t.Fatal("sync result not persisted")
	}
	if !reflect.DeepEqual(persisted.FailedIds, []string{"cp2"}) {
		t.Errorf("persisted failed ids = %v", persisted.FailedIds)
	}
	if !reflect.DeepEqual(persisted.SucceededIds, []string{"cp1", "cp3"}) {
		t.Errorf("persisted succeeded ids = %v", persisted.SucceededIds)
	}
	if endpoint.LastSync != persisted {
		t.Error("endpoint not updated with the run outcome")
	}
	if len(notifier.messages) != 1 {
		t.Errorf("expected one operator notification, got %d", len(notifier.messages))
	}
	if len(logger.warnings) != 1 {
		t.Errorf("expected one warning, got %v", logger.warnings)
	}
}

func TestSendEvseStatusesDelta(t *testing.T) {
	var patched []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		patched = append(patched, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	stations := syncStations()
	lastRun := time.Now().UTC().Add(-time.Hour)
	endpoint := emspEndpoint(ts.URL)
	endpoint.LastSync = &models.SyncResult{
		FailedIds: []string{"cp2"},
		LastRunAt: lastRun,
	}

	var persisted *models.SyncResult
	c := NewForEndpoint(endpoint, testConfig())
	c.SetLogger(&mockLogger{})
	c.SetDatabase(&mockDatabase{
		getChargePoint: func(chargePointId string) (*models.ChargePoint, error) {
			return stations[chargePointId], nil
		},
		getStatusEventsAfter: func(after time.Time) ([]*models.StatusEvent, error) {
			if !after.Equal(lastRun) {
				t.Errorf("delta read from %v, expected %v", after, lastRun)
			}
			return []*models.StatusEvent{{ChargePointId: "cp3", ConnectorId: 1, Status: "Charging"}}, nil
		},
		updateEndpointSyncResult: func(endpointId string, result *models.SyncResult) error {
			persisted = result
			return nil
		},
	})

	result, err := c.SendEvseStatuses(false)
	if err != nil {
		t.Fatalf("SendEvseStatuses failed: %v", err)
	}
	if result.Success != 2 || result.Failure != 0 {
		t.Errorf("result = %+v", result)
	}
	// cp1 had no failure and no status change, it stays out of the run
	if len(patched) != 2 || !strings.Contains(patched[0], "ECP2") || !strings.Contains(patched[1], "ECP3") {
		t.Errorf("patched paths = %v", patched)
	}
	if persisted == nil || len(persisted.FailedIds) != 0 {
		t.Errorf("persisted result = %+v", persisted)
	}
}

func TestSendEvseStatusesPowerSharing(t *testing.T) {
	var patched []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		patched = append(patched, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	station := &models.ChargePoint{
		Id:           "cp1",
		LocationId:   "loc1",
		IsEnabled:    true,
		PowerSharing: true,
		Connectors: []*models.Connector{
			{Id: 1, Status: "Available"},
			{Id: 2, Status: "Charging"},
		},
	}

	c := NewForEndpoint(emspEndpoint(ts.URL), testConfig())
	c.SetLogger(&mockLogger{})
	c.SetDatabase(&mockDatabase{
		getChargePoints: func() ([]*models.ChargePoint, error) {
			return []*models.ChargePoint{station}, nil
		},
		getChargePoint: func(string) (*models.ChargePoint, error) {
			return station, nil
		},
	})

	result, err := c.SendEvseStatuses(true)
	if err != nil {
		t.Fatalf("SendEvseStatuses failed: %v", err)
	}
	// one station entity, two synthetic evse patches
	if result.Total != 1 || result.Success != 1 {
		t.Errorf("result = %+v", result)
	}
	if len(patched) != 2 {
		t.Fatalf("patched paths = %v", patched)
	}
	if !strings.HasSuffix(patched[0], "ES*ABC*ECP1*1") || !strings.HasSuffix(patched[1], "ES*ABC*ECP1*2") {
		t.Errorf("patched paths = %v", patched)
	}
}
