// Package client implements the outbound half of the roaming protocol: one
// client per roaming endpoint, parameterized by the partner's role. Single
// operations propagate their errors to the caller; batch operations never do,
// returning an aggregate instead.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"evroam/internal"
	"evroam/models"
	"evroam/ocpi/mapper"
	"evroam/ocpi/wire"
	"evroam/utility"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const defaultTimeout = 10 * time.Second

// Config is the explicit per-endpoint configuration; the client never reads
// ambient settings.
type Config struct {
	CountryCode string
	PartyId     string
	PageSize    int
	Currency    string
	Timeout     time.Duration
}

// Capabilities gates operations by the partner's role instead of subclassing.
type Capabilities struct {
	PullTokens   bool
	PushSessions bool
	PushStatuses bool
}

type Client struct {
	conf     Config
	caps     Capabilities
	endpoint *models.RoamingEndpoint
	client   *http.Client
	database internal.Database
	logger   internal.LogHandler
	notifier internal.NotificationService

	// serializes bulk sync runs against this endpoint; an overlapping
	// trigger is skipped, equivalent to the scheduler firing later
	syncMx sync.Mutex
}

// NewForEndpoint builds the client for one roaming endpoint. A partner in the
// EMSP role receives our infrastructure pushes and serves tokens for pulling;
// a partner in the CPO role pushes its infrastructure to us instead.
func NewForEndpoint(endpoint *models.RoamingEndpoint, conf Config) *Client {
	if conf.Timeout == 0 {
		conf.Timeout = defaultTimeout
	}
	if conf.PageSize == 0 {
		conf.PageSize = 25
	}
	caps := Capabilities{}
	if endpoint.Role == models.RoleEMSP {
		caps = Capabilities{PullTokens: true, PushSessions: true, PushStatuses: true}
	}
	return &Client{
		conf:     conf,
		caps:     caps,
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

func (c *Client) SetDatabase(database internal.Database) {
	c.database = database
}

func (c *Client) SetLogger(logger internal.LogHandler) {
	c.logger = logger
}

func (c *Client) SetNotificationService(notifier internal.NotificationService) {
	c.notifier = notifier
}

func (c *Client) Endpoint() *models.RoamingEndpoint {
	return c.endpoint
}

// doRequest issues one HTTP call with the fixed per-call timeout. There is no
// transport-level retry: failed entities re-enter the candidate set of the
// next scheduled run instead.
func (c *Client) doRequest(method, url string, payload interface{}) ([]byte, http.Header, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("marshalling body: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.conf.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.endpoint.Token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("sending request: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, nil, fmt.Errorf("received status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, resp.Header, nil
}

// AuthorizeToken asks the partner to authorize a credential on one EVSE of
// one location. Anything but an ALLOWED outcome with an authorization id is
// an error for this call; it is not retried locally.
func (c *Client) AuthorizeToken(tag *models.UserTag, chargePoint *models.ChargePoint, connector *models.Connector) (*wire.AuthorizationInfo, error) {
	if !c.caps.PushSessions {
		return nil, utility.Err("token authorization is not supported for role " + c.endpoint.Role)
	}
	location, err := c.database.GetLocation(chargePoint.LocationId)
	if err != nil {
		return nil, fmt.Errorf("resolving location %s: %w", chargePoint.LocationId, err)
	}
	evseId := mapper.DeriveEvseID(c.conf.CountryCode, c.conf.PartyId, chargePoint.Id)
	if chargePoint.PowerSharing && connector != nil {
		evseId = mapper.DeriveConnectorID(evseId, connector.Id)
	}
	reference := &wire.LocationReferences{
		LocationId: location.Id,
		EvseUids:   []string{evseId},
	}

	url := fmt.Sprintf("%s/tokens/%s/authorize", c.endpoint.Url, tag.IdTag)
	body, _, err := c.doRequest(http.MethodPost, url, reference)
	if err != nil {
		return nil, err
	}
	var info wire.AuthorizationInfo
	if err = json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("parsing authorization response: %w", err)
	}
	if info.Allowed != wire.AllowedAllowed {
		return nil, fmt.Errorf("token %s not allowed: %s %s", tag.IdTag, info.Allowed, info.Info)
	}
	if info.AuthorizationId == "" {
		return nil, utility.Err("authorization response is missing authorization_id")
	}
	return &info, nil
}

// StartSession creates the roaming session for a freshly started transaction
// and pushes it with status PENDING. The session is 1:1 with the transaction
// for its entire life and is never re-created.
func (c *Client) StartSession(transaction *models.Transaction, authorizationId string) error {
	if !c.caps.PushSessions {
		return utility.Err("sessions are not supported for role " + c.endpoint.Role)
	}
	if transaction.Session != nil {
		return fmt.Errorf("OCPI Session already started for transaction %d", transaction.Id)
	}
	if authorizationId == "" {
		authorizationId = utility.NewUUID()
	}
	// a transaction billed in its own currency keeps it; the configured
	// currency covers the rest
	currency := transaction.Currency
	if currency == "" {
		currency = c.conf.Currency
	}
	now := time.Now().UTC()
	transaction.Session = &models.OcpiSession{
		Id:              authorizationId,
		AuthorizationId: authorizationId,
		Status:          wire.SessionPending,
		Currency:        currency,
		StartDateTime:   transaction.TimeStart,
		LastUpdated:     now,
	}
	if err := c.database.UpdateTransactionSession(transaction); err != nil {
		return fmt.Errorf("persisting session snapshot: %w", err)
	}
	return c.putSession(transaction)
}

// UpdateSession refreshes the session from current transaction state; the
// first energy sample moves it from PENDING to ACTIVE.
func (c *Client) UpdateSession(transaction *models.Transaction) error {
	if !c.caps.PushSessions {
		return utility.Err("sessions are not supported for role " + c.endpoint.Role)
	}
	if transaction.Session == nil {
		return fmt.Errorf("OCPI Session not started for transaction %d", transaction.Id)
	}
	session := transaction.Session
	if session.Status == wire.SessionPending {
		session.Status = wire.SessionActive
	}
	c.refreshSession(transaction)
	if err := c.database.UpdateTransactionSession(transaction); err != nil {
		return fmt.Errorf("persisting session snapshot: %w", err)
	}
	return c.putSession(transaction)
}

// StopSession completes the session when the transaction stops.
func (c *Client) StopSession(transaction *models.Transaction) error {
	if !c.caps.PushSessions {
		return utility.Err("sessions are not supported for role " + c.endpoint.Role)
	}
	if transaction.Session == nil {
		return fmt.Errorf("OCPI Session not started for transaction %d", transaction.Id)
	}
	session := transaction.Session
	session.Status = wire.SessionCompleted
	session.EndDateTime = transaction.TimeStop
	c.refreshSession(transaction)
	if err := c.database.UpdateTransactionSession(transaction); err != nil {
		return fmt.Errorf("persisting session snapshot: %w", err)
	}
	return c.putSession(transaction)
}

func (c *Client) refreshSession(transaction *models.Transaction) {
	session := transaction.Session
	session.Kwh = transaction.MeterValue()
	session.TotalCost = float64(transaction.PaymentAmount) / 100
	session.LastUpdated = time.Now().UTC()
}

// putSession recomputes and sends the full session payload; partial diffs are
// never sent.
func (c *Client) putSession(transaction *models.Transaction) error {
	locationId := transaction.ChargePointId
	if chargePoint, err := c.database.GetChargePoint(transaction.ChargePointId); err == nil {
		locationId = chargePoint.LocationId
	} else {
		c.logger.Error("resolving location for charge point "+transaction.ChargePointId, err)
	}
	session := mapper.SessionFromTransaction(c.conf.CountryCode, c.conf.PartyId, locationId, transaction)
	url := fmt.Sprintf("%s/sessions/%s/%s/%s", c.endpoint.Url, c.conf.CountryCode, c.conf.PartyId, session.Id)
	_, _, err := c.doRequest(http.MethodPut, url, session)
	return err
}

// PostCdr emits the final charge detail record for a stopped transaction.
// Exactly one CDR is created per session; the caller must not invoke it twice.
func (c *Client) PostCdr(transaction *models.Transaction) error {
	if !c.caps.PushSessions {
		return utility.Err("cdrs are not supported for role " + c.endpoint.Role)
	}
	if transaction.Session == nil {
		return fmt.Errorf("OCPI Session not started for transaction %d", transaction.Id)
	}
	if !transaction.IsFinished {
		return fmt.Errorf("transaction %d is not stopped", transaction.Id)
	}
	cdr := mapper.CdrFromTransaction(transaction)
	url := fmt.Sprintf("%s/cdrs", c.endpoint.Url)
	if _, _, err := c.doRequest(http.MethodPost, url, cdr); err != nil {
		return err
	}
	if err := c.database.AddCdr(cdr); err != nil {
		c.logger.Error("storing cdr "+cdr.Id, err)
	}
	transaction.Session.CdrSent = true
	transaction.Session.LastUpdated = time.Now().UTC()
	if err := c.database.UpdateTransactionSession(transaction); err != nil {
		c.logger.Error("persisting session snapshot", err)
	}
	return nil
}

// PatchEvseStatus updates a single EVSE status at the partner.
func (c *Client) PatchEvseStatus(locationId, evseUid string, status wire.Status) error {
	if !c.caps.PushStatuses {
		return utility.Err("status push is not supported for role " + c.endpoint.Role)
	}
	if locationId == "" || evseUid == "" || status == "" {
		return utility.Err("location id, evse uid and status are required")
	}
	url := fmt.Sprintf("%s/locations/%s/%s/%s/%s", c.endpoint.Url, c.conf.CountryCode, c.conf.PartyId, locationId, evseUid)
	_, _, err := c.doRequest(http.MethodPatch, url, map[string]wire.Status{"status": status})
	return err
}
