// Package session bridges transaction lifecycle events from the
// charging-station subsystem to roaming session transitions and the final CDR.
package session

import (
	"evroam/internal"
	"evroam/models"
	"evroam/ocpi/client"
	"fmt"
)

const featureSession = "RoamingSession"

type Adapter struct {
	client   *client.Client
	database internal.Database
	logger   internal.LogHandler
}

func NewAdapter(client *client.Client) *Adapter {
	return &Adapter{
		client: client,
	}
}

func (a *Adapter) SetDatabase(database internal.Database) {
	a.database = database
}

func (a *Adapter) SetLogger(logger internal.LogHandler) {
	a.logger = logger
}

// OnStatusNotification is a no-op: status changes are recorded once by the
// event listener and reach the partner through the next delta sync run.
func (a *Adapter) OnStatusNotification(_ *internal.EventMessage) {
}

// OnTransactionStart authorizes the credential at the partner and opens the
// roaming session with the authorization id the partner issued.
func (a *Adapter) OnTransactionStart(event *internal.EventMessage) {
	transaction, err := a.database.GetTransaction(event.TransactionId)
	if err != nil {
		a.logger.Error(fmt.Sprintf("loading transaction %d", event.TransactionId), err)
		return
	}
	tag, err := a.database.GetUserTag(event.IdTag)
	if err != nil {
		a.logger.Error("loading tag "+event.IdTag, err)
		return
	}
	chargePoint, err := a.database.GetChargePoint(transaction.ChargePointId)
	if err != nil {
		a.logger.Error("loading charge point "+transaction.ChargePointId, err)
		return
	}
	var connector *models.Connector
	for _, c := range chargePoint.Connectors {
		if c.Id == transaction.ConnectorId {
			connector = c
			break
		}
	}

	authorizationId := ""
	info, err := a.client.AuthorizeToken(tag, chargePoint, connector)
	if err != nil {
		a.logger.Error("authorizing token "+tag.IdTag, err)
	} else {
		authorizationId = info.AuthorizationId
	}

	if err := a.client.StartSession(transaction, authorizationId); err != nil {
		a.logger.Error(fmt.Sprintf("starting session for transaction %d", transaction.Id), err)
		return
	}
	a.logger.FeatureEvent(featureSession, a.client.Endpoint().Id,
		fmt.Sprintf("session %s started for transaction %d", transaction.Session.Id, transaction.Id))
}

// OnMeterValues pushes the refreshed session; the first sample activates it.
func (a *Adapter) OnMeterValues(event *internal.EventMessage) {
	transaction, err := a.database.GetTransaction(event.TransactionId)
	if err != nil {
		a.logger.Error(fmt.Sprintf("loading transaction %d", event.TransactionId), err)
		return
	}
	if err := a.client.UpdateSession(transaction); err != nil {
		a.logger.Error(fmt.Sprintf("updating session for transaction %d", transaction.Id), err)
	}
}

// OnTransactionStop completes the session and emits the CDR exactly once.
func (a *Adapter) OnTransactionStop(event *internal.EventMessage) {
	transaction, err := a.database.GetTransaction(event.TransactionId)
	if err != nil {
		a.logger.Error(fmt.Sprintf("loading transaction %d", event.TransactionId), err)
		return
	}
	if err := a.client.StopSession(transaction); err != nil {
		a.logger.Error(fmt.Sprintf("stopping session for transaction %d", transaction.Id), err)
		return
	}
	if transaction.Session.CdrSent {
		a.logger.Warn(fmt.Sprintf("cdr already sent for transaction %d", transaction.Id))
		return
	}
	if err := a.client.PostCdr(transaction); err != nil {
		a.logger.Error(fmt.Sprintf("posting cdr for transaction %d", transaction.Id), err)
		return
	}
	a.logger.FeatureEvent(featureSession, a.client.Endpoint().Id,
		fmt.Sprintf("session %s completed, cdr sent for transaction %d", transaction.Session.Id, transaction.Id))
}
