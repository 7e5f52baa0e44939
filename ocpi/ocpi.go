// Package ocpi wires one roaming engine per partner endpoint: the outbound
// client, the session adapter and the scheduled sync jobs.
package ocpi

import (
	"evroam/internal"
	"evroam/models"
	"evroam/ocpi/client"
	"evroam/ocpi/session"
)

type OCPI struct {
	endpoint *models.RoamingEndpoint
	client   *client.Client
	adapter  *session.Adapter
}

func New(endpoint *models.RoamingEndpoint, conf client.Config) *OCPI {
	cl := client.NewForEndpoint(endpoint, conf)
	return &OCPI{
		endpoint: endpoint,
		client:   cl,
		adapter:  session.NewAdapter(cl),
	}
}

func (o *OCPI) SetDatabase(database internal.Database) {
	o.client.SetDatabase(database)
	o.adapter.SetDatabase(database)
}

func (o *OCPI) SetLogger(logger internal.LogHandler) {
	o.client.SetLogger(logger)
	o.adapter.SetLogger(logger)
}

func (o *OCPI) SetNotificationService(notifier internal.NotificationService) {
	o.client.SetNotificationService(notifier)
}

func (o *OCPI) Endpoint() *models.RoamingEndpoint {
	return o.endpoint
}

func (o *OCPI) OnStatusNotification(event *internal.EventMessage) {
	o.adapter.OnStatusNotification(event)
}

func (o *OCPI) OnTransactionStart(event *internal.EventMessage) {
	o.adapter.OnTransactionStart(event)
}

func (o *OCPI) OnMeterValues(event *internal.EventMessage) {
	o.adapter.OnMeterValues(event)
}

func (o *OCPI) OnTransactionStop(event *internal.EventMessage) {
	o.adapter.OnTransactionStop(event)
}

// TriggerJobs runs the scheduled sync work for this endpoint.
func (o *OCPI) TriggerJobs() (*client.JobsResult, error) {
	return o.client.TriggerJobs()
}

// FullSync forces a complete resync of every published EVSE status.
func (o *OCPI) FullSync() (*client.BatchResult, error) {
	return o.client.SendEvseStatuses(true)
}
