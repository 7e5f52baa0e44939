// Package events subscribes to the charging-station subsystem's event feed.
// Its output is the only trigger signal the roaming engine consumes from the
// station-facing protocol.
package events

import (
	"evroam/internal"
	"evroam/models"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const reconnectDelay = 10 * time.Second

type Listener struct {
	url      string
	token    string
	database internal.Database
	logger   internal.LogHandler
	handlers []internal.EventHandler
}

func NewListener(url, token string) *Listener {
	return &Listener{
		url:   url,
		token: token,
	}
}

func (l *Listener) SetDatabase(database internal.Database) {
	l.database = database
}

func (l *Listener) SetLogger(logger internal.LogHandler) {
	l.logger = logger
}

func (l *Listener) AddEventHandler(handler internal.EventHandler) {
	l.handlers = append(l.handlers, handler)
}

func (l *Listener) Start() {
	go l.listen()
}

func (l *Listener) listen() {
	for {
		header := http.Header{}
		if l.token != "" {
			header.Set("Authorization", "Token "+l.token)
		}
		conn, _, err := websocket.DefaultDialer.Dial(l.url, header)
		if err != nil {
			l.logger.Error("connecting to event feed "+l.url, err)
			time.Sleep(reconnectDelay)
			continue
		}
		l.logger.FeatureEvent("Events", "", "connected to event feed "+l.url)
		l.readPump(conn)
		time.Sleep(reconnectDelay)
	}
}

func (l *Listener) readPump(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()
	for {
		var event internal.EventMessage
		if err := conn.ReadJSON(&event); err != nil {
			l.logger.Error("reading event feed", err)
			return
		}
		l.dispatch(&event)
	}
}

func (l *Listener) dispatch(event *internal.EventMessage) {
	switch event.Type {
	case internal.EventTypeStatusNotification:
		l.recordStatusEvent(event)
		for _, handler := range l.handlers {
			handler.OnStatusNotification(event)
		}
	case internal.EventTypeTransactionStart:
		for _, handler := range l.handlers {
			handler.OnTransactionStart(event)
		}
	case internal.EventTypeMeterValues:
		for _, handler := range l.handlers {
			handler.OnMeterValues(event)
		}
	case internal.EventTypeTransactionStop:
		for _, handler := range l.handlers {
			handler.OnTransactionStop(event)
		}
	default:
		l.logger.Warn(fmt.Sprintf("unknown event type received: %s", event.Type))
	}
}

// recordStatusEvent stores the change once per process; every endpoint's next
// delta sync derives its candidate set from these records.
func (l *Listener) recordStatusEvent(event *internal.EventMessage) {
	if event.ConnectorId == 0 || l.database == nil {
		return
	}
	statusEvent := &models.StatusEvent{
		ChargePointId: event.ChargePointId,
		ConnectorId:   event.ConnectorId,
		Status:        event.Status,
		Time:          event.Time,
	}
	if err := l.database.AddStatusEvent(statusEvent); err != nil {
		l.logger.Error("recording status event for "+event.ChargePointId, err)
	}
}
