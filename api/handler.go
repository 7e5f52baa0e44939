package api

import (
	"encoding/json"
	"evroam/internal"
	"fmt"
)

type CallType string

const (
	ReadLog    CallType = "ReadLog"
	SyncStatus CallType = "SyncStatus"
	RunSync    CallType = "RunSync"
)

type Call struct {
	CallType CallType
	Remote   string
	Payload  string
}

// SyncRunner exposes the operations surface of the roaming engines.
type SyncRunner interface {
	SyncStatus() (interface{}, error)
	FullSync(endpointId string) (interface{}, error)
}

type Handler struct {
	logger   internal.LogHandler
	database internal.Database
	runner   SyncRunner
}

func (h *Handler) SetLogger(logger internal.LogHandler) {
	h.logger = logger
}

func (h *Handler) SetDatabase(database internal.Database) {
	h.database = database
}

func (h *Handler) SetSyncRunner(runner SyncRunner) {
	h.runner = runner
}

func NewApiHandler() *Handler {
	handler := Handler{}
	return &handler
}

func (h *Handler) HandleApiCall(ac *Call) []byte {
	h.logger.Debug(fmt.Sprintf("api call %s from remote %s", ac.CallType, ac.Remote))
	var data interface{}
	var err error
	switch ac.CallType {
	case ReadLog:
		if h.database == nil {
			return nil
		}
		data, err = h.database.ReadLog()
	case SyncStatus:
		if h.runner == nil {
			return nil
		}
		data, err = h.runner.SyncStatus()
	case RunSync:
		if h.runner == nil {
			return nil
		}
		data, err = h.runner.FullSync(ac.Payload)
	default:
		h.logger.Warn(fmt.Sprintf("unknown api call type %s", ac.CallType))
		return nil
	}
	if err != nil {
		h.logger.Error(fmt.Sprintf("api call %s failed", ac.CallType), err)
		return nil
	}
	byteData, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("encoding api response failed", err)
		return nil
	}
	return byteData
}
