package server

import (
	"evroam/internal"
	"evroam/ocpi"
	"fmt"
	"time"
)

const featureNameTrigger = "SyncTrigger"

// SyncTrigger fires the scheduled sync jobs of every registered roaming
// engine on a fixed interval. Overlapping runs on the same endpoint are
// rejected by the engine itself.
type SyncTrigger struct {
	engines  []*ocpi.OCPI
	interval time.Duration
	logger   internal.LogHandler
}

func NewSyncTrigger(intervalSeconds int, logger internal.LogHandler) *SyncTrigger {
	return &SyncTrigger{
		interval: time.Duration(intervalSeconds) * time.Second,
		logger:   logger,
	}
}

func (t *SyncTrigger) AddEngine(engine *ocpi.OCPI) {
	t.engines = append(t.engines, engine)
}

func (t *SyncTrigger) Start() {
	go t.run()
}

func (t *SyncTrigger) run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, engine := range t.engines {
				go func(e *ocpi.OCPI) {
					if _, err := e.TriggerJobs(); err != nil {
						t.logger.FeatureEvent(featureNameTrigger, e.Endpoint().Id, fmt.Sprintf("sync jobs: %v", err))
					}
				}(engine)
			}
		}
	}
}
