package server

import (
	"evroam/api"
	"evroam/events"
	"evroam/internal"
	"evroam/internal/config"
	"evroam/metrics"
	"evroam/models"
	"evroam/ocpi"
	"evroam/ocpi/client"
	ocpiserver "evroam/ocpi/server"
	"evroam/pusher"
	"evroam/telegram"
	"evroam/utility"
	"fmt"
	"log"
	"time"
)

type CentralSystem struct {
	conf     *config.Config
	logger   internal.LogHandler
	database internal.Database
	server   *ocpiserver.Server
	engines  []*ocpi.OCPI
	listener *events.Listener
	trigger  *SyncTrigger
	api      *Api
}

func NewCentralSystem(conf *config.Config) (*CentralSystem, error) {
	cs := &CentralSystem{conf: conf}

	log.Println("set time zone to " + conf.TimeZone)
	location, err := time.LoadLocation(conf.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time zone initialization failed: %s", err)
	}

	var database internal.Database
	if conf.Mongo.Enabled {
		database, err = internal.NewMongoClient(conf)
		if err != nil {
			return nil, fmt.Errorf("mongodb setup failed: %s", err)
		}
		log.Println("mongodb is configured and enabled")
	} else {
		log.Println("database is disabled")
	}
	cs.database = database

	var messageService internal.MessageService
	if conf.Pusher.Enabled {
		messageService, err = pusher.NewPusher(conf)
		if err != nil {
			return nil, fmt.Errorf("pusher setup failed: %s", err)
		}
		log.Println("pusher service is configured and enabled")
	} else {
		log.Println("message pushing service is disabled")
	}

	// logger with database and push service for the message handling
	logService := internal.NewLogger(location)
	logService.SetDebugMode(conf.IsDebug)
	logService.SetDatabase(database)
	logService.SetMessageService(messageService)
	cs.logger = logService

	var notifier internal.NotificationService
	if conf.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(conf.Telegram.ApiKey)
		if err != nil {
			return nil, fmt.Errorf("telegram bot setup failed: %s", err)
		}
		telegramBot.SetDatabase(database)
		telegramBot.Start()
		notifier = telegramBot
		log.Println("telegram bot is configured and enabled")
	}

	// one roaming engine per registered endpoint
	clientConf := client.Config{
		CountryCode: conf.Ocpi.CountryCode,
		PartyId:     conf.Ocpi.PartyId,
		PageSize:    conf.Ocpi.PageSize,
		Currency:    conf.Ocpi.Currency,
	}
	trigger := NewSyncTrigger(conf.Ocpi.SyncInterval, logService)
	if database != nil {
		endpoints, err := database.GetEndpoints()
		if err != nil {
			return nil, fmt.Errorf("loading roaming endpoints failed: %s", err)
		}
		for _, endpoint := range endpoints {
			engine := ocpi.New(endpoint, clientConf)
			engine.SetDatabase(database)
			engine.SetLogger(logService)
			if notifier != nil {
				engine.SetNotificationService(notifier)
			}
			cs.engines = append(cs.engines, engine)
			trigger.AddEngine(engine)
			log.Printf("roaming engine registered for endpoint %s (%s)", endpoint.Id, endpoint.Role)
		}
	}
	cs.trigger = trigger

	// station event feed
	if conf.Events.Enabled {
		listener := events.NewListener(conf.Events.Url, conf.Events.Token)
		listener.SetDatabase(database)
		listener.SetLogger(logService)
		for _, engine := range cs.engines {
			listener.AddEventHandler(engine)
		}
		cs.listener = listener
		log.Println("station event feed is configured and enabled")
	}

	// inbound roaming server
	roamingServer := ocpiserver.NewServer(conf, logService)
	roamingServer.SetDatabase(database)
	cs.server = roamingServer

	// api server
	if conf.Api.Enabled {
		apiHandler := api.NewApiHandler()
		apiHandler.SetLogger(logService)
		apiHandler.SetDatabase(database)
		apiHandler.SetSyncRunner(cs)
		apiServer := NewServerApi(conf, logService)
		apiServer.SetHandler(apiHandler)
		cs.api = apiServer
	}

	return cs, nil
}

func (cs *CentralSystem) Start() {

	go func() {
		if err := cs.server.Start(); err != nil {
			cs.logger.Error("roaming server failed", err)
		}
	}()

	if cs.api != nil {
		go func() {
			if err := cs.api.Start(); err != nil {
				cs.logger.Error("api server failed", err)
			}
		}()
	}

	if cs.conf.Metrics.Enabled {
		go func() {
			if err := metrics.Listen(cs.conf); err != nil {
				cs.logger.Error("metrics server failed", err)
			}
		}()
	}

	if cs.listener != nil {
		cs.listener.Start()
	}
	cs.trigger.Start()

	select {}
}

// SyncStatus reports the last sync outcome of every registered endpoint.
func (cs *CentralSystem) SyncStatus() (interface{}, error) {
	status := make([]*models.RoamingEndpoint, 0, len(cs.engines))
	for _, engine := range cs.engines {
		status = append(status, engine.Endpoint())
	}
	return status, nil
}

// FullSync forces a complete status resync; with an empty endpoint id every
// registered endpoint is resynced.
func (cs *CentralSystem) FullSync(endpointId string) (interface{}, error) {
	results := make(map[string]*client.BatchResult)
	for _, engine := range cs.engines {
		if endpointId != "" && engine.Endpoint().Id != endpointId {
			continue
		}
		result, err := engine.FullSync()
		if err != nil {
			cs.logger.Error("full sync for endpoint "+engine.Endpoint().Id, err)
			continue
		}
		results[engine.Endpoint().Id] = result
	}
	if len(results) == 0 {
		return nil, utility.Err("no matching endpoint for full sync")
	}
	return results, nil
}
