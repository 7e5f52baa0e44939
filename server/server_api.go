package server

import (
	"encoding/json"
	"evroam/api"
	"evroam/internal"
	"evroam/internal/config"
	"fmt"
	"io"
	"net/http"
)

const apiEndpoint = "/api"

type Api struct {
	conf       *config.Config
	httpServer *http.Server
	handler    *api.Handler
	logger     internal.LogHandler
}

func NewServerApi(conf *config.Config, logger internal.LogHandler) *Api {
	server := Api{
		conf:   conf,
		logger: logger,
	}
	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", conf.Api.BindIP, conf.Api.Port),
		Handler: http.HandlerFunc(server.handleRoot),
	}
	return &server
}

func (s *Api) SetHandler(handler *api.Handler) {
	s.handler = handler
}

func (s *Api) Start() error {
	return s.httpServer.ListenAndServe()
}

// handle requests to the root path
func (s *Api) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.logger.Warn(fmt.Sprintf("api: invalid method %s from %s", r.Method, r.RemoteAddr))
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != apiEndpoint {
		s.logger.Warn(fmt.Sprintf("api: invalid path %s from %s", r.URL.Path, r.RemoteAddr))
		w.WriteHeader(http.StatusNotFound)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error("api: reading request body", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var call api.Call
	if err = json.Unmarshal(body, &call); err != nil {
		s.logger.Error("api: parsing request body", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	call.Remote = r.RemoteAddr

	data := s.handler.HandleApiCall(&call)
	if data == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	if _, err = w.Write(data); err != nil {
		s.logger.Error("api: writing response", err)
	}
}
