// Package server implements the server half of the roaming protocol: the
// CPO-served read surface and the EMSP-served push surface, both hosted on
// one router. Protocol outcomes travel in the response body; transport-level
// errors are reserved for absent entities and invalid requests.
package server

import (
	"crypto/tls"
	"encoding/json"
	"evroam/internal"
	"evroam/internal/config"
	"fmt"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

const featureInbound = "RoamingInbound"

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	database   internal.Database
	logger     internal.LogHandler
}

func NewServer(conf *config.Config, logger internal.LogHandler) *Server {
	server := &Server{
		conf:   conf,
		logger: logger,
	}
	router := httprouter.New()
	server.Register(router)
	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port),
		Handler: router,
	}
	return server
}

func (s *Server) SetDatabase(database internal.Database) {
	s.database = database
}

func (s *Server) Register(router *httprouter.Router) {
	prefix := "/ocpi/" + s.conf.Ocpi.Version

	router.GET(prefix+"/cpo/locations", s.withAuth(s.listLocations))
	router.GET(prefix+"/cpo/locations/:location_id", s.withAuth(s.getLocation))
	router.GET(prefix+"/cpo/locations/:location_id/:evse_uid", s.withAuth(s.getEvse))
	router.GET(prefix+"/cpo/locations/:location_id/:evse_uid/:connector_id", s.withAuth(s.getConnector))
	router.GET(prefix+"/cpo/tokens", s.withAuth(s.listTokens))

	router.POST(prefix+"/emsp/tokens/:token_uid/authorize", s.withAuth(s.authorizeToken))
	router.PUT(prefix+"/emsp/tokens/:token_uid", s.withAuth(s.putToken))

	locations := prefix + "/emsp/locations/:country_code/:party_id/:location_id"
	router.PUT(locations, s.withAuth(s.putLocation))
	router.PATCH(locations, s.withAuth(s.patchLocation))
	router.PUT(locations+"/:evse_uid", s.withAuth(s.putEvse))
	router.PATCH(locations+"/:evse_uid", s.withAuth(s.patchEvse))
	router.PUT(locations+"/:evse_uid/:connector_id", s.withAuth(s.putConnector))
	router.PATCH(locations+"/:evse_uid/:connector_id", s.withAuth(s.patchConnector))
}

func (s *Server) Start() error {
	s.logger.FeatureEvent(featureInbound, "", "starting roaming server on "+s.httpServer.Addr)
	if s.conf.Listen.TLS {
		cert, err := tls.LoadX509KeyPair(s.conf.Listen.CertFile, s.conf.Listen.KeyFile)
		if err != nil {
			return fmt.Errorf("loading certificate: %w", err)
		}
		s.httpServer.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		return s.httpServer.ListenAndServeTLS("", "")
	}
	return s.httpServer.ListenAndServe()
}

// withAuth matches the static bearer-style token of the request against the
// registered roaming endpoints.
func (s *Server) withAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Token ")
		if token == "" || token == r.Header.Get("Authorization") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		endpoints, err := s.database.GetEndpoints()
		if err != nil {
			s.logger.Error("loading endpoints for auth", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		for _, endpoint := range endpoints {
			if endpoint.Token == token {
				next(w, r, params)
				return
			}
		}
		s.logger.Warn(fmt.Sprintf("inbound request with unknown token from %s", r.RemoteAddr))
		w.WriteHeader(http.StatusUnauthorized)
	}
}

func (s *Server) writeJson(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding response", err)
	}
}

func (s *Server) clientError(w http.ResponseWriter, text string) {
	w.WriteHeader(http.StatusBadRequest)
	s.writeJson(w, map[string]string{"error": text})
}
