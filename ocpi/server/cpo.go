package server

import (
	"evroam/metrics/counters"
	"evroam/models"
	"evroam/ocpi/mapper"
	"evroam/ocpi/paging"
	"evroam/ocpi/wire"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// CPO-served surface: partners read our locations and tokens. Driven purely
// by the mapper against storage reads, no mutation.

func (s *Server) mappedLocations() ([]*wire.Location, error) {
	locations, err := s.database.GetLocations()
	if err != nil {
		return nil, err
	}
	mapped := make([]*wire.Location, 0, len(locations))
	for _, location := range locations {
		if location.Roaming {
			continue
		}
		mapped = append(mapped, mapper.ToLocation(s.conf.Ocpi.CountryCode, s.conf.Ocpi.PartyId, location))
	}
	return mapped, nil
}

func (s *Server) listLocations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	counters.ObserveInbound(models.RoleCPO, "locations")
	mapped, err := s.mappedLocations()
	if err != nil {
		s.logger.Error("listing locations", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	offset, limit := paging.ParseWindow(r, s.conf.Ocpi.PageSize)
	paging.WriteListHeaders(w, r, offset, limit, len(mapped))
	s.writeJson(w, paging.Window(mapped, offset, limit))
}

func (s *Server) findLocation(w http.ResponseWriter, locationId string) *wire.Location {
	location, err := s.database.GetLocation(locationId)
	if err != nil || location.Roaming {
		w.WriteHeader(http.StatusNotFound)
		return nil
	}
	return mapper.ToLocation(s.conf.Ocpi.CountryCode, s.conf.Ocpi.PartyId, location)
}

func (s *Server) getLocation(w http.ResponseWriter, _ *http.Request, params httprouter.Params) {
	counters.ObserveInbound(models.RoleCPO, "locations")
	if location := s.findLocation(w, params.ByName("location_id")); location != nil {
		s.writeJson(w, location)
	}
}

func (s *Server) getEvse(w http.ResponseWriter, _ *http.Request, params httprouter.Params) {
	counters.ObserveInbound(models.RoleCPO, "locations")
	location := s.findLocation(w, params.ByName("location_id"))
	if location == nil {
		return
	}
	for _, evse := range location.Evses {
		if evse.Uid == params.ByName("evse_uid") {
			s.writeJson(w, evse)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) getConnector(w http.ResponseWriter, _ *http.Request, params httprouter.Params) {
	counters.ObserveInbound(models.RoleCPO, "locations")
	location := s.findLocation(w, params.ByName("location_id"))
	if location == nil {
		return
	}
	for _, evse := range location.Evses {
		if evse.Uid != params.ByName("evse_uid") {
			continue
		}
		for _, connector := range evse.Connectors {
			if connector.Id == params.ByName("connector_id") {
				s.writeJson(w, connector)
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

// listTokens serves the partner pull of our credentials. Tokens are a
// projection of local user tags at read time, never stored on this side.
func (s *Server) listTokens(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	counters.ObserveInbound(models.RoleCPO, "tokens")
	tags, err := s.database.GetUserTags()
	if err != nil {
		s.logger.Error("listing user tags", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	tokens := make([]*wire.Token, 0, len(tags))
	for _, tag := range tags {
		if !tag.Local {
			continue
		}
		tokens = append(tokens, mapper.ToToken(tag))
	}
	offset, limit := paging.ParseWindow(r, s.conf.Ocpi.PageSize)
	paging.WriteListHeaders(w, r, offset, limit, len(tokens))
	s.writeJson(w, paging.Window(tokens, offset, limit))
}
