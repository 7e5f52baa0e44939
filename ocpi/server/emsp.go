package server

import (
	"encoding/json"
	"evroam/metrics/counters"
	"evroam/models"
	"evroam/ocpi/mapper"
	"evroam/ocpi/wire"
	"evroam/utility"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// EMSP-served surface: partners push their infrastructure and tokens to us,
// and ask us to authorize our credentials on their stations. PUT carries full
// replace semantics at the addressed level; PATCH is a shallow merge.

// authorizeToken validates a partner authorization request and answers with
// the outcome in the body. Only the absence of the referenced entities is a
// transport-level error.
func (s *Server) authorizeToken(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	counters.ObserveInbound(models.RoleEMSP, "authorize")
	var reference wire.LocationReferences
	if err := json.NewDecoder(r.Body).Decode(&reference); err != nil {
		s.clientError(w, "invalid location reference: "+err.Error())
		return
	}
	if len(reference.EvseUids) != 1 {
		s.clientError(w, fmt.Sprintf("exactly one evse reference required, got %d", len(reference.EvseUids)))
		return
	}

	chargePoint, err := s.database.GetChargePoint(reference.EvseUids[0])
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if !chargePoint.Roaming {
		s.clientError(w, "station "+chargePoint.Id+" is not a roaming station")
		return
	}

	tag, err := s.database.GetUserTag(params.ByName("token_uid"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	info := &wire.AuthorizationInfo{
		Allowed:  s.authorizationOutcome(tag),
		Location: &reference,
	}
	if info.Allowed == wire.AllowedAllowed {
		info.AuthorizationId = utility.NewUUID()
	}
	s.logger.FeatureEvent(featureInbound, "", fmt.Sprintf("authorize token %s on %s: %s", tag.IdTag, chargePoint.Id, info.Allowed))
	s.writeJson(w, info)
}

func (s *Server) authorizationOutcome(tag *models.UserTag) string {
	switch {
	case tag.Issuer != "" && tag.Issuer != s.conf.Ocpi.PartyId:
		return wire.AllowedNotAllowed
	case tag.UserStatus == models.UserStatusDeleted:
		return wire.AllowedExpired
	case tag.UserStatus == models.UserStatusBlocked:
		return wire.AllowedBlocked
	case !tag.IsEnabled:
		return wire.AllowedNotAllowed
	default:
		return wire.AllowedAllowed
	}
}

// putToken persists a partner-pushed token; tokens received on this side are
// authoritative, unlike the projected CPO-served ones.
func (s *Server) putToken(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	counters.ObserveInbound(models.RoleEMSP, "tokens")
	var token wire.Token
	if err := json.NewDecoder(r.Body).Decode(&token); err != nil {
		s.clientError(w, "invalid token: "+err.Error())
		return
	}
	if token.Uid == "" {
		token.Uid = params.ByName("token_uid")
	}
	if err := s.database.UpsertUserTag(mapper.FromToken(&token)); err != nil {
		s.logger.Error("storing token "+token.Uid, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.writeJson(w, &token)
}

func (s *Server) putLocation(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	counters.ObserveInbound(models.RoleEMSP, "locations")
	var location wire.Location
	if err := json.NewDecoder(r.Body).Decode(&location); err != nil {
		s.clientError(w, "invalid location: "+err.Error())
		return
	}
	if location.Id == "" {
		location.Id = params.ByName("location_id")
	}
	// full replace at the location level: stations absent from the pushed
	// body are gone on the partner side and must go here too
	existing, lookupErr := s.database.GetLocation(location.Id)
	if err := s.database.UpsertLocation(mapper.FromLocation(&location)); err != nil {
		s.logger.Error("storing location "+location.Id, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	pushed := make(map[string]bool, len(location.Evses))
	for _, evse := range location.Evses {
		pushed[evse.Uid] = true
		if err := s.database.UpsertChargePoint(mapper.FromEvse(location.Id, evse)); err != nil {
			s.logger.Error("storing evse "+evse.Uid, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
	if lookupErr == nil && existing != nil {
		for _, chargePoint := range existing.Evses {
			if pushed[chargePoint.Id] {
				continue
			}
			if err := s.database.DeleteChargePoint(chargePoint.Id); err != nil {
				s.logger.Error("deleting replaced evse "+chargePoint.Id, err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			s.logger.FeatureEvent(featureInbound, "", "evse removed by location replace: "+chargePoint.Id)
		}
	}
	s.writeJson(w, &location)
}

func (s *Server) patchLocation(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	counters.ObserveInbound(models.RoleEMSP, "locations")
	location, err := s.database.GetLocation(params.ByName("location_id"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.clientError(w, "invalid patch: "+err.Error())
		return
	}
	mergeLocation(location, patch)
	if err := s.database.UpsertLocation(location); err != nil {
		s.logger.Error("storing location "+location.Id, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) putEvse(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	counters.ObserveInbound(models.RoleEMSP, "locations")
	var evse wire.Evse
	if err := json.NewDecoder(r.Body).Decode(&evse); err != nil {
		s.clientError(w, "invalid evse: "+err.Error())
		return
	}
	if evse.Uid == "" {
		evse.Uid = params.ByName("evse_uid")
	}
	// REMOVED is a deletion, not a status change
	if evse.Status == wire.StatusRemoved {
		if err := s.database.DeleteChargePoint(evse.Uid); err != nil {
			s.logger.Error("deleting evse "+evse.Uid, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		s.logger.FeatureEvent(featureInbound, "", "evse removed: "+evse.Uid)
		w.WriteHeader(http.StatusOK)
		return
	}
	if err := s.database.UpsertChargePoint(mapper.FromEvse(params.ByName("location_id"), &evse)); err != nil {
		s.logger.Error("storing evse "+evse.Uid, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.writeJson(w, &evse)
}

func (s *Server) patchEvse(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	counters.ObserveInbound(models.RoleEMSP, "locations")
	chargePoint, err := s.database.GetChargePoint(params.ByName("evse_uid"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.clientError(w, "invalid patch: "+err.Error())
		return
	}
	if status, ok := patch["status"].(string); ok {
		if wire.Status(status) == wire.StatusRemoved {
			if err := s.database.DeleteChargePoint(chargePoint.Id); err != nil {
				s.logger.Error("deleting evse "+chargePoint.Id, err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
			return
		}
		chargePoint.Status = wire.FromWireStatus(wire.Status(status))
	}
	if err := s.database.UpsertChargePoint(chargePoint); err != nil {
		s.logger.Error("storing evse "+chargePoint.Id, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) putConnector(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	counters.ObserveInbound(models.RoleEMSP, "locations")
	chargePoint, err := s.database.GetChargePoint(params.ByName("evse_uid"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var connector wire.Connector
	if err := json.NewDecoder(r.Body).Decode(&connector); err != nil {
		s.clientError(w, "invalid connector: "+err.Error())
		return
	}
	if connector.Id == "" {
		connector.Id = params.ByName("connector_id")
	}
	replacement := mapper.FromConnector(chargePoint.Id, len(chargePoint.Connectors)+1, &connector)
	replaced := false
	for i, existing := range chargePoint.Connectors {
		if existing.Id == replacement.Id {
			chargePoint.Connectors[i] = replacement
			replaced = true
			break
		}
	}
	if !replaced {
		chargePoint.Connectors = append(chargePoint.Connectors, replacement)
	}
	if err := s.database.UpsertChargePoint(chargePoint); err != nil {
		s.logger.Error("storing connector on "+chargePoint.Id, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.writeJson(w, &connector)
}

// patchConnector merges onto an existing connector. A patch addressing a
// connector the EVSE does not have is partner protocol misuse: it is logged
// and answered with success, since the partner cannot retry it into
// correctness without fixing the request.
func (s *Server) patchConnector(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	counters.ObserveInbound(models.RoleEMSP, "locations")
	chargePoint, err := s.database.GetChargePoint(params.ByName("evse_uid"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.clientError(w, "invalid patch: "+err.Error())
		return
	}
	connectorId := params.ByName("connector_id")
	for _, connector := range chargePoint.Connectors {
		if fmt.Sprintf("%d", connector.Id) != connectorId {
			continue
		}
		mergeConnector(connector, patch)
		connector.ChargePointId = chargePoint.Id
		if err := s.database.UpdateConnector(connector); err != nil {
			s.logger.Error("storing connector on "+chargePoint.Id, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	}
	s.logger.Warn(fmt.Sprintf("patch for unknown connector %s on evse %s ignored", connectorId, chargePoint.Id))
	w.WriteHeader(http.StatusOK)
}

func mergeLocation(location *models.Location, patch map[string]interface{}) {
	if name, ok := patch["name"].(string); ok {
		location.Name = name
	}
	if address, ok := patch["address"].(string); ok {
		location.Address = address
	}
	if city, ok := patch["city"].(string); ok {
		location.City = city
	}
	if postalCode, ok := patch["postal_code"].(string); ok {
		location.PostalCode = postalCode
	}
	if country, ok := patch["country"].(string); ok {
		location.Country = country
	}
	if coordinates, ok := patch["coordinates"].(map[string]interface{}); ok {
		if latitude, ok := coordinates["latitude"].(string); ok {
			location.Coordinates.Latitude = latitude
		}
		if longitude, ok := coordinates["longitude"].(string); ok {
			location.Coordinates.Longitude = longitude
		}
	}
}

func mergeConnector(connector *models.Connector, patch map[string]interface{}) {
	if standard, ok := patch["standard"].(string); ok {
		connector.Type = wire.FromWireStandard(standard)
	}
	if format, ok := patch["format"].(string); ok {
		connector.Format = wire.FromWireFormat(format)
	}
	if powerType, ok := patch["power_type"].(string); ok {
		connector.PowerType = wire.FromWirePowerType(powerType)
	}
	if voltage, ok := patch["voltage"].(float64); ok {
		connector.Voltage = int(voltage)
	}
	if amperage, ok := patch["amperage"].(float64); ok {
		connector.Amperage = int(amperage)
	}
}
