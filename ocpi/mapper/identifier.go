package mapper

import (
	"evroam/models"
	"evroam/ocpi/wire"
	"fmt"
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]+`)

// SanitizeID upper-cases the input and collapses every run of
// non-alphanumeric characters into a single separator. Re-applying it to an
// already-sanitized identifier is a no-op.
func SanitizeID(s string) string {
	return strings.ToUpper(nonAlphanumeric.ReplaceAllString(s, "*"))
}

// DeriveEvseID builds the roaming EVSE identifier for a charging station.
func DeriveEvseID(countryCode, partyId, chargePointId string) string {
	return SanitizeID(fmt.Sprintf("%s*%s*E%s", countryCode, partyId, chargePointId))
}

// DeriveConnectorID builds the roaming identifier of one connector, and of the
// synthetic EVSE published for it when the station cannot charge in parallel.
func DeriveConnectorID(evseId string, connectorId int) string {
	return fmt.Sprintf("%s*%d", evseId, connectorId)
}

// AggregateStatus folds connector statuses into one EVSE status under the
// fixed priority order; an empty connector list yields the unknown sentinel.
func AggregateStatus(connectors []*models.Connector) wire.Status {
	status := wire.StatusUnknown
	for _, connector := range connectors {
		s := wire.ToWireStatus(connector.Status)
		if s.Priority() > status.Priority() {
			status = s
		}
	}
	return status
}
