package models

import "time"

const (
	RoleCPO  = "CPO"
	RoleEMSP = "EMSP"
)

// SyncResult is the persisted outcome of the last bulk status sync against one
// roaming endpoint. The failed set is the seed of the next incremental run.
type SyncResult struct {
	SuccessCount int       `json:"success_count" bson:"success_count"`
	FailureCount int       `json:"failure_count" bson:"failure_count"`
	TotalCount   int       `json:"total_count" bson:"total_count"`
	FailedIds    []string  `json:"failed_ids" bson:"failed_ids"`
	SucceededIds []string  `json:"succeeded_ids" bson:"succeeded_ids"`
	LastRunAt    time.Time `json:"last_run_at" bson:"last_run_at"`
}

type RoamingEndpoint struct {
	Id           string      `json:"endpoint_id" bson:"endpoint_id"`
	Role         string      `json:"role" bson:"role"`
	Url          string      `json:"url" bson:"url"`
	Token        string      `json:"token" bson:"token"`
	CountryCode  string      `json:"country_code" bson:"country_code"`
	PartyId      string      `json:"party_id" bson:"party_id"`
	Registration string      `json:"registration" bson:"registration"`
	LastSync     *SyncResult `json:"last_sync,omitempty" bson:"last_sync,omitempty"`
}
