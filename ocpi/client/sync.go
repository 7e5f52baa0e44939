package client

import (
	"encoding/json"
	"evroam/metrics/counters"
	"evroam/models"
	"evroam/ocpi/mapper"
	"evroam/ocpi/paging"
	"evroam/ocpi/wire"
	"evroam/utility"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"
)

const featureSync = "RoamingSync"

// BatchResult aggregates per-item outcomes of a batch operation. Item errors
// are collected here and never abort the batch.
type BatchResult struct {
	Success int      `json:"success"`
	Failure int      `json:"failure"`
	Total   int      `json:"total"`
	Logs    []string `json:"logs,omitempty"`
}

func (r *BatchResult) addFailure(text string) {
	r.Failure++
	r.Total++
	r.Logs = append(r.Logs, text)
}

func (r *BatchResult) addSuccess() {
	r.Success++
	r.Total++
}

type JobsResult struct {
	Tokens   *BatchResult `json:"tokens"`
	Statuses *BatchResult `json:"statuses"`
}

// PullTokens pages through the partner's token listing and upserts every
// returned token. Incremental pulls restrict the listing to the last day.
// The loop stops when no next link is returned or the next link repeats the
// current URL, guarding against malformed partner pagination.
func (c *Client) PullTokens(incremental bool) (*BatchResult, error) {
	result := &BatchResult{}
	if !c.caps.PullTokens {
		return result, utility.Err("token pull is not supported for role " + c.endpoint.Role)
	}

	current := fmt.Sprintf("%s/tokens?limit=%d", c.endpoint.Url, c.conf.PageSize)
	if incremental {
		dateFrom := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
		current += "&date_from=" + url.QueryEscape(dateFrom)
	}

	for current != "" {
		body, header, err := c.doRequest(http.MethodGet, current, nil)
		if err != nil {
			return result, fmt.Errorf("pulling tokens from %s: %w", current, err)
		}
		var tokens []*wire.Token
		if err = json.Unmarshal(body, &tokens); err != nil {
			return result, fmt.Errorf("parsing token page: %w", err)
		}
		for _, token := range tokens {
			tag := mapper.FromToken(token)
			if err = c.database.UpsertUserTag(tag); err != nil {
				result.addFailure(fmt.Sprintf("token %s: %v", token.Uid, err))
				c.logger.Error("upserting token "+token.Uid, err)
				continue
			}
			result.addSuccess()
		}
		next := paging.ParseNextLink(header.Get("Link"))
		if next == "" || next == current {
			break
		}
		current = next
	}

	counters.ObserveTokensPulled(c.endpoint.Id, result.Success)
	c.logger.FeatureEvent(featureSync, c.endpoint.Id,
		fmt.Sprintf("token pull finished: %d ok, %d failed of %d", result.Success, result.Failure, result.Total))
	return result, nil
}

// SendEvseStatuses pushes EVSE statuses to the partner. A full run covers
// every published station; an incremental run covers the union of the
// previous run's failures and the stations with status changes since the
// previous run. The outcome is persisted onto the endpoint unconditionally,
// making the tracker itself the retry mechanism.
func (c *Client) SendEvseStatuses(full bool) (*BatchResult, error) {
	result := &BatchResult{}
	if !c.caps.PushStatuses {
		return result, utility.Err("status push is not supported for role " + c.endpoint.Role)
	}
	if !c.syncMx.TryLock() {
		return result, utility.Err("status sync already running for endpoint " + c.endpoint.Id)
	}
	defer c.syncMx.Unlock()

	// snapshot before iterating: events arriving during the run are picked
	// up by the next run, never lost
	runAt := time.Now().UTC()

	candidates, err := c.candidateSet(full)
	if err != nil {
		return result, err
	}

	failed := make([]string, 0)
	succeeded := make([]string, 0)
	for _, chargePointId := range candidates {
		if err := c.pushStationStatus(chargePointId); err != nil {
			result.addFailure(fmt.Sprintf("evse %s: %v", chargePointId, err))
			failed = append(failed, chargePointId)
			counters.ObserveEvsePatch(c.endpoint.Id, false)
			continue
		}
		result.addSuccess()
		succeeded = append(succeeded, chargePointId)
		counters.ObserveEvsePatch(c.endpoint.Id, true)
	}

	syncResult := &models.SyncResult{
		SuccessCount: result.Success,
		FailureCount: result.Failure,
		TotalCount:   result.Total,
		FailedIds:    failed,
		SucceededIds: succeeded,
		LastRunAt:    runAt,
	}
	// persisted after every run, even an all-failure one, so the next delta
	// is computed from this run and not from an older one
	if err := c.database.UpdateEndpointSyncResult(c.endpoint.Id, syncResult); err != nil {
		c.logger.Error("persisting sync result for endpoint "+c.endpoint.Id, err)
	}
	c.endpoint.LastSync = syncResult
	counters.ObserveSyncRun(c.endpoint.Id, result.Failure)

	if result.Failure > 0 {
		c.logger.Warn(fmt.Sprintf("status sync for endpoint %s: %d of %d failed", c.endpoint.Id, result.Failure, result.Total))
		if c.notifier != nil {
			c.notifier.NotifyOperators(fmt.Sprintf("Roaming status sync to %s: %d of %d EVSE updates failed", c.endpoint.Id, result.Failure, result.Total))
		}
	} else if result.Success > 0 {
		c.logger.FeatureEvent(featureSync, c.endpoint.Id, fmt.Sprintf("status sync finished: %d updated", result.Success))
	}
	return result, nil
}

// candidateSet resolves the station ids to push. The ids are sorted so run
// order is stable.
func (c *Client) candidateSet(full bool) ([]string, error) {
	previous := c.endpoint.LastSync
	if previous == nil {
		full = true
	}
	seen := make(map[string]bool)
	if full {
		chargePoints, err := c.database.GetChargePoints()
		if err != nil {
			return nil, fmt.Errorf("listing charge points: %w", err)
		}
		for _, chargePoint := range chargePoints {
			if chargePoint.IsEnabled && !chargePoint.Roaming {
				seen[chargePoint.Id] = true
			}
		}
	} else {
		for _, id := range previous.FailedIds {
			seen[id] = true
		}
		events, err := c.database.GetStatusEventsAfter(previous.LastRunAt)
		if err != nil {
			return nil, fmt.Errorf("listing status events: %w", err)
		}
		for _, event := range events {
			seen[event.ChargePointId] = true
		}
	}
	candidates := make([]string, 0, len(seen))
	for id := range seen {
		candidates = append(candidates, id)
	}
	sort.Strings(candidates)
	return candidates, nil
}

// pushStationStatus patches the status of every EVSE a station publishes;
// power-sharing stations publish one synthetic EVSE per connector.
func (c *Client) pushStationStatus(chargePointId string) error {
	chargePoint, err := c.database.GetChargePoint(chargePointId)
	if err != nil {
		return fmt.Errorf("loading charge point: %w", err)
	}
	for _, evse := range mapper.ToEvses(c.conf.CountryCode, c.conf.PartyId, chargePoint) {
		if err := c.PatchEvseStatus(chargePoint.LocationId, evse.Uid, evse.Status); err != nil {
			return err
		}
	}
	return nil
}

// TriggerJobs runs the scheduled work for this endpoint: an incremental token
// pull followed by a delta status sync.
func (c *Client) TriggerJobs() (*JobsResult, error) {
	result := &JobsResult{}
	var firstErr error

	if c.caps.PullTokens {
		tokens, err := c.PullTokens(true)
		result.Tokens = tokens
		if err != nil {
			firstErr = err
			c.logger.Error("token pull for endpoint "+c.endpoint.Id, err)
		}
	}
	if c.caps.PushStatuses {
		statuses, err := c.SendEvseStatuses(false)
		result.Statuses = statuses
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			c.logger.Error("status sync for endpoint "+c.endpoint.Id, err)
		}
	}
	return result, firstErr
}
