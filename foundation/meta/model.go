package meta

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Level is the aggregation level of an insights query.
type Level string

// Set of insights levels.
const (
	LevelAccount  Level = "account"
	LevelCampaign Level = "campaign"
	LevelAdSet    Level = "adset"
	LevelAd       Level = "ad"
)

// DateRange selects the reporting window. Preset wins when set, otherwise
// Since and Until (YYYY-MM-DD) are sent as a time range.
type DateRange struct {
	Preset string
	Since  string
	Until  string
}

// Last30Days is the window used when nothing else is asked for.
var Last30Days = DateRange{Preset: "last_30d"}

// Label returns a short description of the window.
func (dr DateRange) Label() string {
	if dr.Preset != "" {
		return dr.Preset
	}
	return dr.Since + ".." + dr.Until
}

// AdAccount is an ads account the token can read.
type AdAccount struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
}

// Campaign is an ads campaign.
type Campaign struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status"`
	Objective       string `json:"objective"`
	DailyBudget     string `json:"daily_budget"`
	LifetimeBudget  string `json:"lifetime_budget"`
}

// Object is an ad set or an ad.
type Object struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status"`
}

// Action is a count of one action type, leads for example.
type Action struct {
	Type  string  `json:"action_type"`
	Value float64 `json:"value"`
}

// Insights is the aggregate of every row an insights query returned.
type Insights struct {
	Spend       float64  `json:"spend"`
	Reach       int64    `json:"reach"`
	Impressions int64    `json:"impressions"`
	Clicks      int64    `json:"clicks"`
	Actions     []Action `json:"actions"`
}

// Action returns the value of the action type, zero when absent.
func (in Insights) Action(actionType string) float64 {
	for _, a := range in.Actions {
		if a.Type == actionType {
			return a.Value
		}
	}
	return 0
}

// Error is the error body the Graph API answers with.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("graph api: status %d: %s (%s %d)", e.Status, e.Message, e.Type, e.Code)
}

// =============================================================================

// The Graph API sends every number as a string.

type insightsRow struct {
	Spend       flexFloat   `json:"spend"`
	Reach       flexFloat   `json:"reach"`
	Impressions flexFloat   `json:"impressions"`
	Clicks      flexFloat   `json:"clicks"`
	Actions     []actionRow `json:"actions"`
}

type actionRow struct {
	Type  string    `json:"action_type"`
	Value flexFloat `json:"value"`
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse %q: %w", s, err)
		}
		*f = flexFloat(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// aggregate sums the rows and merges their actions by type, keeping the order
// in which action types first appear.
func aggregate(rows []insightsRow) Insights {
	var in Insights
	idx := make(map[string]int)

	for _, r := range rows {
		in.Spend += float64(r.Spend)
		in.Reach += int64(r.Reach)
		in.Impressions += int64(r.Impressions)
		in.Clicks += int64(r.Clicks)

		for _, a := range r.Actions {
			if a.Type == "" {
				continue
			}
			i, ok := idx[a.Type]
			if !ok {
				idx[a.Type] = len(in.Actions)
				in.Actions = append(in.Actions, Action{Type: a.Type, Value: float64(a.Value)})
				continue
			}
			in.Actions[i].Value += float64(a.Value)
		}
	}

	return in
}
