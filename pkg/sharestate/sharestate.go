// Package sharestate encodes the dashboard's working state into a compact
// set of plain key/value strings, the representation used for share links
// and bookmarks. Decoding is tolerant: malformed values are ignored and the
// prior state is kept, so a mangled link never breaks the view.
package sharestate

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Keys used in the encoded form.
const (
	keyCities   = "cities"
	keyTime     = "time"
	keyDuration = "duration"
)

// State is the compact external representation of the dashboard: the city
// working set, the pinned instant (zero and Pinned=false while live), and
// the meeting duration.
type State struct {
	CityIDs  []string
	Instant  time.Time
	Pinned   bool
	Duration int
}

// Encode serializes the state as URL query values. The instant is only
// written while pinned; live dashboards re-derive "now" on restore.
func Encode(s State) url.Values {
	values := url.Values{}
	values.Set(keyCities, strings.Join(s.CityIDs, ","))
	if s.Pinned && !s.Instant.IsZero() {
		values.Set(keyTime, s.Instant.UTC().Format(time.RFC3339))
	}
	values.Set(keyDuration, strconv.Itoa(s.Duration))
	return values
}

// Decode overlays encoded values onto a prior state. Each key is applied
// independently; a missing or malformed value leaves the prior field
// untouched. An invalid instant string keeps the prior instant and mode, a
// non-numeric or non-positive duration keeps the prior duration.
func Decode(values url.Values, prior State) State {
	next := prior

	if raw := values.Get(keyCities); raw != "" {
		var ids []string
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			next.CityIDs = ids
		}
	}

	if raw := values.Get(keyTime); raw != "" {
		if instant, err := time.Parse(time.RFC3339, raw); err == nil {
			next.Instant = instant.UTC()
			next.Pinned = true
		}
	}

	if raw := values.Get(keyDuration); raw != "" {
		if duration, err := strconv.Atoi(raw); err == nil && duration > 0 {
			next.Duration = duration
		}
	}

	return next
}

// DecodeQuery parses a raw query string and overlays it onto prior state.
// Unparseable queries return the prior state unchanged.
func DecodeQuery(query string, prior State) State {
	values, err := url.ParseQuery(query)
	if err != nil {
		return prior
	}
	return Decode(values, prior)
}
