package store

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/roach88/fitsweep/internal/sweep"
)

// countersDoc is the JSON shape of the counters column.
type countersDoc struct {
	Actions  map[sweep.Action]int    `json:"actions"`
	Failures map[sweep.ErrorKind]int `json:"failures"`
}

func marshalCounters(c sweep.Counters) (string, error) {
	doc := countersDoc{Actions: c.Actions, Failures: c.Failures}
	if doc.Actions == nil {
		doc.Actions = map[sweep.Action]int{}
	}
	if doc.Failures == nil {
		doc.Failures = map[sweep.ErrorKind]int{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal counters: %w", err)
	}
	return string(data), nil
}

func unmarshalCounters(s string) (sweep.Counters, error) {
	c := sweep.NewCounters()
	if s == "" || s == "{}" {
		return c, nil
	}
	var doc countersDoc
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return c, fmt.Errorf("unmarshal counters: %w", err)
	}
	for k, v := range doc.Actions {
		c.Actions[k] = v
	}
	for k, v := range doc.Failures {
		c.Failures[k] = v
	}
	return c, nil
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
