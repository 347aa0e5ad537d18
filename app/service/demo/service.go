// Package demo decides which demo dataset an anonymous visitor sees and
// keeps the choice sticky for the rest of their session.
package demo

import (
	"lineagemap/app/config"
	"lineagemap/app/service/dataset"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

const sessionKey = "demo_sample"

// Session is the per-caller key/value store the sticky choice lives in.
// The server adapts its cookie session to this; tests use a map.
type Session interface {
	Get(key string) string
	Set(key, value string)
}

type Service struct {
	cfg        *config.Config
	datasetSvc *dataset.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:        do.MustInvoke[*config.Config](di),
		datasetSvc: do.MustInvoke[*dataset.Service](di),
	}, nil
}

// Current picks the demo dataset for this request and records it.
func (s *Service) Current(sess Session, requested string) string {
	return Select(sess, requested, s.datasetSvc.ListAvailableIDs(), s.cfg.Samples.DefaultID)
}

// Select applies the selection priority and writes the winner back into
// the session. The order is the user-visible contract:
//
//  1. explicitly requested id, when available
//  2. the session's previous sticky choice, when still available
//  3. the configured default, when available
//  4. the lexicographically smallest available id
//  5. the configured default, even if no such dataset exists
func Select(sess Session, requested string, available []string, fallback string) string {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested != "" && pie.Contains(available, requested) {
		sess.Set(sessionKey, requested)
		return requested
	}

	sticky := strings.ToLower(strings.TrimSpace(sess.Get(sessionKey)))
	if sticky != "" && pie.Contains(available, sticky) {
		return sticky
	}

	if pie.Contains(available, fallback) {
		sess.Set(sessionKey, fallback)
		return fallback
	}

	if len(available) > 0 {
		pick := pie.Sort(available)[0]
		sess.Set(sessionKey, pick)

		return pick
	}

	// Nothing is available at all, keep the old behavior and let the
	// resolver report the resulting not-found.
	sess.Set(sessionKey, fallback)

	return fallback
}
