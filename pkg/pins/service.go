// Package pins maps usernames to the ordered list of applications they
// keep on the panel's quick access row.
package pins

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/griddeck/griddeck/pkg/paths"
	"github.com/griddeck/griddeck/pkg/plugins"
	"github.com/griddeck/griddeck/pkg/store"
)

// ErrInvalidPin marks a pin id that failed validation. Callers use it to
// tell a rejected request apart from a record store failure.
var ErrInvalidPin = errors.New("invalid pin")

// Registry is the slice of the application registry the service needs.
type Registry interface {
	FindByID(id string) (*plugins.Instance, bool)
}

// Service resolves stored pin lists against the live registry.
type Service struct {
	store    store.RecordStore
	registry Registry
	log      *logrus.Logger
}

func NewService(recordStore store.RecordStore, registry Registry, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}

	return &Service{store: recordStore, registry: registry, log: log}
}

// List returns the user's pinned applications in stored order. Pins
// whose application is not currently loaded are dropped from the
// response without error, so one uninstalled app leaves the rest of
// the row intact.
func (s *Service) List(ctx context.Context, username string) ([]plugins.Summary, error) {
	appIDs, err := s.store.GetPins(ctx, username)
	if err != nil {
		return nil, err
	}

	summaries := make([]plugins.Summary, 0, len(appIDs))
	for _, id := range appIDs {
		inst, ok := s.registry.FindByID(id)
		if !ok {
			s.log.Debugf("Dropping pin for unloaded application %s", id)
			continue
		}
		summaries = append(summaries, inst.Summary())
	}

	return summaries, nil
}

// Set replaces the user's pin list. Ids must be path-safe but need not
// resolve to loaded applications, so pins survive a temporary
// uninstall.
func (s *Service) Set(ctx context.Context, username string, appIDs []string) error {
	for _, id := range appIDs {
		if err := paths.ValidateAppID(id); err != nil {
			return fmt.Errorf("%w %q: %v", ErrInvalidPin, id, err)
		}
	}

	return s.store.SetPins(ctx, username, appIDs)
}
