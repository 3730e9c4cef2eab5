package strategy

import (
	"fmt"

	"github.com/yourusername/props-edge/internal/config"
	"github.com/yourusername/props-edge/internal/models"
)

// Registry holds the active betting models in a stable order
type Registry struct {
	ordered []Model
	byID    map[string]Model
}

// NewRegistry builds the registry from configuration, including only the
// models flagged active. Evaluation order is fixed so a given batch of
// signals produces bets in a deterministic sequence.
func NewRegistry(cfg config.ModelsConfig) *Registry {
	r := &Registry{byID: make(map[string]Model)}

	if cfg.Pulsar.Active {
		r.register(NewPulsarModel(cfg.Pulsar.Stake))
	}
	if cfg.Sentinel.Active {
		r.register(NewSentinelModel(cfg.Sentinel))
	}
	if cfg.Maverick.Active {
		r.register(NewMaverickModel(cfg.Maverick))
	}

	return r
}

func (r *Registry) register(m Model) {
	r.ordered = append(r.ordered, m)
	r.byID[m.ID()] = m
}

// Active returns the active models in registration order
func (r *Registry) Active() []Model {
	return r.ordered
}

// Get looks up a model by its versioned identifier
func (r *Registry) Get(id string) (Model, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("model %q: %w", id, models.ErrUnknownModel)
	}
	return m, nil
}

// Filter returns the subset of active models matching the given IDs. An
// empty filter returns all active models.
func (r *Registry) Filter(ids []string) ([]Model, error) {
	if len(ids) == 0 {
		return r.ordered, nil
	}

	selected := make([]Model, 0, len(ids))
	for _, id := range ids {
		m, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		selected = append(selected, m)
	}
	return selected, nil
}
