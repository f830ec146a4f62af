package server

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pokebattle/battle-server-go/internal/catalog"
	"github.com/pokebattle/battle-server-go/internal/config"
	"github.com/pokebattle/battle-server-go/internal/game"
)

// Manager owns every running match. Matches are created per connected
// client and torn down when the client goes away.
type Manager struct {
	logger  *zap.Logger
	catalog *catalog.Catalog
	cfg     config.GameConfig

	mu      sync.Mutex
	matches map[string]*game.Engine
}

// NewManager creates a match manager backed by the given card catalog.
func NewManager(cat *catalog.Catalog, cfg config.GameConfig, logger *zap.Logger) *Manager {
	return &Manager{
		logger:  logger,
		catalog: cat,
		cfg:     cfg,
		matches: make(map[string]*game.Engine),
	}
}

// Create builds both decks, starts a new match, and begins setup.
func (m *Manager) Create(ctx context.Context) (*game.Engine, error) {
	humanDeck, err := m.catalog.BuildDeck(m.cfg.HumanDeck)
	if err != nil {
		return nil, fmt.Errorf("build human deck: %w", err)
	}
	cpuDeck, err := m.catalog.BuildDeck(m.cfg.OpponentDeck)
	if err != nil {
		return nil, fmt.Errorf("build opponent deck: %w", err)
	}

	e := game.NewEngine(humanDeck, cpuDeck, game.Options{
		Logger:   m.logger,
		DelayMin: m.cfg.DelayMin,
		DelayMax: m.cfg.DelayMax,
	})
	if err := e.Start(ctx); err != nil {
		e.Close()
		return nil, fmt.Errorf("start match: %w", err)
	}

	m.mu.Lock()
	m.matches[e.GameID()] = e
	count := len(m.matches)
	m.mu.Unlock()

	m.logger.Info("match created",
		zap.String("game_id", e.GameID()),
		zap.Int("active_matches", count),
	)
	return e, nil
}

// Get looks up a running match by ID.
func (m *Manager) Get(gameID string) (*game.Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.matches[gameID]
	return e, ok
}

// Remove tears a match down and forgets it.
func (m *Manager) Remove(gameID string) {
	m.mu.Lock()
	e, ok := m.matches[gameID]
	delete(m.matches, gameID)
	m.mu.Unlock()
	if !ok {
		return
	}
	e.Close()
	m.logger.Info("match removed", zap.String("game_id", gameID))
}

// Count returns the number of running matches.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matches)
}

// CloseAll tears every match down. Called on server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	matches := m.matches
	m.matches = make(map[string]*game.Engine)
	m.mu.Unlock()
	for id, e := range matches {
		e.Close()
		m.logger.Debug("match closed", zap.String("game_id", id))
	}
}
