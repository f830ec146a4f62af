package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pokebattle/battle-server-go/internal/game/rules"
)

// Options configures a new Engine. Zero-value fields get production
// defaults; tests inject a manual scheduler and a seeded rand.
type Options struct {
	Logger    *zap.Logger
	Rules     RulesEngine
	Scheduler Scheduler
	Rand      *rand.Rand
	DelayMin  time.Duration
	DelayMax  time.Duration
}

// Engine orchestrates a single match: it owns the mutation pipeline, the
// phase transition recorder, the autonomous opponent, and the notification
// fanout. All dependencies arrive through the constructor; nothing is looked
// up through ambient global state.
type Engine struct {
	logger   *zap.Logger
	gameID   string
	pipeline *Pipeline
	notifier *Notifier
	machine  *rules.Machine
	re       RulesEngine
	sched    Scheduler
	rng      *rand.Rand
	opponent *Opponent
	replay   *Replay

	humanDeck    []*Card
	opponentDeck []*Card
}

// NewEngine creates an engine for one match between the two decks. The decks
// are the full 60-card lists; the engine shuffles and deals during setup.
func NewEngine(humanDeck, opponentDeck []*Card, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	re := opts.Rules
	if re == nil {
		re = NewBasicRules(logger)
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = NewTimerScheduler()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	delayMin := opts.DelayMin
	delayMax := opts.DelayMax
	if delayMax < delayMin {
		delayMax = delayMin
	}

	gameID := uuid.NewString()
	initial := NewGameState(gameID)
	initial.Player(SeatHuman).Deck = cloneCards(humanDeck)
	initial.Player(SeatOpponent).Deck = cloneCards(opponentDeck)

	e := &Engine{
		logger:       logger.With(zap.String("game_id", gameID)),
		gameID:       gameID,
		pipeline:     NewPipeline(initial, logger),
		notifier:     NewNotifier(),
		machine:      rules.NewMachine(),
		re:           re,
		sched:        sched,
		rng:          rng,
		replay:       NewReplay(gameID),
		humanDeck:    cloneCards(humanDeck),
		opponentDeck: cloneCards(opponentDeck),
	}
	e.opponent = NewOpponent(e.pipeline, re, sched, e.notifier, rng, delayMin, delayMax, logger)
	e.pipeline.OnCommit(e.afterCommit)
	return e
}

// GameID returns the unique match identifier.
func (e *Engine) GameID() string {
	return e.gameID
}

// Subscribe registers a presentation-layer notification handler.
func (e *Engine) Subscribe(h NotificationHandler) {
	e.notifier.Subscribe(h)
}

// View projects the current canonical state for the given viewer.
func (e *Engine) View(viewer Seat) GameView {
	return BuildView(e.pipeline.Current(), viewer)
}

// History returns every phase transition recorded so far.
func (e *Engine) History() []rules.Transition {
	return e.machine.History()
}

// Replay returns the commit-by-commit record of the match.
func (e *Engine) Replay() *Replay {
	return e.replay
}

// Start deals the opening hands and begins the setup rendezvous.
func (e *Engine) Start(ctx context.Context) error {
	_, err := e.pipeline.Submit(ctx, "deal hands", func(s *GameState) error {
		return doDealHands(s, e.rng)
	})
	return err
}

// Close tears the match down.
func (e *Engine) Close() {
	e.opponent.Stop()
	e.pipeline.Close()
}

// afterCommit is the pipeline's fixed-order side-effect chain: record and
// announce the phase transition, let the opponent react, then check for game
// over. It always observes a validated, committed state.
func (e *Engine) afterCommit(s *GameState) {
	e.replay.Record(s)

	if prev := e.machine.Current(); prev != s.Phase {
		e.machine.TransitionTo(s.Phase, map[string]any{
			"turn_player": string(s.TurnPlayer),
		})
		e.notifier.PublishPhaseChange(e.gameID, prev, s.Phase, s.TurnPlayer)
	}

	e.notifier.Publish(Notification{
		Type:      NotifyStateChange,
		GameID:    e.gameID,
		Timestamp: time.Now(),
		Data: map[string]any{
			"phase":       s.Phase.String(),
			"turn":        s.Turn,
			"turn_player": string(s.TurnPlayer),
		},
	})

	if s.Phase == rules.PhaseGameStartReady {
		e.sched.After(0, func() {
			if _, err := e.pipeline.Submit(context.Background(), "start game", doStartGame); err != nil {
				e.logger.Warn("game start failed", zap.Error(err))
			}
		})
	}

	if s.Phase == rules.PhaseGameOver {
		e.notifier.Publish(Notification{
			Type:      NotifyGameOver,
			GameID:    e.gameID,
			Timestamp: time.Now(),
			Data: map[string]any{
				"winner": string(s.Winner),
				"reason": string(s.GameEndReason),
			},
		})
		e.opponent.Stop()
		return
	}

	e.opponent.React(s)
}

// PlacePokemon places one of the human's Basic pokemon during setup.
func (e *Engine) PlacePokemon(ctx context.Context, cardID string, zone Zone, index int) error {
	_, err := e.pipeline.Submit(ctx, "place pokemon", func(s *GameState) error {
		return doPlacePokemon(s, SeatHuman, cardID, zone, index)
	})
	return err
}

// ConfirmSetup finalizes the human's placement and deals their prizes.
func (e *Engine) ConfirmSetup(ctx context.Context) error {
	_, err := e.pipeline.Submit(ctx, "confirm setup", func(s *GameState) error {
		return doConfirmSetup(s)
	})
	return err
}

// Draw performs the human's turn draw.
func (e *Engine) Draw(ctx context.Context) error {
	_, err := e.pipeline.Submit(ctx, "human draw", func(s *GameState) error {
		return doDraw(s, SeatHuman)
	})
	return err
}

// StartAttachEnergy selects an energy card from hand; a target is awaited.
func (e *Engine) StartAttachEnergy(ctx context.Context, energyID string) error {
	_, err := e.pipeline.Submit(ctx, "start attach energy", func(s *GameState) error {
		return doStartAttachEnergy(s, SeatHuman, energyID)
	})
	return err
}

// CompleteAttachEnergy attaches the pending energy to the chosen pokemon.
func (e *Engine) CompleteAttachEnergy(ctx context.Context, targetID string) error {
	_, err := e.pipeline.Submit(ctx, "complete attach energy", func(s *GameState) error {
		return doCompleteAttachEnergy(s, SeatHuman, targetID)
	})
	return err
}

// CancelPending drops the outstanding pending action.
func (e *Engine) CancelPending(ctx context.Context) error {
	_, err := e.pipeline.Submit(ctx, "cancel pending", func(s *GameState) error {
		return doCancelPending(s, SeatHuman)
	})
	return err
}

// Evolve evolves the pokemon at the given slot with a card from hand.
func (e *Engine) Evolve(ctx context.Context, cardID string, zone Zone, index int) error {
	_, err := e.pipeline.Submit(ctx, "evolve", func(s *GameState) error {
		return doEvolve(s, SeatHuman, e.re, cardID, zone, index)
	})
	return err
}

// StartRetreat begins a retreat; the bench replacement is awaited.
func (e *Engine) StartRetreat(ctx context.Context) error {
	_, err := e.pipeline.Submit(ctx, "start retreat", func(s *GameState) error {
		return doStartRetreat(s, SeatHuman)
	})
	return err
}

// CompleteRetreat finishes the retreat with the chosen bench slot.
func (e *Engine) CompleteRetreat(ctx context.Context, benchIndex int) error {
	_, err := e.pipeline.Submit(ctx, "complete retreat", func(s *GameState) error {
		return doCompleteRetreat(s, SeatHuman, benchIndex)
	})
	return err
}

// Attack declares the human's attack by index on the active pokemon.
func (e *Engine) Attack(ctx context.Context, attackIndex int) error {
	_, err := e.pipeline.Submit(ctx, "human attack", func(s *GameState) error {
		return doAttack(s, SeatHuman, e.re, attackIndex)
	})
	return err
}

// EndTurn passes the human's turn.
func (e *Engine) EndTurn(ctx context.Context) error {
	_, err := e.pipeline.Submit(ctx, "human end turn", func(s *GameState) error {
		return doEndTurn(s, SeatHuman)
	})
	return err
}

// TakePrize takes one of the human's prize slots during prize selection.
func (e *Engine) TakePrize(ctx context.Context, index int) error {
	_, err := e.pipeline.Submit(ctx, "human take prize", func(s *GameState) error {
		return doTakePrize(s, SeatHuman, e.re, index)
	})
	return err
}

// PromoteActive fills the human's empty active slot from the bench.
func (e *Engine) PromoteActive(ctx context.Context, benchIndex int) error {
	_, err := e.pipeline.Submit(ctx, "human promote", func(s *GameState) error {
		return doPromoteActive(s, SeatHuman, benchIndex)
	})
	return err
}

// RestartSetup is the explicit recovery path for a stalled setup: the match
// resets to a fresh state with the original decks and setup begins again.
func (e *Engine) RestartSetup(ctx context.Context) error {
	_, err := e.pipeline.Submit(ctx, "restart setup", func(s *GameState) error {
		fresh := NewGameState(e.gameID)
		fresh.Player(SeatHuman).Deck = cloneCards(e.humanDeck)
		fresh.Player(SeatOpponent).Deck = cloneCards(e.opponentDeck)
		*s = *fresh
		return doDealHands(s, e.rng)
	})
	return err
}
