package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pokebattle/battle-server-go/internal/game/rules"
)

// NotifySetupStalled is published when the autonomous side cannot complete
// setup, so the presentation layer can offer recovery instead of waiting on a
// gate that will never open.
const NotifySetupStalled = "SETUP_STALLED"

// Opponent is the autonomous player. It watches committed states and
// schedules its own actions on thinking delays with fixed upper bounds; its
// only synchronization point with the human is the canonical state itself.
type Opponent struct {
	logger   *zap.Logger
	pipeline *Pipeline
	re       RulesEngine
	sched    Scheduler
	notifier *Notifier
	rng      *rand.Rand

	delayMin time.Duration
	delayMax time.Duration

	mu        sync.Mutex
	scheduled bool
	cancel    func()
}

// NewOpponent wires the autonomous player to the pipeline it submits through.
func NewOpponent(pipeline *Pipeline, re RulesEngine, sched Scheduler, notifier *Notifier, rng *rand.Rand, delayMin, delayMax time.Duration, logger *zap.Logger) *Opponent {
	if delayMax < delayMin {
		delayMax = delayMin
	}
	return &Opponent{
		logger:   logger,
		pipeline: pipeline,
		re:       re,
		sched:    sched,
		notifier: notifier,
		rng:      rng,
		delayMin: delayMin,
		delayMax: delayMax,
	}
}

// React inspects a committed state and schedules at most one next action.
// Called after every commit; a decision already in flight is never doubled.
func (o *Opponent) React(s *GameState) {
	description, fn := o.decide(s)
	if fn == nil {
		return
	}

	o.mu.Lock()
	if o.scheduled {
		o.mu.Unlock()
		return
	}
	o.scheduled = true
	o.mu.Unlock()

	delay := o.thinkDelay()
	o.logger.Debug("opponent action scheduled",
		zap.String("action", description),
		zap.Duration("delay", delay),
	)

	cancel := o.sched.After(delay, func() {
		o.mu.Lock()
		o.scheduled = false
		o.mu.Unlock()

		if _, err := o.pipeline.Submit(context.Background(), description, fn); err != nil {
			o.handleError(description, err)
		}
	})

	o.mu.Lock()
	o.cancel = cancel
	o.mu.Unlock()
}

// Stop cancels any scheduled decision.
func (o *Opponent) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.scheduled = false
}

func (o *Opponent) thinkDelay() time.Duration {
	if o.delayMax == o.delayMin {
		return o.delayMin
	}
	return o.delayMin + time.Duration(o.rng.Int63n(int64(o.delayMax-o.delayMin)))
}

func (o *Opponent) handleError(description string, err error) {
	if errors.Is(err, ErrSetupStalled) {
		o.logger.Warn("opponent setup stalled", zap.Error(err))
		o.notifier.Publish(Notification{
			Type:      NotifySetupStalled,
			Timestamp: time.Now(),
			Data:      map[string]any{"detail": err.Error()},
		})
		return
	}
	o.logger.Warn("opponent action failed",
		zap.String("action", description),
		zap.Error(err),
	)
	// A rejection means the state moved under the decision. Re-plan from the
	// current canonical state so the opponent never stalls.
	if _, ok := IsRejected(err); ok {
		o.React(o.pipeline.Current())
	}
}

// decide maps the current state to the opponent's next mutation, or nil when
// it is not the opponent's move.
func (o *Opponent) decide(s *GameState) (string, MutationFunc) {
	switch s.Phase {
	case rules.PhaseInitialPokemonSelection:
		if !s.CPUSetupReady {
			return "opponent setup", func(st *GameState) error {
				return doOpponentSetup(st, o.rng)
			}
		}
	case rules.PhaseOpponentDraw:
		return "opponent draw", func(st *GameState) error {
			return doDraw(st, SeatOpponent)
		}
	case rules.PhaseOpponentMain:
		return o.decideMain(s)
	case rules.PhasePrizeSelection:
		if s.PrizeTaker == SeatOpponent && s.Player(SeatOpponent).PrizesToTake > 0 {
			return "opponent prize pick", o.prizePick()
		}
	case rules.PhaseAwaitingNewActive:
		if s.PendingNewActive == SeatOpponent {
			return "opponent promote", func(st *GameState) error {
				idx := st.Player(SeatOpponent).FirstBenchIndex()
				if idx < 0 {
					return reject(ReasonEmptySlot, "no benched pokemon to promote")
				}
				return doPromoteActive(st, SeatOpponent, idx)
			}
		}
	}
	return "", nil
}

// decideMain plays the opponent's main phase one step at a time: attach an
// energy while allowed, then attack when affordable, otherwise end the turn.
func (o *Opponent) decideMain(s *GameState) (string, MutationFunc) {
	p := s.Player(SeatOpponent)

	if s.TurnState.AllowEnergyAttach() {
		for _, c := range p.Hand {
			if c.Kind == KindEnergy {
				id := c.RuntimeID
				return "opponent attach energy", func(st *GameState) error {
					if err := doStartAttachEnergy(st, SeatOpponent, id); err != nil {
						return err
					}
					target := st.Player(SeatOpponent).Active
					if target == nil {
						return reject(ReasonEmptySlot, "no active pokemon to power up")
					}
					return doCompleteAttachEnergy(st, SeatOpponent, target.RuntimeID)
				}
			}
		}
	}

	if p.Active != nil && !s.TurnState.HasAttacked {
		for i, atk := range p.Active.Attacks {
			if o.re.HasEnoughEnergy(p.Active, atk) {
				idx := i
				return "opponent attack", func(st *GameState) error {
					return doAttack(st, SeatOpponent, o.re, idx)
				}
			}
		}
	}

	return "opponent end turn", func(st *GameState) error {
		return doEndTurn(st, SeatOpponent)
	}
}

// prizePick selects a random still-filled prize slot.
func (o *Opponent) prizePick() MutationFunc {
	return func(st *GameState) error {
		p := st.Player(SeatOpponent)
		var filled []int
		for i, c := range p.Prize {
			if c != nil {
				filled = append(filled, i)
			}
		}
		if len(filled) == 0 {
			return reject(ReasonEmptySlot, "no prize cards remain")
		}
		idx := filled[o.rng.Intn(len(filled))]
		return doTakePrize(st, SeatOpponent, o.re, idx)
	}
}
