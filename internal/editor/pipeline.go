// Package editor turns bursts of raw cell edits into single committed
// mutations. One editable cell (a category label, a transaction label, or
// a monthly value) emits an event per keystroke; the pipeline coalesces
// them behind a quiet window and pairs the latest content with a save
// trigger before touching the store.
package editor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dlfarrant/budgetgrid/internal/domain"
	"github.com/dlfarrant/budgetgrid/internal/service"
)

// DefaultDebounceWindow is the quiet window applied to raw edits
const DefaultDebounceWindow = 300 * time.Millisecond

// CellField identifies which editable field a cell edit targets
type CellField string

const (
	FieldCategoryLabel    CellField = "categoryLabel"
	FieldTransactionLabel CellField = "transactionLabel"
	FieldMonthValue       CellField = "monthValue"
)

// Trigger is the save signal gating when pending edits become durable.
// Only a blur ever commits; an enter exists solely to force the surface to
// blur (the presentation layer already suppressed the newline).
type Trigger string

const (
	TriggerNone  Trigger = "none"
	TriggerEnter Trigger = "enter"
	TriggerBlur  Trigger = "blur"
)

// Surface is the editable cell the presentation layer exposes to the
// pipeline, used to push corrections and force focus loss back to it.
type Surface interface {
	// SetText replaces the displayed content and moves the caret to the end
	SetText(text string)
	// Blur forces the surface to lose focus
	Blur()
}

// CellEdit is one raw edit event carrying the live cell content.
// A nil EntityID marks an edit on the placeholder blank row; committing it
// creates a new category of the given kind.
type CellEdit struct {
	EntityID   *uuid.UUID
	Kind       domain.CategoryKind
	Field      CellField
	MonthIndex int // meaningful only when Field is FieldMonthValue
	Text       string
	Surface    Surface
}

// Config holds pipeline tuning
type Config struct {
	DebounceWindow time.Duration
}

// Pipeline is the single actor reconciling edits with save triggers.
// State transitions happen on one goroutine only, so no two commits can
// interleave.
type Pipeline struct {
	budgets *service.BudgetService
	window  time.Duration
	edits   chan CellEdit
	trigs   chan Trigger
	logger  zerolog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewPipeline creates a pipeline committing into the given service
func NewPipeline(budgets *service.BudgetService, logger zerolog.Logger, cfg Config) *Pipeline {
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = DefaultDebounceWindow
	}

	return &Pipeline{
		budgets: budgets,
		window:  cfg.DebounceWindow,
		edits:   make(chan CellEdit, 64),
		trigs:   make(chan Trigger, 64),
		logger:  logger.With().Str("component", "edit_pipeline").Logger(),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins processing events
func (p *Pipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.logger.Info().
		Dur("debounce_window", p.window).
		Msg("Starting edit pipeline")

	go p.run(ctx)
}

// Stop tears the pipeline down, cancelling any pending debounce timer so
// no mutation can land after teardown
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.logger.Info().Msg("Stopping edit pipeline")
	close(p.stopCh)
	<-p.doneCh
	p.logger.Info().Msg("Edit pipeline stopped")
}

// IsRunning returns whether the pipeline is currently running
func (p *Pipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// OfferEdit submits one raw edit event. Safe to call after Stop; the event
// is then discarded.
func (p *Pipeline) OfferEdit(edit CellEdit) {
	select {
	case p.edits <- edit:
	case <-p.stopCh:
	}
}

// OfferTrigger submits a save-trigger signal
func (p *Pipeline) OfferTrigger(trigger Trigger) {
	if trigger == TriggerNone {
		return
	}
	select {
	case p.trigs <- trigger:
	case <-p.stopCh:
	}
}

// run is the actor loop. The join works like a combine-latest that only
// fires once both sides have emitted: the debounced edit stays latest and
// is reusable, the trigger resets to none after every commit.
func (p *Pipeline) run(ctx context.Context) {
	defer close(p.doneCh)

	var (
		pending   CellEdit // most recent raw edit, debounce still open
		latest    CellEdit // most recent debounced edit
		hasLatest bool
		trigger   = TriggerNone

		timer  *time.Timer
		timerC <-chan time.Time
	)

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timerC = nil
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			p.setStopped()
			return

		case <-p.stopCh:
			p.setStopped()
			return

		case edit := <-p.edits:
			pending = p.sanitize(edit)
			if timer == nil {
				timer = time.NewTimer(p.window)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(p.window)
			}
			timerC = timer.C

		case <-timerC:
			// Quiet window elapsed: the pending edit becomes the latest
			latest, hasLatest = pending, true
			timerC = nil
			if trigger == TriggerBlur {
				p.commit(latest)
				trigger = TriggerNone
			}

		case t := <-p.trigs:
			switch t {
			case TriggerEnter:
				// Never commits directly; forcing the blur produces the
				// blur trigger that does, so one keypress cannot commit twice
				p.forceBlur(pending, latest, timerC != nil, hasLatest)

			case TriggerBlur:
				if timerC != nil {
					// An edit is still inside its quiet window. Hold the
					// trigger so the commit uses the newest content.
					trigger = TriggerBlur
					continue
				}
				if hasLatest {
					p.commit(latest)
					trigger = TriggerNone
					continue
				}
				// No edit has arrived yet; wait for the first one
				trigger = TriggerBlur
			}
		}
	}
}

func (p *Pipeline) setStopped() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

// sanitize corrects numeric cell content in place on every keystroke
func (p *Pipeline) sanitize(edit CellEdit) CellEdit {
	if edit.Field != FieldMonthValue {
		return edit
	}
	sanitized := SanitizeNumeric(edit.Text)
	if sanitized != edit.Text {
		p.logger.Debug().
			Str("raw", edit.Text).
			Str("sanitized", sanitized).
			Msg("Corrected numeric cell content")
		edit.Text = sanitized
		if edit.Surface != nil {
			edit.Surface.SetText(sanitized)
		}
	}
	return edit
}

// forceBlur asks the surface of the freshest known edit to lose focus
func (p *Pipeline) forceBlur(pending, latest CellEdit, hasPending, hasLatest bool) {
	switch {
	case hasPending && pending.Surface != nil:
		pending.Surface.Blur()
	case hasLatest && latest.Surface != nil:
		latest.Surface.Blur()
	}
}

// commit routes one coalesced edit to the store mutation it stands for
func (p *Pipeline) commit(edit CellEdit) {
	switch {
	case edit.EntityID == nil:
		// Placeholder blank row: the edit text names a new category
		p.budgets.AddCategory(edit.Kind, edit.Text)

	case edit.Field == FieldMonthValue:
		value, err := decimal.NewFromString(edit.Text)
		if err != nil {
			// Sanitized text can still be "", "-" or "."; such a commit
			// carries no value and is dropped
			p.logger.Debug().
				Str("text", edit.Text).
				Str("transaction_id", edit.EntityID.String()).
				Msg("Discarding commit with unparseable value")
			return
		}
		p.budgets.SetTransactionValue(edit.Kind, *edit.EntityID, edit.MonthIndex, value)

	case edit.Field == FieldTransactionLabel:
		p.budgets.RenameTransaction(edit.Kind, *edit.EntityID, edit.Text)

	default:
		p.budgets.RenameCategory(edit.Kind, *edit.EntityID, edit.Text)
	}
}
