package editor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlfarrant/budgetgrid/internal/domain"
	"github.com/dlfarrant/budgetgrid/internal/service"
	"github.com/dlfarrant/budgetgrid/internal/store"
	"github.com/dlfarrant/budgetgrid/internal/websocket"
)

const testWindow = 20 * time.Millisecond

// waitFor is long enough for a debounce window plus actor scheduling
const waitFor = time.Second

// countingPublisher counts committed mutations via their published summaries
type countingPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
}

func (p *countingPublisher) Publish(event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *countingPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// fakeSurface records corrections and reports forced blurs back to the
// pipeline the way a browser cell would
type fakeSurface struct {
	mu       sync.Mutex
	pipeline *Pipeline
	texts    []string
	blurs    int
}

func (s *fakeSurface) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
}

func (s *fakeSurface) Blur() {
	s.mu.Lock()
	s.blurs++
	s.mu.Unlock()
	s.pipeline.OfferTrigger(TriggerBlur)
}

func (s *fakeSurface) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]string, len(s.texts))
	copy(copied, s.texts)
	return copied
}

func (s *fakeSurface) Blurs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blurs
}

type pipelineFixture struct {
	pipeline  *Pipeline
	store     *store.Store
	publisher *countingPublisher
	surface   *fakeSurface
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	budgetStore := store.New()
	svc := service.NewBudgetService(budgetStore, service.NewSummaryService(budgetStore))
	publisher := &countingPublisher{}
	svc.SetEventPublisher(publisher)

	pipeline := NewPipeline(svc, zerolog.Nop(), Config{DebounceWindow: testWindow})
	pipeline.Start(context.Background())
	t.Cleanup(pipeline.Stop)

	return &pipelineFixture{
		pipeline:  pipeline,
		store:     budgetStore,
		publisher: publisher,
		surface:   &fakeSurface{pipeline: pipeline},
	}
}

// seedTransaction creates a category with one transaction directly in the
// store, without going through the pipeline
func (f *pipelineFixture) seedTransaction(t *testing.T, kind domain.CategoryKind) (uuid.UUID, uuid.UUID) {
	t.Helper()
	category := f.store.AddCategory(kind, "Seed")
	tx, err := f.store.AddTransaction(kind, category.ID, "Row")
	require.NoError(t, err)
	return category.ID, tx.ID
}

func (f *pipelineFixture) valueEdit(txID uuid.UUID, month int, text string) CellEdit {
	return CellEdit{
		EntityID:   &txID,
		Kind:       domain.CategoryKindIncome,
		Field:      FieldMonthValue,
		MonthIndex: month,
		Text:       text,
		Surface:    f.surface,
	}
}

func TestPipeline_DebounceCoalescesBurstIntoOneCommit(t *testing.T) {
	f := newPipelineFixture(t)
	_, txID := f.seedTransaction(t, domain.CategoryKindIncome)

	// Two keystrokes well inside one quiet window, then a blur
	f.pipeline.OfferEdit(f.valueEdit(txID, 0, "1"))
	f.pipeline.OfferEdit(f.valueEdit(txID, 0, "12"))
	f.pipeline.OfferTrigger(TriggerBlur)

	require.Eventually(t, func() bool {
		return f.publisher.Count() == 1
	}, waitFor, time.Millisecond, "expected exactly one commit")

	got := f.store.Snapshot().Incomes[0].Transactions[0].MonthlyValues[0]
	assert.True(t, got.Equal(decimal.NewFromInt(12)), "commit must carry the latest content, got %s", got)

	// Nothing further arrives once the pair has fired
	time.Sleep(4 * testWindow)
	assert.Equal(t, 1, f.publisher.Count())
}

func TestPipeline_EnterThenBlurCommitsOnce(t *testing.T) {
	f := newPipelineFixture(t)
	_, txID := f.seedTransaction(t, domain.CategoryKindIncome)

	f.pipeline.OfferEdit(f.valueEdit(txID, 2, "750"))
	time.Sleep(3 * testWindow) // let the debounce settle

	// Enter never commits by itself; it forces the blur that does
	f.pipeline.OfferTrigger(TriggerEnter)

	require.Eventually(t, func() bool {
		return f.publisher.Count() == 1
	}, waitFor, time.Millisecond)
	assert.Equal(t, 1, f.surface.Blurs(), "enter must force the surface to blur")

	got := f.store.Snapshot().Incomes[0].Transactions[0].MonthlyValues[2]
	assert.True(t, got.Equal(decimal.NewFromInt(750)))

	time.Sleep(4 * testWindow)
	assert.Equal(t, 1, f.publisher.Count(), "enter followed by its blur must commit exactly once")
}

func TestPipeline_BlurBeforeQuietWindowUsesNewestContent(t *testing.T) {
	f := newPipelineFixture(t)
	_, txID := f.seedTransaction(t, domain.CategoryKindIncome)

	// Blur lands while the edit is still inside its quiet window; the
	// pairing must wait for the debounced edit rather than fire empty
	f.pipeline.OfferEdit(f.valueEdit(txID, 5, "88"))
	f.pipeline.OfferTrigger(TriggerBlur)

	require.Eventually(t, func() bool {
		return f.publisher.Count() == 1
	}, waitFor, time.Millisecond)

	got := f.store.Snapshot().Incomes[0].Transactions[0].MonthlyValues[5]
	assert.True(t, got.Equal(decimal.NewFromInt(88)))
}

func TestPipeline_BlurBeforeAnyEditDoesNothing(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedTransaction(t, domain.CategoryKindIncome)

	f.pipeline.OfferTrigger(TriggerBlur)
	time.Sleep(4 * testWindow)

	assert.Equal(t, 0, f.publisher.Count(), "a trigger with no edit must not commit")
}

func TestPipeline_HeldTriggerFiresOnFirstEdit(t *testing.T) {
	f := newPipelineFixture(t)
	_, txID := f.seedTransaction(t, domain.CategoryKindIncome)

	// The trigger arrives first and is held until the edit stream emits
	f.pipeline.OfferTrigger(TriggerBlur)
	f.pipeline.OfferEdit(f.valueEdit(txID, 1, "45"))

	require.Eventually(t, func() bool {
		return f.publisher.Count() == 1
	}, waitFor, time.Millisecond)

	got := f.store.Snapshot().Incomes[0].Transactions[0].MonthlyValues[1]
	assert.True(t, got.Equal(decimal.NewFromInt(45)))
}

func TestPipeline_TriggerResetsAfterCommit(t *testing.T) {
	f := newPipelineFixture(t)
	_, txID := f.seedTransaction(t, domain.CategoryKindIncome)

	f.pipeline.OfferEdit(f.valueEdit(txID, 0, "7"))
	f.pipeline.OfferTrigger(TriggerBlur)
	require.Eventually(t, func() bool {
		return f.publisher.Count() == 1
	}, waitFor, time.Millisecond)

	// The edit stays latest; a fresh blur re-commits it, but the spent
	// trigger alone never replays
	f.pipeline.OfferTrigger(TriggerBlur)
	require.Eventually(t, func() bool {
		return f.publisher.Count() == 2
	}, waitFor, time.Millisecond)
}

func TestPipeline_MissingIDCreatesCategory(t *testing.T) {
	f := newPipelineFixture(t)

	f.pipeline.OfferEdit(CellEdit{
		Kind:    domain.CategoryKindExpense,
		Field:   FieldCategoryLabel,
		Text:    "Side projects",
		Surface: f.surface,
	})
	f.pipeline.OfferTrigger(TriggerBlur)

	require.Eventually(t, func() bool {
		return len(f.store.Snapshot().Expenses) == 1
	}, waitFor, time.Millisecond)

	assert.Equal(t, "Side projects", f.store.Snapshot().Expenses[0].Label)
}

func TestPipeline_RenameRouting(t *testing.T) {
	f := newPipelineFixture(t)
	categoryID, txID := f.seedTransaction(t, domain.CategoryKindIncome)

	f.pipeline.OfferEdit(CellEdit{
		EntityID: &categoryID,
		Kind:     domain.CategoryKindIncome,
		Field:    FieldCategoryLabel,
		Text:     "Salary",
		Surface:  f.surface,
	})
	f.pipeline.OfferTrigger(TriggerBlur)
	require.Eventually(t, func() bool {
		return f.store.Snapshot().Incomes[0].Label == "Salary"
	}, waitFor, time.Millisecond)

	f.pipeline.OfferEdit(CellEdit{
		EntityID: &txID,
		Kind:     domain.CategoryKindIncome,
		Field:    FieldTransactionLabel,
		Text:     "Paycheck",
		Surface:  f.surface,
	})
	f.pipeline.OfferTrigger(TriggerBlur)
	require.Eventually(t, func() bool {
		return f.store.Snapshot().Incomes[0].Transactions[0].Label == "Paycheck"
	}, waitFor, time.Millisecond)
}

func TestPipeline_SanitizerCorrectsSurface(t *testing.T) {
	f := newPipelineFixture(t)
	_, txID := f.seedTransaction(t, domain.CategoryKindIncome)

	f.pipeline.OfferEdit(f.valueEdit(txID, 0, "12a.5b"))
	f.pipeline.OfferTrigger(TriggerBlur)

	require.Eventually(t, func() bool {
		return f.publisher.Count() == 1
	}, waitFor, time.Millisecond)

	texts := f.surface.Texts()
	require.NotEmpty(t, texts, "invalid content must be corrected in place")
	assert.Equal(t, "12.5", texts[len(texts)-1])

	got := f.store.Snapshot().Incomes[0].Transactions[0].MonthlyValues[0]
	assert.True(t, got.Equal(decimal.RequireFromString("12.5")))
}

func TestPipeline_UnparseableValueIsDropped(t *testing.T) {
	f := newPipelineFixture(t)
	_, txID := f.seedTransaction(t, domain.CategoryKindIncome)

	f.pipeline.OfferEdit(f.valueEdit(txID, 0, "-"))
	f.pipeline.OfferTrigger(TriggerBlur)
	time.Sleep(4 * testWindow)

	assert.Equal(t, 0, f.publisher.Count(), "a commit without a value must be dropped")
	got := f.store.Snapshot().Incomes[0].Transactions[0].MonthlyValues[0]
	assert.True(t, got.IsZero())
}

func TestPipeline_StartStop(t *testing.T) {
	budgetStore := store.New()
	svc := service.NewBudgetService(budgetStore, service.NewSummaryService(budgetStore))
	pipeline := NewPipeline(svc, zerolog.Nop(), Config{DebounceWindow: testWindow})

	assert.False(t, pipeline.IsRunning())
	pipeline.Start(context.Background())
	assert.True(t, pipeline.IsRunning())

	// Starting twice is a no-op
	pipeline.Start(context.Background())

	pipeline.Stop()
	assert.False(t, pipeline.IsRunning())

	// Stopping twice must not panic or hang
	pipeline.Stop()
}
