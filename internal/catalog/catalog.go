// Package catalog is the strategy store core: an owned id -> record mapping
// with create, replace, delete and scan operations.
//
// A Catalog is not safe for concurrent use. The host must admit one
// operation at a time (see service.StrategyService).
package catalog

import (
	"fmt"
	"strings"
	"time"

	"strategystore/internal/authz"
	"strategystore/internal/models"
)

// Authorizer decides whether caller may modify existing.
type Authorizer interface {
	Authorize(existing models.StrategyRecord, caller string) bool
}

// Stats is the catalog size plus a display line.
type Stats struct {
	Count   uint64 `json:"count"`
	Summary string `json:"summary"`
}

// Catalog owns the strategy records. Listing order is insertion order.
type Catalog struct {
	records map[string]models.StrategyRecord
	order   []string
	count   uint64

	guard Authorizer
	now   func() time.Time
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock sets the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

// WithAuthorizer replaces the default owner guard.
func WithAuthorizer(a Authorizer) Option {
	return func(c *Catalog) {
		c.guard = a
	}
}

// New returns an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		records: make(map[string]models.StrategyRecord),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.guard == nil {
		c.guard = authz.MustNewOwnerGuard()
	}
	return c
}

// CreateMinimal stores a strategy that has only an id and a goal. An existing
// record with the same id is replaced.
func (c *Catalog) CreateMinimal(caller, id, goal string) (string, error) {
	if id == "" {
		return "", missingField("id")
	}
	draft := models.StrategyDraft{
		ID:        id,
		Goal:      goal,
		Chains:    models.StringList{},
		Protocols: models.StringList{},
		Steps:     models.StepList{},
		RiskLevel: models.DefaultRiskLevel,
	}
	if err := checkText(draft); err != nil {
		return "", err
	}
	c.put(models.NewStrategyRecord(draft, caller, c.timestamp()))
	return fmt.Sprintf("Strategy '%s' stored successfully!", id), nil
}

// CreateFull decodes payload and stores it as a strategy owned by caller.
// Any creator or created_at in the payload is ignored. An existing record
// with the same id is replaced.
func (c *Catalog) CreateFull(caller string, payload []byte) (string, error) {
	draft, err := DecodeDraft(payload)
	if err != nil {
		return "", err
	}
	return c.Store(caller, draft)
}

// Store is CreateFull for an already decoded draft.
func (c *Catalog) Store(caller string, draft models.StrategyDraft) (string, error) {
	if draft.ID == "" {
		return "", missingField("id")
	}
	if err := checkText(draft); err != nil {
		return "", err
	}
	c.put(models.NewStrategyRecord(draft, caller, c.timestamp()))
	return fmt.Sprintf("Complete strategy '%s' stored successfully! Total strategies: %d", draft.ID, c.count), nil
}

// Get returns a copy of the record with the given id.
func (c *Catalog) Get(id string) (models.StrategyRecord, bool) {
	rec, ok := c.records[id]
	if !ok {
		return models.StrategyRecord{}, false
	}
	return rec.Clone(), true
}

// Update replaces every editable field of an existing strategy. Fields the
// payload omits are cleared. Creator and created_at never change.
func (c *Catalog) Update(caller string, payload []byte) (string, error) {
	draft, err := DecodeDraft(payload)
	if err != nil {
		return "", err
	}
	return c.Replace(caller, draft)
}

// Replace is Update for an already decoded draft.
func (c *Catalog) Replace(caller string, draft models.StrategyDraft) (string, error) {
	existing, ok := c.records[draft.ID]
	if !ok {
		return "", notFound(draft.ID)
	}
	if !c.guard.Authorize(existing, caller) {
		return "", forbidden(draft.ID)
	}
	if err := checkText(draft); err != nil {
		return "", err
	}
	c.put(existing.Replace(draft))
	return fmt.Sprintf("Strategy '%s' updated successfully!", draft.ID), nil
}

// Delete removes a strategy owned by caller.
func (c *Catalog) Delete(caller, id string) (string, error) {
	existing, ok := c.records[id]
	if !ok {
		return "", notFound(id)
	}
	if !c.guard.Authorize(existing, caller) {
		return "", forbidden(id)
	}
	c.remove(id)
	return fmt.Sprintf("Strategy '%s' deleted successfully! Total strategies: %d", id, c.count), nil
}

// ListByCreator returns the records whose creator equals identity.
func (c *Catalog) ListByCreator(identity string) []models.StrategyRecord {
	out := []models.StrategyRecord{}
	for _, id := range c.order {
		if rec := c.records[id]; rec.Creator == identity {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// ListAll returns every record.
func (c *Catalog) ListAll() []models.StrategyRecord {
	out := make([]models.StrategyRecord, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.records[id].Clone())
	}
	return out
}

// Count is the number of stored records.
func (c *Catalog) Count() uint64 {
	return c.count
}

func (c *Catalog) Stats() Stats {
	return Stats{
		Count:   c.count,
		Summary: fmt.Sprintf("Strategy Storage - Total strategies: %d", c.count),
	}
}

// Snapshot returns a copy of every record in listing order.
func (c *Catalog) Snapshot() []models.StrategyRecord {
	return c.ListAll()
}

// Checkpoint captures the state of one id so a later mutation of it can be
// undone with Rollback.
type Checkpoint struct {
	id      string
	rec     models.StrategyRecord
	existed bool
	pos     int
}

// ID is the strategy id the checkpoint covers.
func (cp Checkpoint) ID() string { return cp.id }

func (c *Catalog) Checkpoint(id string) Checkpoint {
	cp := Checkpoint{id: id, pos: -1}
	if rec, ok := c.records[id]; ok {
		cp.rec = rec.Clone()
		cp.existed = true
		for i, v := range c.order {
			if v == id {
				cp.pos = i
				break
			}
		}
	}
	return cp
}

// Rollback puts id back exactly as it was at cp, including its listing
// position. Only valid while no other id has been mutated since cp.
func (c *Catalog) Rollback(cp Checkpoint) {
	if !cp.existed {
		c.remove(cp.id)
		return
	}
	if _, ok := c.records[cp.id]; !ok {
		pos := cp.pos
		if pos < 0 || pos > len(c.order) {
			pos = len(c.order)
		}
		c.order = append(c.order, "")
		copy(c.order[pos+1:], c.order[pos:])
		c.order[pos] = cp.id
		c.count++
	}
	c.records[cp.id] = cp.rec
}

// Restore drops the current contents and loads records as-is, keeping their
// creator and created_at. A later duplicate id wins.
func (c *Catalog) Restore(records []models.StrategyRecord) {
	c.records = make(map[string]models.StrategyRecord, len(records))
	c.order = c.order[:0]
	c.count = 0
	for _, rec := range records {
		c.put(rec.Clone())
	}
}

func (c *Catalog) put(rec models.StrategyRecord) {
	if _, exists := c.records[rec.ID]; !exists {
		c.order = append(c.order, rec.ID)
		c.count++
	}
	c.records[rec.ID] = rec
}

func (c *Catalog) remove(id string) {
	if _, exists := c.records[id]; !exists {
		return
	}
	delete(c.records, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.count--
}

func (c *Catalog) timestamp() uint64 {
	return uint64(c.now().UnixMilli())
}

// checkText rejects NUL characters, which text columns cannot store.
func checkText(d models.StrategyDraft) error {
	bad := func(field, v string) error {
		if strings.ContainsRune(v, 0) {
			return &Error{Kind: KindMalformedInput, Err: fmt.Errorf("%s contains a NUL character", field)}
		}
		return nil
	}
	opt := func(field string, v *string) error {
		if v == nil {
			return nil
		}
		return bad(field, *v)
	}
	list := func(field string, l []string) error {
		for i, v := range l {
			if err := bad(fmt.Sprintf("%s[%d]", field, i), v); err != nil {
				return err
			}
		}
		return nil
	}

	errs := []error{
		bad("id", d.ID),
		bad("goal", d.Goal),
		bad("risk_level", d.RiskLevel),
		opt("estimated_tvl", d.EstimatedTvl),
		opt("reasoning", d.Reasoning),
		list("chains", d.Chains),
		list("protocols", d.Protocols),
		list("warnings", d.Warnings),
	}
	for i, st := range d.Steps {
		errs = append(errs,
			bad(fmt.Sprintf("steps[%d].action", i), st.Action),
			bad(fmt.Sprintf("steps[%d].protocol", i), st.Protocol),
			bad(fmt.Sprintf("steps[%d].asset", i), st.Asset),
			opt(fmt.Sprintf("steps[%d].amount", i), st.Amount),
		)
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
