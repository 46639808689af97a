package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/healthcare-bi/backend/internal/models"
)

// Store is the persisted company table the resolver mirrors.
type Store interface {
	ListActiveCompanies(ctx context.Context) ([]models.Company, error)
	// FindCompanyByAcronym matches case-insensitively and returns nil when
	// no company carries the acronym.
	FindCompanyByAcronym(ctx context.Context, acronym string) (*models.Company, error)
	InsertCompany(ctx context.Context, name, acronym string) (models.Company, error)
	UpdateCompanyName(ctx context.Context, id, name string) error
}

type Outcome int

const (
	NoMatch Outcome = iota
	Matched
	Created
	Reused
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Created:
		return "created"
	case Reused:
		return "reused"
	default:
		return "no_match"
	}
}

type Result struct {
	ID      string
	Outcome Outcome
}

func (r Result) OK() bool { return r.Outcome != NoMatch }

// Resolver maps free-text company labels to company ids, creating a company
// when none matches. Creation is serialized so one acronym never yields two
// companies within a process.
type Resolver struct {
	Store  Store
	Cache  *Cache
	Logger zerolog.Logger

	createMu sync.Mutex
}

func NewResolver(store Store, logger zerolog.Logger) *Resolver {
	return &Resolver{Store: store, Cache: NewCache(), Logger: logger}
}

// Refresh reloads the cache from the store.
func (r *Resolver) Refresh(ctx context.Context) error {
	if err := r.Cache.Refresh(ctx, r.Store); err != nil {
		return err
	}
	names, acronyms := r.Cache.Len()
	r.Logger.Info().Int("names", names).Int("acronyms", acronyms).Msg("company mappings loaded")
	return nil
}

// Resolve returns the id of the company labelled displayName. Acronym matches
// win over name matches. An empty label or a store failure yields NoMatch.
func (r *Resolver) Resolve(ctx context.Context, displayName string) Result {
	return r.ResolveLegal(ctx, displayName, "")
}

// ResolveLegal is Resolve for records that also carry a legal name. The legal
// name is tried against the name table and becomes the canonical name of a
// company created for the record.
func (r *Resolver) ResolveLegal(ctx context.Context, displayName, legalName string) Result {
	displayName = strings.TrimSpace(displayName)
	legalName = strings.TrimSpace(legalName)
	if displayName == "" {
		return Result{Outcome: NoMatch}
	}
	if id, ok := r.Cache.Lookup(displayName); ok {
		return Result{ID: id, Outcome: Matched}
	}
	if legalName != "" {
		if id, ok := r.Cache.LookupName(legalName); ok {
			return Result{ID: id, Outcome: Matched}
		}
	}
	return r.create(ctx, displayName, legalName)
}

func (r *Resolver) create(ctx context.Context, displayName, legalName string) Result {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	log := r.Logger.With().Str("company", displayName).Logger()

	acronym := Slugify(displayName)
	if acronym == "" {
		log.Warn().Msg("company label has no usable characters for an acronym")
		return Result{Outcome: NoMatch}
	}

	// Another caller may have created it while we waited for the lock.
	if company, ok := r.Cache.ByAcronym(acronym); ok {
		r.Cache.Alias(displayName, company.ID)
		return Result{ID: company.ID, Outcome: Matched}
	}

	existing, err := r.Store.FindCompanyByAcronym(ctx, acronym)
	if err != nil {
		log.Error().Err(err).Str("acronym", acronym).Msg("company lookup failed")
		return Result{Outcome: NoMatch}
	}
	if existing != nil {
		log.Warn().Str("acronym", acronym).Str("company_id", existing.ID).Msg("company acronym already exists, reusing id")
		r.Cache.Put(*existing)
		r.Cache.Alias(displayName, existing.ID)
		return Result{ID: existing.ID, Outcome: Reused}
	}

	name := displayName
	if legalName != "" {
		name = legalName
	}
	company, err := r.Store.InsertCompany(ctx, name, acronym)
	if err != nil {
		log.Error().Err(err).Str("acronym", acronym).Msg("failed to create company")
		return Result{Outcome: NoMatch}
	}
	r.Cache.Put(company)
	r.Cache.Alias(displayName, company.ID)
	log.Info().Str("company_id", company.ID).Str("acronym", acronym).Msg("created company")
	return Result{ID: company.ID, Outcome: Created}
}
