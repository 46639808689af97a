package identity

import (
	"context"
	"strings"

	"github.com/healthcare-bi/backend/internal/models"
)

type SyncSummary struct {
	Pairs     int `json:"pairs"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Synchronizer reconciles companies in bulk from (display, legal) name pairs.
// It shares the resolver's creation path, so an acronym collision reuses the
// existing company instead of minting a suffixed one.
type Synchronizer struct {
	Resolver *Resolver
}

// Sync refreshes the cache, then makes sure every pair has a company whose
// canonical name equals the legal name. Pairs are keyed by acronym; the last
// pair seen for an acronym wins.
func (s *Synchronizer) Sync(ctx context.Context, pairs []models.CompanyPair) (SyncSummary, error) {
	var summary SyncSummary
	r := s.Resolver
	if err := r.Refresh(ctx); err != nil {
		return summary, err
	}

	unique := dedupePairs(pairs)
	summary.Pairs = len(unique)

	for _, p := range unique {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		company, ok := r.Cache.ByAcronym(Slugify(p.Empresa))
		if !ok {
			res := r.create(ctx, p.Empresa, p.RazaoSocial)
			switch res.Outcome {
			case Created:
				summary.Created++
				continue
			case NoMatch:
				summary.Failed++
				continue
			}
			company, ok = r.Cache.ByAcronym(Slugify(p.Empresa))
			if !ok {
				summary.Unchanged++
				continue
			}
		}

		if company.Name == p.RazaoSocial {
			summary.Unchanged++
			continue
		}
		if err := r.Store.UpdateCompanyName(ctx, company.ID, p.RazaoSocial); err != nil {
			r.Logger.Error().Err(err).Str("company_id", company.ID).Msg("failed to update company name")
			summary.Failed++
			continue
		}
		r.Logger.Info().Str("company_id", company.ID).Str("from", company.Name).Str("to", p.RazaoSocial).Msg("updated company name")
		r.Cache.Rename(company.ID, p.RazaoSocial)
		summary.Updated++
	}

	r.Logger.Info().
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("failed", summary.Failed).
		Msg("company synchronization completed")
	return summary, nil
}

func dedupePairs(pairs []models.CompanyPair) []models.CompanyPair {
	index := map[string]int{}
	var out []models.CompanyPair
	for _, p := range pairs {
		p.Empresa = strings.TrimSpace(p.Empresa)
		p.RazaoSocial = strings.TrimSpace(p.RazaoSocial)
		if p.Empresa == "" || p.RazaoSocial == "" {
			continue
		}
		slug := Slugify(p.Empresa)
		if slug == "" {
			continue
		}
		if i, ok := index[slug]; ok {
			out[i] = p
			continue
		}
		index[slug] = len(out)
		out = append(out, p)
	}
	return out
}
