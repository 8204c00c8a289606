// Package postings loads job postings from disk and keeps their scores.
package postings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/ats-checker/internal/document"
	"github.com/spigell/ats-checker/internal/scoring"
)

const (
	FieldID      = "ID"
	FieldCompany = "Company"
)

// Scorer rates postings. *scoring.Scorer and *scoring.CachedScorer satisfy it.
type Scorer interface {
	Job(job document.Value) scoring.Report
	Match(resume, job document.Value) scoring.Report
}

type Postings struct {
	Items []*Posting
}

// Posting is a job document together with its reports once scored.
type Posting struct {
	ID    string          `json:"id"`
	Path  string          `json:"path"`
	Job   document.Value  `json:"job"`
	Score *scoring.Report `json:"job_score,omitempty"`
	Match *scoring.Report `json:"match_score,omitempty"`
}

// Load reads every *.json and *.toml file in dir. The posting ID is the file
// name without extension. Postings are ordered by ID.
func Load(dir string) (*Postings, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read postings dir: %w", err)
	}

	p := &Postings{}
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".toml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if other, ok := seen[id]; ok {
			return nil, fmt.Errorf("duplicate posting id %q: %s and %s", id, other, path)
		}
		seen[id] = path

		job, err := document.Load(path)
		if err != nil {
			return nil, err
		}
		if job.Kind() != document.KindObject {
			return nil, fmt.Errorf("posting %s: expected an object, got %s", path, job.Kind())
		}

		p.Items = append(p.Items, &Posting{ID: id, Path: path, Job: job})
	}

	sort.Slice(p.Items, func(i, j int) bool { return p.Items[i].ID < p.Items[j].ID })
	return p, nil
}

func (p *Posting) Title() string   { return strings.TrimSpace(p.Job.Get("title").Text()) }
func (p *Posting) Company() string { return strings.TrimSpace(p.Job.Get("company").Text()) }
func (p *Posting) URL() string     { return strings.TrimSpace(p.Job.Get("url").Text()) }

func (p *Posting) field(name string) string {
	switch name {
	case FieldID:
		return p.ID
	case FieldCompany:
		return p.Company()
	default:
		return ""
	}
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) FindByID(id string) *Posting {
	for _, posting := range p.Items {
		if posting.ID == id {
			return posting
		}
	}
	return nil
}

// Exclude removes postings whose field equals one of targets, ignoring case.
// Order of the remaining postings is preserved. IDs of removed postings are
// returned.
func (p *Postings) Exclude(field string, targets []string) []string {
	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		if target = strings.ToLower(strings.TrimSpace(target)); target != "" {
			set[target] = struct{}{}
		}
	}

	return p.RemoveIf(func(posting *Posting) bool {
		_, ok := set[strings.ToLower(posting.field(field))]
		return ok
	})
}

// RemoveIf drops postings matching drop and returns their IDs.
func (p *Postings) RemoveIf(drop func(*Posting) bool) []string {
	var removed []string
	kept := p.Items[:0]
	for _, posting := range p.Items {
		if drop(posting) {
			removed = append(removed, posting.ID)
			continue
		}
		kept = append(kept, posting)
	}
	for i := len(kept); i < len(p.Items); i++ {
		p.Items[i] = nil
	}
	p.Items = kept
	return removed
}

// Score computes the job and match reports of every posting concurrently.
// workers <= 0 means one goroutine per posting.
func (p *Postings) Score(ctx context.Context, scorer Scorer, resume document.Value, workers int) error {
	if scorer == nil {
		return errors.New("scorer is required")
	}

	g, gCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for _, posting := range p.Items {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			job := scorer.Job(posting.Job)
			posting.Score = &job
			if !resume.IsNull() {
				match := scorer.Match(resume, posting.Job)
				posting.Match = &match
			}
			return nil
		})
	}

	return g.Wait()
}

// Rank orders postings by match total, then job total, best first. Ties keep
// ID order.
func (p *Postings) Rank() {
	sort.SliceStable(p.Items, func(i, j int) bool {
		a, b := p.Items[i], p.Items[j]
		if am, bm := total(a.Match), total(b.Match); am != bm {
			return am > bm
		}
		return total(a.Score) > total(b.Score)
	})
}

func total(r *scoring.Report) float64 {
	if r == nil {
		return 0
	}
	return r.Total
}

// ReportByCompany groups a short summary of every posting under its company.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		key := posting.Company()
		if key == "" {
			key = "(unknown)"
		}
		entry := map[string]string{
			"id":    posting.ID,
			"title": posting.Title(),
			"url":   posting.URL(),
		}
		if posting.Score != nil {
			entry["job_score"] = fmt.Sprintf("%.1f", posting.Score.Total)
		}
		if posting.Match != nil {
			entry["match_score"] = fmt.Sprintf("%.1f", posting.Match.Total)
		}
		report[key] = append(report[key], entry)
	}
	return report
}
