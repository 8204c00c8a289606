package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mohae/deepcopy"

	"github.com/spigell/ats-checker/internal/document"
)

// CachedScorer memoizes the reports of a Scorer. Keys are content hashes of
// the scored documents, so equal documents hit the same entry regardless of
// member order. Safe for concurrent use.
type CachedScorer struct {
	scorer *Scorer
	cache  *lru.Cache[string, Report]
}

// NewCachedScorer wraps scorer with an LRU cache holding up to size reports.
func NewCachedScorer(scorer *Scorer, size int) (*CachedScorer, error) {
	if scorer == nil {
		return nil, errors.New("scorer is required")
	}
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be greater than zero, got %d", size)
	}

	cache, err := lru.New[string, Report](size)
	if err != nil {
		return nil, fmt.Errorf("init score cache: %w", err)
	}

	return &CachedScorer{scorer: scorer, cache: cache}, nil
}

// Resume scores a resume document.
func (c *CachedScorer) Resume(resume document.Value) Report {
	return c.lookup(cacheKey(KindResume, resume), func() Report {
		return c.scorer.Resume(resume)
	})
}

// Job scores a job posting document.
func (c *CachedScorer) Job(job document.Value) Report {
	return c.lookup(cacheKey(KindJob, job), func() Report {
		return c.scorer.Job(job)
	})
}

// Match scores a resume against a job posting.
func (c *CachedScorer) Match(resume, job document.Value) Report {
	return c.lookup(cacheKey(KindMatch, resume, job), func() Report {
		return c.scorer.Match(resume, job)
	})
}

// Len returns the number of cached reports.
func (c *CachedScorer) Len() int {
	return c.cache.Len()
}

func (c *CachedScorer) lookup(key string, score func() Report) Report {
	if report, ok := c.cache.Get(key); ok {
		return cloneReport(report)
	}

	report := score()
	c.cache.Add(key, cloneReport(report))
	return report
}

func cacheKey(kind Kind, docs ...document.Value) string {
	h := sha256.New()
	h.Write([]byte(kind))
	for _, doc := range docs {
		h.Write([]byte{0})
		h.Write(doc.Canonical())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// cloneReport keeps cached entries isolated from callers that edit the detail
// maps of a returned report.
func cloneReport(report Report) Report {
	cloned, ok := deepcopy.Copy(report).(Report)
	if !ok {
		return report
	}
	return cloned
}
