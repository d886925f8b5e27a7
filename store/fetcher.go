package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"curseforge-badges/cfwidget"
	"curseforge-badges/config"

	"go.uber.org/zap"
)

const (
	// How long a negative (404) entry is trusted before we ask upstream again.
	notFoundTTL = 5 * time.Minute

	refreshTimeout = 15 * time.Second
)

// Fetcher combines the cfwidget client with the local store to give
// stale-while-revalidate semantics: inside the revalidation window cached
// metadata is served directly; past it but inside the stale-if-error window
// the cached value is served while a background refresh runs; beyond both a
// synchronous fetch is required, falling back to stale data only when the
// fetch itself fails inside the stale-if-error window.
type Fetcher struct {
	client       *cfwidget.Client
	store        *Store
	revalidate   time.Duration
	staleIfError time.Duration
	log          *zap.SugaredLogger

	now func() time.Time

	mu         sync.Mutex
	refreshing map[int]bool
}

// NewFetcher wires a client and store together using the configured windows.
func NewFetcher(client *cfwidget.Client, s *Store, cfg config.Config, log *zap.SugaredLogger) *Fetcher {
	return &Fetcher{
		client:       client,
		store:        s,
		revalidate:   time.Duration(cfg.RevalidateSeconds) * time.Second,
		staleIfError: time.Duration(cfg.StaleIfErrorSeconds) * time.Second,
		log:          log,
		now:          time.Now,
		refreshing:   make(map[int]bool),
	}
}

// GetProject returns project metadata, serving from the cache when the
// revalidation policy allows it.
func (f *Fetcher) GetProject(ctx context.Context, projectID int) (*cfwidget.Project, error) {
	entry, err := f.store.Get(projectID)
	if err != nil {
		// A broken cache should not take the endpoint down.
		f.log.Warnw("Project cache lookup failed", zap.Int("project", projectID), zap.Error(err))
		entry = nil
	}

	if entry != nil {
		age := f.now().Sub(entry.FetchedAt)
		switch {
		case entry.NotFound:
			if age < notFoundTTL {
				return nil, cfwidget.ErrProjectNotFound
			}
		case age < f.revalidate:
			return decodeEntry(entry)
		case age < f.revalidate+f.staleIfError:
			// Stale but inside the error window: serve what we have and
			// refresh in the background. If that refresh fails, this same
			// entry keeps being served until the window lapses.
			f.refreshAsync(projectID)
			return decodeEntry(entry)
		}
	}

	return f.fetchAndStore(ctx, projectID)
}

// fetchAndStore performs a synchronous upstream fetch and records the result.
func (f *Fetcher) fetchAndStore(ctx context.Context, projectID int) (*cfwidget.Project, error) {
	project, err := f.client.GetProject(ctx, projectID)
	switch {
	case err == nil:
		payload, marshalErr := json.Marshal(project)
		if marshalErr != nil {
			f.log.Warnw("Failed to encode project for cache", zap.Int("project", projectID), zap.Error(marshalErr))
			return project, nil
		}
		if putErr := f.store.Put(projectID, payload, false, f.now()); putErr != nil {
			f.log.Warnw("Failed to store project cache entry", zap.Int("project", projectID), zap.Error(putErr))
		}
		return project, nil

	case errors.Is(err, cfwidget.ErrProjectNotFound):
		if putErr := f.store.Put(projectID, nil, true, f.now()); putErr != nil {
			f.log.Warnw("Failed to store negative cache entry", zap.Int("project", projectID), zap.Error(putErr))
		}
		return nil, err

	default:
		return nil, err
	}
}

// refreshAsync kicks off at most one background refresh per project.
func (f *Fetcher) refreshAsync(projectID int) {
	f.mu.Lock()
	if f.refreshing[projectID] {
		f.mu.Unlock()
		return
	}
	f.refreshing[projectID] = true
	f.mu.Unlock()

	go func() {
		defer func() {
			f.mu.Lock()
			delete(f.refreshing, projectID)
			f.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if _, err := f.fetchAndStore(ctx, projectID); err != nil {
			f.log.Warnw("Background metadata refresh failed", zap.Int("project", projectID), zap.Error(err))
		}
	}()
}

func decodeEntry(entry *CachedProject) (*cfwidget.Project, error) {
	var project cfwidget.Project
	if err := json.Unmarshal(entry.Payload, &project); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for project %d: %w", entry.ProjectID, err)
	}
	return &project, nil
}
