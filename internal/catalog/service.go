package catalog

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

// Service layers the cache over the repository for reads and invalidates
// it on admin writes.
type Service struct {
	repo  *Repository
	cache ProductCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(repo *Repository, cache ProductCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	// Use singleflight to collapse concurrent cache misses for the same key
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		product, err := s.cache.Get(ctx, id)
		if err == nil {
			return product, nil // cache hit
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("catalog: cache get error: %v", err) // log cache error but continue
		}

		product, errGet := s.repo.Get(ctx, id)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), product); errSet != nil {
				log.Printf("catalog: cache set error: %v", errSet)
			}
		}()

		return product, nil
	})

	if err != nil {
		return nil, err
	}
	return v.(*Product), nil
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Upsert(ctx context.Context, p Product) error {
	if err := s.repo.Upsert(ctx, p); err != nil {
		return err
	}
	s.invalidate(p.ID)
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

// DecrementStock bypasses the cache for the read (stock must be as fresh
// as the store allows) and invalidates afterwards.
func (s *Service) DecrementStock(ctx context.Context, id string, qty int) error {
	if err := s.repo.DecrementStock(ctx, id, qty); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

func (s *Service) invalidate(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, id); err != nil {
		log.Printf("catalog: cache invalidate error: %v", err)
	}
}
