package tableau

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, 10*time.Minute, slog.Default()), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	if _, ok := cache.GetComplet(ctx, 7, 3); ok {
		t.Fatalf("cache vide: hit inattendu")
	}

	stored := &TableauComplet{
		CommuneID:     7,
		CommuneNom:    "Ilakaka",
		ExerciceID:    3,
		ExerciceAnnee: 2024,
		GenerationID:  "gen-1",
	}
	cache.SetComplet(ctx, stored)

	got, ok := cache.GetComplet(ctx, 7, 3)
	if !ok {
		t.Fatalf("miss après SetComplet")
	}
	if got.CommuneNom != "Ilakaka" || got.GenerationID != "gen-1" {
		t.Fatalf("tableau relu = %+v", got)
	}

	// Another scope stays a miss.
	if _, ok := cache.GetComplet(ctx, 7, 99); ok {
		t.Fatalf("hit pour un autre exercice")
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.SetComplet(ctx, &TableauComplet{CommuneID: 7, ExerciceID: 3})
	if err := cache.Invalidate(ctx, 7, 3); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := cache.GetComplet(ctx, 7, 3); ok {
		t.Fatalf("hit après invalidation")
	}
}

func TestCacheExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.SetComplet(ctx, &TableauComplet{CommuneID: 7, ExerciceID: 3})
	mr.FastForward(11 * time.Minute)

	if _, ok := cache.GetComplet(ctx, 7, 3); ok {
		t.Fatalf("hit après expiration du TTL")
	}
}

func TestCacheCorruptEntryIsDropped(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	key, err := cache.cleTableau(ctx, 7, 3)
	if err != nil {
		t.Fatalf("cleTableau: %v", err)
	}
	if err := mr.Set(key, "{pas du json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok := cache.GetComplet(ctx, 7, 3); ok {
		t.Fatalf("hit sur une entrée corrompue")
	}
	if mr.Exists(key) {
		t.Fatalf("l'entrée corrompue doit être supprimée")
	}
}

func TestCacheBumpInvalidatesEverything(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.SetComplet(ctx, &TableauComplet{CommuneID: 7, ExerciceID: 3})
	cache.SetComplet(ctx, &TableauComplet{CommuneID: 8, ExerciceID: 3})

	if err := cache.Bump(ctx); err != nil {
		t.Fatalf("Bump: %v", err)
	}
	if _, ok := cache.GetComplet(ctx, 7, 3); ok {
		t.Fatalf("hit après bump de version")
	}
	if _, ok := cache.GetComplet(ctx, 8, 3); ok {
		t.Fatalf("hit après bump de version")
	}

	// New writes land under the new generation.
	cache.SetComplet(ctx, &TableauComplet{CommuneID: 7, ExerciceID: 3, GenerationID: "gen-2"})
	got, ok := cache.GetComplet(ctx, 7, 3)
	if !ok || got.GenerationID != "gen-2" {
		t.Fatalf("relecture après bump = %+v, ok=%v", got, ok)
	}
}

func TestCacheNilSafe(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	if _, ok := cache.GetComplet(ctx, 1, 1); ok {
		t.Fatalf("hit sur cache nil")
	}
	cache.SetComplet(ctx, &TableauComplet{})
	if err := cache.Invalidate(ctx, 1, 1); err != nil {
		t.Fatalf("Invalidate nil: %v", err)
	}
	if err := cache.Bump(ctx); err != nil {
		t.Fatalf("Bump nil: %v", err)
	}
}
