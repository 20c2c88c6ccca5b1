package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
)

func newRepo(t *testing.T) (*RedisTokenRepo, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	t.Cleanup(mr.Close)

	client := redisv9.NewClient(&redisv9.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTokenRepo(client), mr
}

func TestRedisTokenRepo_ConsumeOnce(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	exp := time.Now().Add(10 * time.Minute)

	first, err := repo.Consume(ctx, "jti1", exp)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if !first {
		t.Fatal("first Consume must win")
	}

	again, err := repo.Consume(ctx, "jti1", exp)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if again {
		t.Fatal("second Consume must lose")
	}
}

func TestRedisTokenRepo_ConsumeLeavesMarker(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	if mr.Exists(consumedPrefix + "jti2") {
		t.Fatal("absent key must not be marked")
	}
	if _, err := repo.Consume(ctx, "jti2", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if !mr.Exists(consumedPrefix + "jti2") {
		t.Fatal("token should be marked consumed")
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestRedisTokenRepo_MarkerExpiresWithToken(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	if _, err := repo.Consume(ctx, "jti3", time.Now().Add(30*time.Second)); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if ttl := mr.TTL(consumedPrefix + "jti3"); ttl <= 0 || ttl > 30*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	mr.FastForward(31 * time.Second)
	if mr.Exists(consumedPrefix + "jti3") {
		t.Fatal("marker must expire together with the token")
	}
}

func TestRedisTokenRepo_ExpiredTokenStillGetsTTL(t *testing.T) {
	repo, mr := newRepo(t)
	if _, err := repo.Consume(context.Background(), "old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if ttl := mr.TTL(consumedPrefix + "old"); ttl != time.Minute {
		t.Fatalf("expected fallback ttl, got %v", ttl)
	}
}

func TestRedisTokenRepo_ConcurrentConsume(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Minute)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := repo.Consume(ctx, "shared", exp); err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestRedisTokenRepo_ErrorsSurface(t *testing.T) {
	repo, mr := newRepo(t)
	mr.Close()

	if _, err := repo.Consume(context.Background(), "jti", time.Now().Add(time.Minute)); err == nil {
		t.Fatal("expected an error once redis is gone")
	}
	if err := repo.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail")
	}
}
