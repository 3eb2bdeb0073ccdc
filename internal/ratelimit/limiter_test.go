package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func userIDGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z0-9]{8,32}`)
}

func testLimiter_RequestsWithinBurstSucceed(t *rapid.T) {
	config := Config{
		FreeRPS:         100,
		FreeBurst:       200,
		PaidRPS:         1000,
		PaidBurst:       2000,
		CleanupInterval: time.Hour,
	}
	rl := NewRateLimiter(config)
	defer rl.Stop()

	userID := userIDGenerator().Draw(t, "userID")
	paid := rapid.Bool().Draw(t, "paid")

	burst := config.FreeBurst
	if paid {
		burst = config.PaidBurst
	}
	numRequests := rapid.IntRange(1, min(burst/2, 50)).Draw(t, "numRequests")

	for i := 0; i < numRequests; i++ {
		if !rl.Allow(userID, paid) {
			t.Fatalf("request %d of %d should fit within burst of %d", i+1, numRequests, burst)
		}
	}
}

func TestLimiter_RequestsWithinBurstSucceed(t *testing.T) {
	rapid.Check(t, testLimiter_RequestsWithinBurstSucceed)
}

func FuzzLimiter_RequestsWithinBurstSucceed(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(testLimiter_RequestsWithinBurstSucceed))
}

func testLimiter_ExhaustedBucketBlocks(t *rapid.T) {
	// Near-zero refill so the burst is effectively the whole allowance.
	config := Config{
		FreeRPS:         0.001,
		FreeBurst:       5,
		PaidRPS:         0.001,
		PaidBurst:       10,
		CleanupInterval: time.Hour,
	}
	rl := NewRateLimiter(config)
	defer rl.Stop()

	userID := userIDGenerator().Draw(t, "userID")
	paid := rapid.Bool().Draw(t, "paid")

	burst := config.FreeBurst
	if paid {
		burst = config.PaidBurst
	}
	for i := 0; i < burst; i++ {
		rl.Allow(userID, paid)
	}

	if rl.Allow(userID, paid) {
		t.Fatalf("request beyond burst of %d should be blocked", burst)
	}
}

func TestLimiter_ExhaustedBucketBlocks(t *testing.T) {
	rapid.Check(t, testLimiter_ExhaustedBucketBlocks)
}

func FuzzLimiter_ExhaustedBucketBlocks(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(testLimiter_ExhaustedBucketBlocks))
}

func testLimiter_UsersAreIndependent(t *rapid.T) {
	config := Config{
		FreeRPS:         0.001,
		FreeBurst:       5,
		PaidRPS:         0.001,
		PaidBurst:       10,
		CleanupInterval: time.Hour,
	}
	rl := NewRateLimiter(config)
	defer rl.Stop()

	userID1 := userIDGenerator().Draw(t, "userID1")
	userID2 := userIDGenerator().Filter(func(s string) bool {
		return s != userID1
	}).Draw(t, "userID2")

	for i := 0; i < config.FreeBurst; i++ {
		rl.Allow(userID1, false)
	}
	if rl.Allow(userID1, false) {
		t.Fatal("user1 should be blocked after exhausting their burst")
	}
	if !rl.Allow(userID2, false) {
		t.Fatal("user2's bucket must not be affected by user1's traffic")
	}
}

func TestLimiter_UsersAreIndependent(t *testing.T) {
	rapid.Check(t, testLimiter_UsersAreIndependent)
}

func FuzzLimiter_UsersAreIndependent(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(testLimiter_UsersAreIndependent))
}

func testLimiter_PaidTierAllowsMore(t *rapid.T) {
	freeBurst := rapid.IntRange(5, 20).Draw(t, "freeBurst")
	paidBurst := rapid.IntRange(freeBurst+10, freeBurst+100).Draw(t, "paidBurst")

	config := Config{
		FreeRPS:         0.001,
		FreeBurst:       freeBurst,
		PaidRPS:         0.001,
		PaidBurst:       paidBurst,
		CleanupInterval: time.Hour,
	}

	rl := NewRateLimiter(config)
	defer rl.Stop()

	userID := userIDGenerator().Draw(t, "userID")

	for i := 0; i < freeBurst; i++ {
		rl.Allow(userID, false)
	}
	if rl.Allow(userID, false) {
		t.Fatalf("free user should be blocked after %d requests", freeBurst)
	}

	rl2 := NewRateLimiter(config)
	defer rl2.Stop()

	successCount := 0
	for i := 0; i < paidBurst; i++ {
		if rl2.Allow(userID, true) {
			successCount++
		}
	}
	if successCount <= freeBurst {
		t.Fatalf("paid user made %d requests, free burst is %d", successCount, freeBurst)
	}
}

func TestLimiter_PaidTierAllowsMore(t *testing.T) {
	rapid.Check(t, testLimiter_PaidTierAllowsMore)
}

func FuzzLimiter_PaidTierAllowsMore(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(testLimiter_PaidTierAllowsMore))
}

func TestLimiter_SweepDropsIdleBuckets(t *testing.T) {
	config := DefaultConfig
	config.CleanupInterval = 10 * time.Millisecond

	rl := NewRateLimiter(config)
	defer rl.Stop()

	rl.Allow("user-a", false)
	rl.Allow("user-b", true)
	if rl.Len() != 2 {
		t.Fatalf("expected 2 buckets, got %d", rl.Len())
	}

	time.Sleep(config.CleanupInterval + 5*time.Millisecond)
	rl.Sweep()

	if rl.Len() != 0 {
		t.Fatalf("expected idle buckets to be swept, %d remain", rl.Len())
	}
}

func TestLimiter_TierChangeRebuildsBucket(t *testing.T) {
	rl := NewRateLimiter(DefaultConfig)
	defer rl.Stop()

	freeBucket := rl.GetLimiter("user-a", false)
	paidBucket := rl.GetLimiter("user-a", true)
	if freeBucket == paidBucket {
		t.Fatal("tier change should replace the bucket")
	}

	again := rl.GetLimiter("user-a", true)
	if again != paidBucket {
		t.Fatal("same user and tier should reuse the bucket")
	}
}

func TestLimiter_ConcurrentAccess(t *testing.T) {
	config := Config{
		FreeRPS:         1000,
		FreeBurst:       2000,
		PaidRPS:         10000,
		PaidBurst:       20000,
		CleanupInterval: time.Hour,
	}
	rl := NewRateLimiter(config)
	defer rl.Stop()

	userIDs := []string{"ua", "ub", "uc", "ud", "ue"}

	var wg sync.WaitGroup
	var total atomic.Int64
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for r := 0; r < 50; r++ {
				rl.Allow(userIDs[(g+r)%len(userIDs)], (g+r)%2 == 0)
				total.Add(1)
			}
		}(g)
	}
	wg.Wait()

	if total.Load() != 500 {
		t.Fatalf("expected 500 calls, got %d", total.Load())
	}
	if rl.Len() == 0 {
		t.Fatal("expected buckets to be tracked")
	}
}

func TestLimiter_ConcurrentSameUserSameTier(t *testing.T) {
	// Same user and tier on every call keeps all goroutines on the
	// shared-lock fast path, where the idle timestamp is updated.
	rl := NewRateLimiter(Config{
		FreeRPS:         1000,
		FreeBurst:       2000,
		PaidRPS:         10000,
		PaidBurst:       20000,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < 100; r++ {
				rl.Allow("shared-user", false)
			}
		}()
	}
	wg.Wait()

	if rl.Len() != 1 {
		t.Fatalf("expected a single bucket, got %d", rl.Len())
	}
}

func TestLimiter_StopReturnsPromptly(t *testing.T) {
	config := DefaultConfig
	config.CleanupInterval = 10 * time.Millisecond

	rl := NewRateLimiter(config)
	rl.Allow("user-a", false)

	done := make(chan struct{})
	go func() {
		rl.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return, sweep goroutine may be leaked")
	}
}
