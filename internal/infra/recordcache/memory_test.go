package recordcache

import (
	"context"
	"testing"
	"time"

	"authstamp/internal/domain"
)

func sampleRecord(ref domain.RecordRef) domain.LedgerRecord {
	return domain.LedgerRecord{
		Record: domain.CertificationRecord{
			Kind:         domain.RecordKind,
			Fingerprint:  "a2ccdc484466b1cac56411433c02b1c2a58b103cc8884904af4e4d3797f3e018",
			DocumentName: "doc.pdf",
		},
		Ref:            ref,
		Sender:         "SENDER",
		ConfirmedRound: 42,
	}
}

func TestMemoryMissThenHit(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory()

	if _, ok, err := cache.Get(ctx, "REF"); err != nil || ok {
		t.Fatalf("Get on empty cache = ok %v err %v, want miss", ok, err)
	}

	want := sampleRecord("REF")
	if err := cache.Put(ctx, "REF", want, time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := cache.Get(ctx, "REF")
	if err != nil || !ok {
		t.Fatalf("Get after Put = ok %v err %v, want hit", ok, err)
	}
	if got.Record.Fingerprint != want.Record.Fingerprint || got.ConfirmedRound != 42 {
		t.Errorf("cached record = %+v, want %+v", got, want)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory()
	if err := cache.Put(ctx, "REF", sampleRecord("REF"), time.Nanosecond); err != nil {
		t.Fatalf("Put: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := cache.Get(ctx, "REF"); ok {
		t.Fatal("expired entry still served")
	}
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory()
	if err := cache.Put(ctx, "REF", sampleRecord("REF"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "REF"); !ok {
		t.Fatal("zero-ttl entry evicted")
	}
}

func TestMemoryHitReturnsCopy(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory()
	if err := cache.Put(ctx, "REF", sampleRecord("REF"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	first, _, _ := cache.Get(ctx, "REF")
	first.Sender = "MUTATED"
	second, _, _ := cache.Get(ctx, "REF")
	if second.Sender != "SENDER" {
		t.Fatal("cache entry mutated through returned pointer")
	}
}

func TestNilMemoryIsANoop(t *testing.T) {
	ctx := context.Background()
	var cache *Memory
	if err := cache.Put(ctx, "REF", sampleRecord("REF"), 0); err != nil {
		t.Fatalf("Put on nil cache: %v", err)
	}
	if _, ok, err := cache.Get(ctx, "REF"); err != nil || ok {
		t.Fatalf("Get on nil cache = ok %v err %v, want miss", ok, err)
	}
}
