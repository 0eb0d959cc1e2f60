package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/robert-crandall/journal-app-sub006/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	db, err := storage.Open(ctx, filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewService(db)
}

func mustCreateStat(t *testing.T, svc *Service, userID string, name string) *storage.Stat {
	t.Helper()
	stat, err := svc.CreateStat(context.Background(), userID, CreateStatInput{Name: name})
	if err != nil {
		t.Fatalf("create stat %q: %v", name, err)
	}
	return stat
}

func TestCreateStatValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateStat(ctx, "u1", CreateStatInput{Name: "   "})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError for blank name, got %v", err)
	}

	stat := mustCreateStat(t, svc, "u1", "  Fitness  ")
	if stat.Name != "Fitness" {
		t.Fatalf("name=%q, want trimmed %q", stat.Name, "Fitness")
	}
	if stat.CumulativeXP != 0 || stat.CurrentLevel != 1 {
		t.Fatalf("new stat xp=%d level=%d, want 0/1", stat.CumulativeXP, stat.CurrentLevel)
	}
}

func TestAwardEndToEnd(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat := mustCreateStat(t, svc, "u1", "Fitness")

	res, err := svc.AwardXP(ctx, "u1", AwardInput{
		StatID: stat.ID,
		Amount: 100,
		Source: SourceTask,
		Reason: "morning workout",
	})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if res.Stat.CumulativeXP != 100 {
		t.Fatalf("xp=%d, want 100", res.Stat.CumulativeXP)
	}
	if res.Stat.CurrentLevel != 2 {
		t.Fatalf("level=%d, want 2", res.Stat.CurrentLevel)
	}
	if !res.LeveledUp || res.NewLevel != 2 {
		t.Fatalf("leveledUp=%v newLevel=%d, want true/2", res.LeveledUp, res.NewLevel)
	}

	grants, err := svc.History(ctx, "u1", stat.ID, 10, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("len(history)=%d, want 1", len(grants))
	}
	if grants[0].Amount != 100 || grants[0].SourceType != "task" {
		t.Fatalf("grant=%+v, want amount=100 sourceType=task", grants[0])
	}
	if grants[0].Reason == nil || *grants[0].Reason != "morning workout" {
		t.Fatalf("grant reason=%v, want %q", grants[0].Reason, "morning workout")
	}
}

func TestAwardMultiLevelJump(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat := mustCreateStat(t, svc, "u1", "Learning")

	res, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: 1000, Source: SourceQuest})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if res.Stat.CurrentLevel != 5 {
		t.Fatalf("level=%d, want 5 (single grant spans thresholds)", res.Stat.CurrentLevel)
	}
	if !res.LeveledUp || res.NewLevel != 5 {
		t.Fatalf("leveledUp=%v newLevel=%d, want true/5", res.LeveledUp, res.NewLevel)
	}
	if res.LevelBefore != 1 {
		t.Fatalf("levelBefore=%d, want 1", res.LevelBefore)
	}
}

func TestAwardExactThreshold(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat := mustCreateStat(t, svc, "u1", "Creativity")

	if _, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: 40, Source: SourceAdhoc}); err != nil {
		t.Fatalf("seed award: %v", err)
	}

	// Exactly the XP missing to level 2.
	res, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: 60, Source: SourceAdhoc})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if !res.LeveledUp || res.NewLevel != 2 {
		t.Fatalf("leveledUp=%v newLevel=%d, want true/2", res.LeveledUp, res.NewLevel)
	}

	// A grant within the same level does not report a level-up.
	res, err = svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: 10, Source: SourceAdhoc})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if res.LeveledUp || res.NewLevel != 0 {
		t.Fatalf("leveledUp=%v newLevel=%d, want false/0", res.LeveledUp, res.NewLevel)
	}
}

func TestNegativeAmountFloorsAtZero(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat := mustCreateStat(t, svc, "u1", "Discipline")

	if _, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: 50, Source: SourceTask}); err != nil {
		t.Fatalf("seed award: %v", err)
	}

	_, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: -80, Source: SourceAdhoc})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError for overdraw, got %v", err)
	}

	// Neither the stat nor the ledger may show a trace of the rejected grant.
	got, err := svc.GetStat(ctx, "u1", stat.ID)
	if err != nil {
		t.Fatalf("get stat: %v", err)
	}
	if got.CumulativeXP != 50 {
		t.Fatalf("xp=%d after rejected deduction, want 50", got.CumulativeXP)
	}
	grants, err := svc.History(ctx, "u1", stat.ID, 10, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("len(history)=%d after rejected deduction, want 1", len(grants))
	}

	// A deduction that stays at or above zero is allowed.
	res, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: -50, Source: SourceAdhoc, Reason: "undo"})
	if err != nil {
		t.Fatalf("deduct to zero: %v", err)
	}
	if res.Stat.CumulativeXP != 0 || res.Stat.CurrentLevel != 1 {
		t.Fatalf("xp=%d level=%d after deduct to zero, want 0/1", res.Stat.CumulativeXP, res.Stat.CurrentLevel)
	}
}

func TestLedgerSumMatchesStat(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat := mustCreateStat(t, svc, "u1", "Fitness")

	amounts := []int{100, 30, -20, 250, 5}
	for _, a := range amounts {
		if _, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: a, Source: SourceAdhoc}); err != nil {
			t.Fatalf("award %d: %v", a, err)
		}
	}

	got, err := svc.GetStat(ctx, "u1", stat.ID)
	if err != nil {
		t.Fatalf("get stat: %v", err)
	}
	sum, err := svc.GrantRepo().SumForStat(ctx, stat.ID)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != got.CumulativeXP {
		t.Fatalf("ledger sum %d != stat xp %d", sum, got.CumulativeXP)
	}
	if got.CurrentLevel != LevelForXP(got.CumulativeXP) {
		t.Fatalf("level %d != derived %d", got.CurrentLevel, LevelForXP(got.CumulativeXP))
	}
}

func TestInvalidSourceType(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat := mustCreateStat(t, svc, "u1", "Fitness")

	_, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: 10, Source: SourceType("bogus")})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError for bad source type, got %v", err)
	}

	if _, err := ParseSourceType("experiment"); err != nil {
		t.Fatalf("ParseSourceType(experiment): %v", err)
	}
	if _, err := ParseSourceType("deduction"); !IsValidation(err) {
		t.Fatalf("expected ValidationError from ParseSourceType, got %v", err)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat := mustCreateStat(t, svc, "alice", "Fitness")

	if _, err := svc.GetStat(ctx, "bob", stat.ID); !IsNotFound(err) {
		t.Fatalf("GetStat as bob: expected NotFoundError, got %v", err)
	}
	if _, err := svc.History(ctx, "bob", stat.ID, 10, 0); !IsNotFound(err) {
		t.Fatalf("History as bob: expected NotFoundError, got %v", err)
	}
	if _, err := svc.AwardXP(ctx, "bob", AwardInput{StatID: stat.ID, Amount: 10, Source: SourceAdhoc}); !IsNotFound(err) {
		t.Fatalf("AwardXP as bob: expected NotFoundError, got %v", err)
	}
	if _, err := svc.UpdateStat(ctx, "bob", stat.ID, UpdateStatInput{}); !IsNotFound(err) {
		t.Fatalf("UpdateStat as bob: expected NotFoundError, got %v", err)
	}
	if deleted, err := svc.DeleteStat(ctx, "bob", stat.ID); err != nil || deleted {
		t.Fatalf("DeleteStat as bob = (%v, %v), want (false, nil)", deleted, err)
	}

	// Alice's stat is untouched by all of the above.
	got, err := svc.GetStat(ctx, "alice", stat.ID)
	if err != nil {
		t.Fatalf("get as alice: %v", err)
	}
	if got.CumulativeXP != 0 {
		t.Fatalf("alice xp=%d, want 0", got.CumulativeXP)
	}
}

func TestUpdateStatNeverTouchesXP(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat := mustCreateStat(t, svc, "u1", "Fitness")
	if _, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: 100, Source: SourceTask}); err != nil {
		t.Fatalf("award: %v", err)
	}

	name := "Strength"
	desc := "Lifting and endurance"
	updated, err := svc.UpdateStat(ctx, "u1", stat.ID, UpdateStatInput{
		Name:        &name,
		Description: &desc,
		Activities: []storage.ExampleActivity{
			{Description: "Deadlift session", SuggestedXP: 60},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Strength" {
		t.Fatalf("name=%q, want Strength", updated.Name)
	}
	if updated.CumulativeXP != 100 || updated.CurrentLevel != 2 {
		t.Fatalf("xp=%d level=%d after profile edit, want 100/2", updated.CumulativeXP, updated.CurrentLevel)
	}
	if len(updated.Activities) != 1 || updated.Activities[0].SuggestedXP != 60 {
		t.Fatalf("activities=%+v", updated.Activities)
	}

	blank := "  "
	if _, err := svc.UpdateStat(ctx, "u1", stat.ID, UpdateStatInput{Name: &blank}); !IsValidation(err) {
		t.Fatalf("expected ValidationError for blank rename, got %v", err)
	}
}

func TestSelfHealStoredLevel(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat := mustCreateStat(t, svc, "u1", "Fitness")
	if _, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: 100, Source: SourceTask}); err != nil {
		t.Fatalf("award: %v", err)
	}

	// Simulate formula drift: a stored level that no longer matches the XP.
	if err := svc.StatRepo().SetLevel(ctx, stat.ID, 99); err != nil {
		t.Fatalf("corrupt level: %v", err)
	}

	stats, err := svc.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 1 || stats[0].CurrentLevel != 2 {
		t.Fatalf("read level=%d, want healed 2", stats[0].CurrentLevel)
	}

	// The correction must be persisted, not just reported.
	raw, err := svc.StatRepo().Get(ctx, stat.ID, "u1")
	if err != nil {
		t.Fatalf("raw get: %v", err)
	}
	if raw.CurrentLevel != 2 {
		t.Fatalf("stored level=%d after heal, want 2", raw.CurrentLevel)
	}
}

func TestDeleteStatCascades(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat := mustCreateStat(t, svc, "u1", "Fitness")
	for i := 0; i < 3; i++ {
		if _, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: 10, Source: SourceAdhoc}); err != nil {
			t.Fatalf("award: %v", err)
		}
	}

	deleted, err := svc.DeleteStat(ctx, "u1", stat.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatalf("deleted=false, want true")
	}

	if _, err := svc.GetStat(ctx, "u1", stat.ID); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError after delete, got %v", err)
	}
	n, err := svc.GrantRepo().CountForStat(ctx, stat.ID)
	if err != nil {
		t.Fatalf("count grants: %v", err)
	}
	if n != 0 {
		t.Fatalf("%d orphaned grants after cascade delete", n)
	}

	// Deleting again is a no-op, not an error.
	deleted, err = svc.DeleteStat(ctx, "u1", stat.ID)
	if err != nil || deleted {
		t.Fatalf("second delete = (%v, %v), want (false, nil)", deleted, err)
	}
}

func TestAwardAtomicityOnFailure(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat := mustCreateStat(t, svc, "u1", "Fitness")

	// A context that is already dead makes the award transaction fail as a
	// unit; neither table may record a partial result.
	dead, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := svc.AwardXP(dead, "u1", AwardInput{StatID: stat.ID, Amount: 100, Source: SourceTask}); err == nil {
		t.Fatalf("expected error awarding with canceled context")
	}

	got, err := svc.GetStat(ctx, "u1", stat.ID)
	if err != nil {
		t.Fatalf("get stat: %v", err)
	}
	if got.CumulativeXP != 0 {
		t.Fatalf("xp=%d after failed award, want 0", got.CumulativeXP)
	}
	n, err := svc.GrantRepo().CountForStat(ctx, stat.ID)
	if err != nil {
		t.Fatalf("count grants: %v", err)
	}
	if n != 0 {
		t.Fatalf("%d ledger rows after failed award, want 0", n)
	}
}

func TestConcurrentAwardsNoLostUpdates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat := mustCreateStat(t, svc, "u1", "Fitness")

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: 10, Source: SourceTask})
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent award: %v", err)
	}

	got, err := svc.GetStat(ctx, "u1", stat.ID)
	if err != nil {
		t.Fatalf("get stat: %v", err)
	}
	if got.CumulativeXP != workers*10 {
		t.Fatalf("xp=%d, want %d (lost update)", got.CumulativeXP, workers*10)
	}
	grants, err := svc.History(ctx, "u1", stat.ID, workers*2, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(grants) != workers {
		t.Fatalf("len(history)=%d, want %d", len(grants), workers)
	}
	sum, err := svc.GrantRepo().SumForStat(ctx, stat.ID)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != got.CumulativeXP {
		t.Fatalf("ledger sum %d != stat xp %d", sum, got.CumulativeXP)
	}
}

func TestConcurrentAwardsDifferentStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := mustCreateStat(t, svc, "u1", "Fitness")
	b := mustCreateStat(t, svc, "u1", "Learning")

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: a.ID, Amount: 5, Source: SourceTask}); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: b.ID, Amount: 7, Source: SourceJournal}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent award: %v", err)
	}

	gotA, err := svc.GetStat(ctx, "u1", a.ID)
	if err != nil {
		t.Fatalf("get a: %v", err)
	}
	gotB, err := svc.GetStat(ctx, "u1", b.ID)
	if err != nil {
		t.Fatalf("get b: %v", err)
	}
	if gotA.CumulativeXP != 100 || gotB.CumulativeXP != 140 {
		t.Fatalf("xp a=%d b=%d, want 100/140", gotA.CumulativeXP, gotB.CumulativeXP)
	}
}

func TestAddFromCatalog(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat, err := svc.AddFromCatalog(ctx, "u1", "fitness")
	if err != nil {
		t.Fatalf("add from catalog: %v", err)
	}
	if stat.Name != "Fitness" {
		t.Fatalf("name=%q, want Fitness", stat.Name)
	}
	if len(stat.Activities) == 0 {
		t.Fatalf("expected example activities from the template")
	}
	if stat.CumulativeXP != 0 || stat.CurrentLevel != 1 {
		t.Fatalf("catalog stat xp=%d level=%d, want 0/1", stat.CumulativeXP, stat.CurrentLevel)
	}

	if _, err := svc.AddFromCatalog(ctx, "u1", "nope"); !IsValidation(err) {
		t.Fatalf("expected ValidationError for unknown code, got %v", err)
	}
}

func TestProgress(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stat := mustCreateStat(t, svc, "u1", "Fitness")
	if _, err := svc.AwardXP(ctx, "u1", AwardInput{StatID: stat.ID, Amount: 150, Source: SourceTask}); err != nil {
		t.Fatalf("award: %v", err)
	}

	progress, err := svc.Progress(ctx, "u1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("len(progress)=%d, want 1", len(progress))
	}
	p := progress[0]
	if p.Stat.CurrentLevel != 2 {
		t.Fatalf("level=%d, want 2", p.Stat.CurrentLevel)
	}
	if p.LevelFloor != 100 || p.NextLevelAt != 300 || p.XPToNext != 150 {
		t.Fatalf("floor=%d next=%d toNext=%d, want 100/300/150", p.LevelFloor, p.NextLevelAt, p.XPToNext)
	}
	if p.CanLevelUp {
		t.Fatalf("CanLevelUp=true; level-up is automatic and immediate")
	}
}
