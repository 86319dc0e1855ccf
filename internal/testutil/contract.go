package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/starford/taxon/internal/apperr"
	"github.com/starford/taxon/internal/catalog"
	"github.com/starford/taxon/internal/models"
)

// overwrite returns a score update that writes scores as given.
func overwrite(scores map[string]int) catalog.ScoreUpdate {
	return func(map[string]int) map[string]int { return scores }
}

// increment returns a score update that adds one to tag.
func increment(tag string) catalog.ScoreUpdate {
	return func(current map[string]int) map[string]int {
		return map[string]int{tag: current[tag] + 1}
	}
}

// RunStoreContract exercises the behaviour every catalog.Store must share.
// newStore must return an empty store.
func RunStoreContract(t *testing.T, newStore func(t *testing.T) catalog.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		s := newStore(t)
		if err := s.CreateFamily(ctx, "fam", []string{"Sono", "#fitness", "#sono"}); err != nil {
			t.Fatalf("CreateFamily: %v", err)
		}
		tx, err := s.GetTaxonomy(ctx, "fam")
		if err != nil {
			t.Fatalf("GetTaxonomy: %v", err)
		}
		if len(tx.OfficialTags) != 2 || tx.OfficialTags[0] != "#fitness" || tx.OfficialTags[1] != "#sono" {
			t.Errorf("official = %v, want [#fitness #sono]", tx.OfficialTags)
		}
		if tx.FamilyID != "fam" {
			t.Errorf("family id = %q", tx.FamilyID)
		}
	})

	t.Run("CreateTwice", func(t *testing.T) {
		s := newStore(t)
		_ = s.CreateFamily(ctx, "fam", nil)
		if err := s.CreateFamily(ctx, "fam", nil); !errors.Is(err, apperr.ErrAlreadyExists) {
			t.Errorf("second create err = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("UnknownFamily", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.GetTaxonomy(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("GetTaxonomy err = %v", err)
		}
		if err := s.SetOfficialTags(ctx, "nope", []string{"#a"}); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("SetOfficialTags err = %v", err)
		}
		if _, err := s.GetScores(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("GetScores err = %v", err)
		}
		if err := s.UpdateScores(ctx, "nope", overwrite(map[string]int{"#a": 1})); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("UpdateScores err = %v", err)
		}
		if _, err := s.GetSuggestedCandidates(ctx, "nope", 0); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("GetSuggestedCandidates err = %v", err)
		}
		if err := s.ResetScores(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("ResetScores err = %v", err)
		}
	})

	t.Run("SetOfficialTagsReplaces", func(t *testing.T) {
		s := newStore(t)
		_ = s.CreateFamily(ctx, "fam", []string{"#sono"})
		if err := s.SetOfficialTags(ctx, "fam", []string{"#lazer", "fitness"}); err != nil {
			t.Fatalf("SetOfficialTags: %v", err)
		}
		tx, _ := s.GetTaxonomy(ctx, "fam")
		if len(tx.OfficialTags) != 2 || tx.OfficialTags[0] != "#fitness" || tx.OfficialTags[1] != "#lazer" {
			t.Errorf("official = %v", tx.OfficialTags)
		}
	})

	t.Run("FamiliesAreIsolated", func(t *testing.T) {
		s := newStore(t)
		_ = s.CreateFamily(ctx, "a", []string{"#sono"})
		_ = s.CreateFamily(ctx, "b", []string{"#lazer"})
		_ = s.UpdateScores(ctx, "a", overwrite(map[string]int{"#xadrez": 3}))
		tx, _ := s.GetTaxonomy(ctx, "b")
		if len(tx.OfficialTags) != 1 || tx.OfficialTags[0] != "#lazer" {
			t.Errorf("b official = %v", tx.OfficialTags)
		}
		scores, _ := s.GetScores(ctx, "b")
		if len(scores) != 0 {
			t.Errorf("b scores = %v, want empty", scores)
		}
	})

	t.Run("ScoresKeepFirstSeenOrder", func(t *testing.T) {
		s := newStore(t)
		_ = s.CreateFamily(ctx, "fam", nil)
		_ = s.UpdateScores(ctx, "fam", overwrite(map[string]int{"#piano": 1}))
		_ = s.UpdateScores(ctx, "fam", overwrite(map[string]int{"#judo": 4}))
		_ = s.UpdateScores(ctx, "fam", overwrite(map[string]int{"#piano": 2}))
		scores, err := s.GetScores(ctx, "fam")
		if err != nil {
			t.Fatalf("GetScores: %v", err)
		}
		want := []models.ScoreEntry{{Tag: "#piano", Score: 2}, {Tag: "#judo", Score: 4}}
		if len(scores) != len(want) {
			t.Fatalf("scores = %v", scores)
		}
		for i := range want {
			if scores[i].Tag != want[i].Tag || scores[i].Score != want[i].Score {
				t.Errorf("scores[%d] = %+v, want %+v", i, scores[i], want[i])
			}
		}
	})

	t.Run("SuggestionsExcludeOfficialAndBreakTiesByFirstSeen", func(t *testing.T) {
		s := newStore(t)
		_ = s.CreateFamily(ctx, "fam", []string{"#sono"})
		_ = s.UpdateScores(ctx, "fam", overwrite(map[string]int{"#piano": 2}))
		_ = s.UpdateScores(ctx, "fam", overwrite(map[string]int{"#sono": 10}))
		_ = s.UpdateScores(ctx, "fam", overwrite(map[string]int{"#judo": 2}))
		_ = s.UpdateScores(ctx, "fam", overwrite(map[string]int{"#xadrez": 5}))
		_ = s.UpdateScores(ctx, "fam", overwrite(map[string]int{"#zerado": 0}))

		got, err := s.GetSuggestedCandidates(ctx, "fam", 0)
		if err != nil {
			t.Fatalf("GetSuggestedCandidates: %v", err)
		}
		want := []models.SuggestedTagCandidate{{Tag: "#xadrez", Count: 5}, {Tag: "#piano", Count: 2}, {Tag: "#judo", Count: 2}}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("got[%d] = %+v, want %+v", i, got[i], want[i])
			}
		}

		limited, _ := s.GetSuggestedCandidates(ctx, "fam", 1)
		if len(limited) != 1 || limited[0].Tag != "#xadrez" {
			t.Errorf("limited = %v", limited)
		}
	})

	t.Run("ResetScores", func(t *testing.T) {
		s := newStore(t)
		_ = s.CreateFamily(ctx, "fam", []string{"#sono"})
		_ = s.UpdateScores(ctx, "fam", overwrite(map[string]int{"#piano": 2}))
		if err := s.ResetScores(ctx, "fam"); err != nil {
			t.Fatalf("ResetScores: %v", err)
		}
		scores, _ := s.GetScores(ctx, "fam")
		if len(scores) != 0 {
			t.Errorf("scores after reset = %v", scores)
		}
		tx, _ := s.GetTaxonomy(ctx, "fam")
		if len(tx.OfficialTags) != 1 {
			t.Errorf("reset must not touch the taxonomy: %v", tx.OfficialTags)
		}
	})

	t.Run("UpdateScoresSeesCurrentBoard", func(t *testing.T) {
		s := newStore(t)
		_ = s.CreateFamily(ctx, "fam", nil)
		_ = s.UpdateScores(ctx, "fam", overwrite(map[string]int{"#piano": 2}))
		_ = s.UpdateScores(ctx, "fam", overwrite(map[string]int{"#judo": 1}))

		var seen map[string]int
		err := s.UpdateScores(ctx, "fam", func(current map[string]int) map[string]int {
			seen = current
			return map[string]int{"#piano": current["#piano"] - 5}
		})
		if err != nil {
			t.Fatalf("UpdateScores: %v", err)
		}
		if seen["#piano"] != 2 || seen["#judo"] != 1 || len(seen) != 2 {
			t.Errorf("fn saw %v, want #piano 2 and #judo 1", seen)
		}
		scores, _ := s.GetScores(ctx, "fam")
		if len(scores) != 2 || scores[0].Tag != "#piano" || scores[0].Score != 0 || scores[1].Score != 1 {
			t.Errorf("scores = %+v, want #piano clamped to 0 and #judo untouched", scores)
		}

		if err := s.UpdateScores(ctx, "fam", overwrite(nil)); err != nil {
			t.Errorf("empty update err = %v", err)
		}
	})

	t.Run("ConcurrentIncrementsAreNotLost", func(t *testing.T) {
		s := newStore(t)
		_ = s.CreateFamily(ctx, "fam", nil)

		const workers = 50
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.UpdateScores(ctx, "fam", increment("#xadrez"))
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("UpdateScores: %v", err)
			}
		}

		scores, err := s.GetScores(ctx, "fam")
		if err != nil {
			t.Fatalf("GetScores: %v", err)
		}
		if len(scores) != 1 || scores[0].Score != workers {
			t.Errorf("scores = %+v, want #xadrez at %d", scores, workers)
		}
	})
}
