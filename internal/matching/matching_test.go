package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

type notification struct {
	lost  domain.Item
	found domain.Item
}

type recordingNotifier struct {
	calls []notification
	err   error
}

func (r *recordingNotifier) NotifyPotentialMatch(_ context.Context, lost, found domain.Item) error {
	r.calls = append(r.calls, notification{lost: lost, found: found})
	return r.err
}

func item(id int64, typ domain.ItemType, category, description string, owner int64) domain.Item {
	return domain.Item{
		ID:               id,
		Type:             typ,
		Category:         category,
		Description:      description,
		ReportedByUserID: owner,
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "iPhone 13 Pro noir", "iPhone 13 Pro noir", 1.0},
		{"disjoint", "a b c", "x y z", 0.0},
		{"case insensitive", "Black WALLET", "black wallet", 1.0},
		{"longer denominator", "Sac à dos noir Nike", "Sac à dos noir avec logo Nike", 5.0 / 7.0},
		{"both empty", "", "", 0.0},
		{"one empty", "keys", "", 0.0},
		{"extra whitespace", "  red   scarf ", "red scarf", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarityCountsDuplicatesFromFirstList(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("blue blue", "blue bag"), 1e-9)
	assert.InDelta(t, 0.5, Similarity("blue bag", "blue blue"), 1e-9)
}

func TestFindPotentialMatchesLostAgainstFound(t *testing.T) {
	notifier := &recordingNotifier{}
	engine := NewEngine(notifier, nil)

	lost := item(1, domain.ItemTypeLost, domain.CategoryAccessories, "Sac à dos noir Nike", 10)
	found := item(2, domain.ItemTypeFound, domain.CategoryAccessories, "Sac à dos noir avec logo Nike", 20)

	matches := engine.FindPotentialMatches(context.Background(), lost, []domain.Item{found})

	require.Len(t, matches, 1)
	assert.Equal(t, found.ID, matches[0].ID)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, int64(10), notifier.calls[0].lost.ReportedByUserID)
	assert.Equal(t, found.ID, notifier.calls[0].found.ID)
}

func TestFindPotentialMatchesNotifiesLostOwnerWhenSubjectIsFound(t *testing.T) {
	notifier := &recordingNotifier{}
	engine := NewEngine(notifier, nil)

	found := item(5, domain.ItemTypeFound, domain.CategoryElectronics, "iPhone 13 Pro noir", 30)
	lost := item(6, domain.ItemTypeLost, domain.CategoryElectronics, "iPhone 13 Pro noir", 40)

	matches := engine.FindPotentialMatches(context.Background(), found, []domain.Item{lost})

	require.Len(t, matches, 1)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, lost.ID, notifier.calls[0].lost.ID)
	assert.Equal(t, int64(40), notifier.calls[0].lost.ReportedByUserID)
	assert.Equal(t, found.ID, notifier.calls[0].found.ID)
}

func TestFindPotentialMatchesSameTypeNeverMatches(t *testing.T) {
	notifier := &recordingNotifier{}
	engine := NewEngine(notifier, nil)

	for _, typ := range []domain.ItemType{domain.ItemTypeLost, domain.ItemTypeFound} {
		a := item(1, typ, domain.CategoryDocuments, "student card EMSI", 1)
		b := item(2, typ, domain.CategoryDocuments, "student card EMSI", 2)
		assert.Empty(t, engine.FindPotentialMatches(context.Background(), a, []domain.Item{b}))
	}
	assert.Empty(t, notifier.calls)
}

func TestFindPotentialMatchesRequiresSameCategory(t *testing.T) {
	engine := NewEngine(nil, nil)
	lost := item(1, domain.ItemTypeLost, domain.CategoryElectronics, "black charger", 1)
	found := item(2, domain.ItemTypeFound, domain.CategoryAccessories, "black charger", 2)

	assert.Empty(t, engine.FindPotentialMatches(context.Background(), lost, []domain.Item{found}))
}

func TestFindPotentialMatchesExcludesSelf(t *testing.T) {
	engine := NewEngine(nil, nil)
	lost := item(1, domain.ItemTypeLost, domain.CategoryElectronics, "black charger", 1)
	self := lost
	self.Type = domain.ItemTypeFound

	assert.Empty(t, engine.FindPotentialMatches(context.Background(), lost, []domain.Item{self}))
}

func TestFindPotentialMatchesThresholdIsExclusive(t *testing.T) {
	engine := NewEngine(nil, nil, WithThreshold(0.5))
	lost := item(1, domain.ItemTypeLost, domain.CategoryOther, "red umbrella", 1)
	found := item(2, domain.ItemTypeFound, domain.CategoryOther, "red bag", 2)

	assert.Empty(t, engine.FindPotentialMatches(context.Background(), lost, []domain.Item{found}))
}

func TestFindPotentialMatchesEmptyCandidates(t *testing.T) {
	engine := NewEngine(nil, nil)
	matches := engine.FindPotentialMatches(context.Background(), item(1, domain.ItemTypeLost, "x", "y", 1), nil)

	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestFindPotentialMatchesDoesNotMutateInputs(t *testing.T) {
	engine := NewEngine(&recordingNotifier{}, nil)
	lost := item(1, domain.ItemTypeLost, domain.CategoryElectronics, "Clé USB SanDisk 32GB", 1)
	candidates := []domain.Item{
		item(2, domain.ItemTypeFound, domain.CategoryElectronics, "Clé USB SanDisk 32GB", 2),
		item(3, domain.ItemTypeFound, domain.CategoryElectronics, "Calculatrice scientifique", 3),
	}
	before := append([]domain.Item(nil), candidates...)

	engine.FindPotentialMatches(context.Background(), lost, candidates)

	assert.Equal(t, before, candidates)
	assert.Equal(t, "Clé USB SanDisk 32GB", lost.Description)
}

func TestFindPotentialMatchesSurvivesNotifierFailure(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("boom")}
	engine := NewEngine(notifier, nil)
	lost := item(1, domain.ItemTypeLost, domain.CategoryElectronics, "AirPods Pro", 1)
	candidates := []domain.Item{
		item(2, domain.ItemTypeFound, domain.CategoryElectronics, "AirPods Pro", 2),
		item(3, domain.ItemTypeFound, domain.CategoryElectronics, "airpods pro", 3),
	}

	matches := engine.FindPotentialMatches(context.Background(), lost, candidates)

	assert.Len(t, matches, 2)
	assert.Len(t, notifier.calls, 2)
}

func TestMatchDoesNotNotify(t *testing.T) {
	notifier := &recordingNotifier{}
	engine := NewEngine(notifier, nil)
	lost := item(1, domain.ItemTypeLost, "electronics", "iphone noir coque bleue", 2)
	found := item(2, domain.ItemTypeFound, "electronics", "iphone noir coque bleue", 3)

	assert.Len(t, engine.Match(lost, []domain.Item{found}), 1)
	assert.Empty(t, notifier.calls)
}
