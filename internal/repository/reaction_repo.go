package repository

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
)

// ReactionRepository handles reaction data operations
type ReactionRepository interface {
	Toggle(messageID, reactorID uint64, glyph string) (domain.ToggleAction, error)
	Summary(messageID uint64) ([]domain.ReactionSummaryItem, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Toggle flips the (message, reactor, glyph) triple in one atomic
// check-and-flip: delete it if present, insert it otherwise. The parent
// message row is locked first so toggles on the same triple serialize
// instead of interleaving into an inconsistent state.
func (r *reactionRepository) Toggle(messageID, reactorID uint64, glyph string) (domain.ToggleAction, error) {
	var action domain.ToggleAction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var msg domain.Message
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&msg, messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrMessageNotFound
			}
			return err
		}

		res := tx.Where("message_id = ? AND reactor_id = ? AND glyph = ?",
			messageID, reactorID, glyph).
			Delete(&domain.Reaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			action = domain.ToggleRemoved
			return nil
		}

		reaction := &domain.Reaction{
			MessageID: messageID,
			ReactorID: reactorID,
			Glyph:     glyph,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(reaction).Error; err != nil {
			return err
		}
		action = domain.ToggleAdded
		return nil
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// Summary aggregates a message's reactions by glyph: count descending,
// glyph ascending on ties, reactor ids in reaction order. The ordering is
// deterministic so the UI (and the tests) can rely on it.
func (r *reactionRepository) Summary(messageID uint64) ([]domain.ReactionSummaryItem, error) {
	var reactions []domain.Reaction
	if err := r.db.Where("message_id = ?", messageID).
		Order("id ASC").
		Find(&reactions).Error; err != nil {
		return nil, err
	}
	return SummarizeReactions(reactions), nil
}

// SummarizeReactions groups reactions into the deterministic summary order
func SummarizeReactions(reactions []domain.Reaction) []domain.ReactionSummaryItem {
	byGlyph := make(map[string][]uint64)
	var glyphs []string
	for _, re := range reactions {
		if _, seen := byGlyph[re.Glyph]; !seen {
			glyphs = append(glyphs, re.Glyph)
		}
		byGlyph[re.Glyph] = append(byGlyph[re.Glyph], re.ReactorID)
	}

	items := make([]domain.ReactionSummaryItem, 0, len(glyphs))
	for _, g := range glyphs {
		items = append(items, domain.ReactionSummaryItem{
			Glyph:      g,
			Count:      len(byGlyph[g]),
			ReactorIDs: byGlyph[g],
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Glyph < items[j].Glyph
	})
	return items
}
