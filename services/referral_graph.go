package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/utils"
)

// ReferralGraph answers ancestry questions over the referrer -> referee edge
// set. Nodes are addressed by user ID; each node has at most one parent
// (the direct referrer), so every walk follows a single pointer chain.
type ReferralGraph struct {
	db *gorm.DB
}

// NewReferralGraph creates a graph view over the given database handle.
func NewReferralGraph(db *gorm.DB) *ReferralGraph {
	return &ReferralGraph{db: db}
}

// Ancestor is one entry of a referrer chain. Level 1 is the direct referrer.
type Ancestor struct {
	UserID string `json:"user_id"`
	Level  int    `json:"level"`
}

// AddEdge links referee to referrer at level 1. It refuses self-referrals,
// a second referrer for the same referee, and any edge that would close a
// loop. Indirect levels are derived on demand, never stored.
func (g *ReferralGraph) AddEdge(referrerID, refereeID string) error {
	if referrerID == refereeID {
		return ErrSelfReferral
	}

	var existing int64
	if err := g.db.Model(&models.ReferralRelationship{}).
		Where("referee_user_id = ?", refereeID).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return ErrDuplicateReferee
	}

	cycle, err := g.WouldCreateCycle(referrerID, refereeID)
	if err != nil {
		return err
	}
	if cycle {
		return ErrCycleDetected
	}

	edge := models.ReferralRelationship{
		ReferrerUserID: referrerID,
		RefereeUserID:  refereeID,
		ReferralLevel:  1,
	}
	if err := g.db.Create(&edge).Error; err != nil {
		// The unique index on referee_user_id closes the race between two
		// concurrent binds for the same referee.
		var recheck int64
		if countErr := g.db.Model(&models.ReferralRelationship{}).
			Where("referee_user_id = ?", refereeID).
			Count(&recheck).Error; countErr == nil && recheck > 0 {
			return ErrDuplicateReferee
		}
		return err
	}
	return nil
}

// AncestorsOf walks the referrer chain of userID up to maxDepth levels. If a
// node repeats, the walk stops and the partial chain is returned with the
// cycle flag set instead of looping forever.
func (g *ReferralGraph) AncestorsOf(userID string, maxDepth int) ([]Ancestor, bool, error) {
	if maxDepth <= 0 {
		maxDepth = models.MaxRewardDepth
	}
	if maxDepth > models.MaxCycleProbeDepth {
		maxDepth = models.MaxCycleProbeDepth
	}

	var chain []Ancestor
	visited := map[string]bool{userID: true}
	current := userID

	for level := 1; level <= maxDepth; level++ {
		var edge models.ReferralRelationship
		err := g.db.Where("referee_user_id = ?", current).First(&edge).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chain, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		if visited[edge.ReferrerUserID] {
			utils.LogError("Referral chain revisited node %s starting from %s", edge.ReferrerUserID, userID)
			return chain, true, nil
		}
		visited[edge.ReferrerUserID] = true
		chain = append(chain, Ancestor{UserID: edge.ReferrerUserID, Level: level})
		current = edge.ReferrerUserID
	}
	return chain, false, nil
}

// WouldCreateCycle reports whether the edge referrer -> referee would close a
// loop, i.e. whether referee is already a (possibly transitive) ancestor of
// referrer. The walk is bounded so corrupt data cannot hang the check.
func (g *ReferralGraph) WouldCreateCycle(referrerID, refereeID string) (bool, error) {
	ancestors, cycled, err := g.AncestorsOf(referrerID, models.MaxCycleProbeDepth)
	if err != nil {
		return false, err
	}
	if cycled {
		// Existing corruption upstream of the referrer; refuse the edge.
		return true, nil
	}
	for _, ancestor := range ancestors {
		if ancestor.UserID == refereeID {
			return true, nil
		}
	}
	return false, nil
}

// HasCycleFrom reports whether the chain above userID already contains a
// loop. The fraud detector uses this as a defensive re-check at reward time.
func (g *ReferralGraph) HasCycleFrom(userID string) (bool, error) {
	_, cycled, err := g.AncestorsOf(userID, models.MaxCycleProbeDepth)
	return cycled, err
}
