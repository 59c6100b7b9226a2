package services

import "errors"

// Sentinel errors returned by the engine services. Controllers map these to
// HTTP statuses; nothing here carries transport concerns.
var (
	// ErrUserNotFound means the triggering user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrReferrerNotFound means no user owns the supplied referral code.
	ErrReferrerNotFound = errors.New("referral code not found")
	// ErrAlreadyTriggered means the idempotency flag for this event was
	// already set; an expected no-op outcome, not a failure.
	ErrAlreadyTriggered = errors.New("reward already triggered for this event")
	// ErrInvalidEventType means the event type is outside the closed enum.
	ErrInvalidEventType = errors.New("invalid event type")
	// ErrCycleDetected means an edge insertion would close a referral loop.
	ErrCycleDetected = errors.New("cycle detected in referral chain")
	// ErrDuplicateReferee means the referee already has a direct referrer.
	ErrDuplicateReferee = errors.New("referee already has a referrer")
	// ErrSelfReferral means referrer and referee are the same user.
	ErrSelfReferral = errors.New("users cannot refer themselves")
	// ErrFraudBlocked means the fraud detector hard-blocked the event.
	ErrFraudBlocked = errors.New("blocked by fraud detector")
	// ErrFraudCheckUnavailable means fraud evidence could not be read. The
	// engine fails closed on this.
	ErrFraudCheckUnavailable = errors.New("fraud evidence unavailable")
	// ErrInvalidRate means a rebate rate fell outside [0, 1].
	ErrInvalidRate = errors.New("rebate rate outside [0,1]")
)
