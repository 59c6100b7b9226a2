package services

import (
	"fmt"
	"net"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/config"
	"github.com/luckymart/LuckyMart/models"
)

// FraudDetector scores a proposed registration or reward event against the
// accumulated evidence log. It only reads; the orchestrator decides what to
// persist and what to do with the verdict.
type FraudDetector struct {
	db       *gorm.DB
	graph    *ReferralGraph
	settings config.FraudSettings
}

// NewFraudDetector wires a detector over the given storage handle.
func NewFraudDetector(db *gorm.DB, settings config.FraudSettings) *FraudDetector {
	return &FraudDetector{
		db:       db,
		graph:    NewReferralGraph(db),
		settings: settings,
	}
}

// FraudInput describes the event under evaluation.
type FraudInput struct {
	UserID    string
	DeviceID  string
	IPAddress string
	CheckType string
}

// FraudDecision is the detector's verdict. Review marks events that passed
// but scored above the review threshold; they are allowed and queued for
// asynchronous inspection.
type FraudDecision struct {
	Allowed   bool     `json:"allowed"`
	RiskScore int      `json:"risk_score"`
	Reasons   []string `json:"reasons"`
	Review    bool     `json:"review"`
}

// Evaluate combines the weighted signals into a single decision. A circular
// referral is a hard block regardless of the other signals. Any storage
// failure surfaces as ErrFraudCheckUnavailable; the engine never pays on
// uncertain fraud status.
func (d *FraudDetector) Evaluate(input FraudInput) (*FraudDecision, error) {
	cycled, err := d.graph.HasCycleFrom(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFraudCheckUnavailable, err)
	}
	if cycled {
		return &FraudDecision{
			Allowed:   false,
			RiskScore: 100,
			Reasons:   []string{models.FraudReasonCircularReferral},
		}, nil
	}

	score := 0
	var reasons []string

	if input.DeviceID != "" {
		var deviceUsers int64
		if err := d.db.Model(&models.User{}).
			Where("device_fingerprint = ?", input.DeviceID).
			Count(&deviceUsers).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFraudCheckUnavailable, err)
		}
		if deviceUsers >= int64(d.settings.DeviceUserLimit) {
			score += d.settings.DeviceReuseWeight
			reasons = append(reasons, models.FraudReasonDeviceLimitExceeded)
		}
	}

	if input.IPAddress != "" {
		since := time.Now().Add(-d.settings.IPVelocityWindow)
		var ipEvents int64
		if err := d.db.Model(&models.FraudCheck{}).
			Where("ip_address = ? AND checked_at >= ?", input.IPAddress, since).
			Count(&ipEvents).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFraudCheckUnavailable, err)
		}
		if ipEvents >= int64(d.settings.IPVelocityLimit) {
			score += d.settings.IPVelocityWeight
			reasons = append(reasons, models.FraudReasonIPAnomaly)
		}

		if isSuspectIP(input.IPAddress) {
			score += d.settings.ProxyIPWeight
			reasons = append(reasons, models.FraudReasonProxyIP)
		}
	}

	if input.CheckType == models.FraudCheckRegistration {
		since := time.Now().Add(-d.settings.BatchRegistrationWindow)
		var registrations int64
		if err := d.db.Model(&models.FraudCheck{}).
			Where("check_type = ? AND checked_at >= ?", models.FraudCheckRegistration, since).
			Count(&registrations).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFraudCheckUnavailable, err)
		}
		if registrations >= int64(d.settings.BatchRegistrationLimit) {
			score += d.settings.BatchRegistrationWeight
			reasons = append(reasons, models.FraudReasonBatchRegistration)
		}
	}

	decision := &FraudDecision{
		Allowed:   score < d.settings.BlockThreshold,
		RiskScore: score,
		Reasons:   reasons,
	}
	decision.Review = decision.Allowed && score >= d.settings.ReviewThreshold
	return decision, nil
}

// Record appends the attempt to the evidence log. Blocked attempts are
// recorded too; they feed future velocity scoring.
func (d *FraudDetector) Record(tx *gorm.DB, input FraudInput, decision *FraudDecision) error {
	check := models.FraudCheck{
		UserID:    input.UserID,
		DeviceID:  input.DeviceID,
		IPAddress: input.IPAddress,
		CheckType: input.CheckType,
		IsFlagged: !decision.Allowed || decision.Review,
		RiskScore: decision.RiskScore,
		Reasons:   strings.Join(decision.Reasons, ","),
		CheckedAt: time.Now(),
	}
	return tx.Create(&check).Error
}

// Documentation ranges (RFC 5737) show up in farming runs that spoof
// addresses; treat them like datacenter space.
var suspectCIDRs = []string{
	"198.51.100.0/24",
	"203.0.113.0/24",
	"100.64.0.0/10",
}

func isSuspectIP(address string) bool {
	ip := net.ParseIP(address)
	if ip == nil {
		return false
	}
	if ip.IsPrivate() || ip.IsLoopback() || ip.IsUnspecified() {
		return true
	}
	for _, cidr := range suspectCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err == nil && network.Contains(ip) {
			return true
		}
	}
	return false
}
