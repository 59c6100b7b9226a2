package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/utils"
)

// NotificationPayload is the outbound message contract. Delivery is
// fire-and-forget; the engine never awaits confirmation.
type NotificationPayload struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
	Format string `json:"format"`
}

// Notifier sends Telegram messages from a queue decoupled from the
// orchestrator's commit path. A full queue drops the message rather than
// blocking a reward commit.
type Notifier struct {
	botToken string
	queue    chan NotificationPayload
	client   *http.Client
	done     chan struct{}
}

// NewNotifier creates a notifier. An empty bot token disables sending but
// keeps the queue draining so callers need no special casing.
func NewNotifier(botToken string) *Notifier {
	return &Notifier{
		botToken: botToken,
		queue:    make(chan NotificationPayload, 256),
		client:   &http.Client{Timeout: 10 * time.Second},
		done:     make(chan struct{}),
	}
}

// Start launches the delivery worker.
func (n *Notifier) Start() {
	go func() {
		defer close(n.done)
		for payload := range n.queue {
			if err := n.send(payload); err != nil {
				utils.LogError("Notification delivery failed for chat %s: %v", payload.ChatID, err)
			}
		}
	}()
}

// Stop closes the queue and waits for the worker to drain it.
func (n *Notifier) Stop() {
	close(n.queue)
	<-n.done
}

// Enqueue hands a payload to the worker without ever blocking.
func (n *Notifier) Enqueue(payload NotificationPayload) {
	select {
	case n.queue <- payload:
	default:
		utils.LogError("Notification queue full, dropping message for chat %s", payload.ChatID)
	}
}

func (n *Notifier) send(payload NotificationPayload) error {
	if n.botToken == "" || payload.ChatID == "" {
		return nil
	}

	format := payload.Format
	if format == "" {
		format = "HTML"
	}
	body, err := json.Marshal(map[string]string{
		"chat_id":    payload.ChatID,
		"text":       payload.Text,
		"parse_mode": format,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	resp, err := n.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}

// NotifyRewards queues one message per payee. Payees without a Telegram chat
// are skipped silently.
func (n *Notifier) NotifyRewards(db *gorm.DB, lines []RewardLine) {
	for _, line := range lines {
		var user models.User
		if err := db.Select("telegram_id", "first_name").Where("id = ?", line.UserID).First(&user).Error; err != nil {
			utils.LogDebug("Skipping reward notification for %s: %v", line.UserID, err)
			continue
		}
		text := fmt.Sprintf("🎁 You received a reward of <b>%s</b> coins!", line.Amount.Format(1))
		if line.ReferralLevel > 0 {
			text = fmt.Sprintf("🎁 Your level-%d invitee earned you <b>%s</b> coins!", line.ReferralLevel, line.Amount.Format(1))
		}
		n.Enqueue(NotificationPayload{ChatID: user.TelegramID, Text: text, Format: "HTML"})
	}
}
