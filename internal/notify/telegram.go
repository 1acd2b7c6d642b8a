package notify

import (
	"context"
	"fmt"
	"io"
	"strings"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/config"
	"tokenpulse/pkg/httputil"
	"tokenpulse/pkg/logger"
)

// TelegramNotifier posts emitted signals to a Telegram chat. It is a
// fire-and-forget sink: delivery failures are surfaced as errors for
// the caller to log, never retried here beyond the HTTP client's own
// retry policy.
type TelegramNotifier struct {
	http     *httputil.Client
	botToken string
	chatID   string
	logger   *logger.Logger
}

// NewTelegramNotifier creates the Telegram sink.
func NewTelegramNotifier(httpClient *httputil.Client, cfg config.TelegramConfig, log *logger.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		http:     httpClient,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		logger:   log,
	}
}

// Notify sends one signal message.
func (n *TelegramNotifier) Notify(ctx context.Context, sig contracts.EmittedSignal) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)

	payload := map[string]interface{}{
		"chat_id":    n.chatID,
		"text":       formatSignal(sig),
		"parse_mode": "HTML",
	}

	resp, err := n.http.PostJSON(ctx, url, payload)
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != 200 {
		return fmt.Errorf("telegram send failed: status %d", resp.StatusCode)
	}

	return nil
}

// formatSignal renders the operator-facing message.
func formatSignal(sig contracts.EmittedSignal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>%s</b> (%s)\n", sig.Symbol, sig.Name)
	fmt.Fprintf(&b, "Mint: <code>%s</code>\n", sig.Mint)
	fmt.Fprintf(&b, "Momentum %.1f | Quality %.1f | Risk %.0f\n", sig.MomentumScore, sig.QualityScore, sig.RiskScore)
	fmt.Fprintf(&b, "Price $%.6f | MC $%.0f | Liq $%.0f\n", sig.PriceUSD, sig.MarketCap, sig.LiquidityUSD)
	fmt.Fprintf(&b, "1h %+.1f%% | Vol24h $%.0f\n", sig.PriceChange1h, sig.Volume24h)
	if sig.Path == contracts.PathRelaxed {
		b.WriteString("Path: relaxed\n")
	}
	if len(sig.Provenance) > 0 {
		fmt.Fprintf(&b, "Via: %s", strings.Join(sig.Provenance, ", "))
	}

	return b.String()
}
