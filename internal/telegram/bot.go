// Package telegram exposes the app over a Telegram webhook bot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"meal-insights/internal/analytics"
	"meal-insights/internal/app"
	"meal-insights/internal/clipper"
	"meal-insights/internal/config"
	"meal-insights/internal/grocery"
	"meal-insights/internal/leaderboard"
	"meal-insights/internal/logger"
	"meal-insights/internal/planner"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	requestTimeout = 2 * time.Minute
	usageDays      = 7
)

// Service is the part of the app the bot drives.
type Service interface {
	Sync(ctx context.Context) (app.SyncResult, error)
	GroceryList(ctx context.Context, planID string) (*planner.MealPlan, grocery.List, error)
	LeaderboardFor(ctx context.Context, userID, metric, window string) (leaderboard.Metric, leaderboard.Window, []leaderboard.Entry, error)
	Analytics(ctx context.Context) (analytics.Report, error)
	GeneratePlan(ctx context.Context, req planner.Request) (*planner.MealPlan, error)
	ImportMeal(ctx context.Context, url string) (*planner.Meal, error)
	ShouldShowTour(ctx context.Context, userID string) (bool, error)
	Usage(ctx context.Context, days int) (app.Usage, error)
}

// Bot wraps the Telegram API around the app service.
type Bot struct {
	api *tgbotapi.BotAPI
	svc Service
	cfg *config.Config
	log *logger.Logger
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, svc Service, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Info("Authorized on Telegram", "account", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Info("Webhook set", "description", resp.Description)

	return &Bot{api: api, svc: svc, cfg: cfg, log: log}, nil
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.log.Warn("Error parsing update", "error", err)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	if !b.isAllowed(msg.From.ID) {
		b.log.Warn("Unauthorized access attempt", "user_id", msg.From.ID, "username", msg.From.UserName)
		return
	}

	go b.processMessage(msg)
}

func (b *Bot) isAllowed(userID int64) bool {
	return slices.Contains(b.cfg.TelegramAllowedUserIDs, userID)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	// Slow LLM work gets a placeholder that is edited in place
	cmd, _ := splitCommand(msg.Text)
	if cmd == "" {
		status := tgbotapi.NewMessage(msg.Chat.ID, "🧑‍🍳 *Thinking...*")
		status.ParseMode = tgbotapi.ModeMarkdown
		sent, err := b.api.Send(status)
		if err != nil {
			b.log.Error("Failed to send initial reply", "error", err)
			return
		}
		edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sent.MessageID, b.reply(ctx, msg.From.ID, msg.Text))
		edit.ParseMode = tgbotapi.ModeMarkdown
		b.send(edit)
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, b.reply(ctx, msg.From.ID, msg.Text))
	out.ParseMode = tgbotapi.ModeMarkdown
	b.send(out)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Error("Failed to send telegram message", "error", err)
	}
}

// reply computes the Markdown answer to one message from userID.
func (b *Bot) reply(ctx context.Context, userID int64, text string) string {
	uid := strconv.FormatInt(userID, 10)
	cmd, args := splitCommand(text)

	switch cmd {
	case "start":
		show, err := b.svc.ShouldShowTour(ctx, uid)
		if err != nil {
			b.log.Warn("Failed to read preferences", "user_id", uid, "error", err)
		}
		if show {
			return helpText
		}
		return "👋 Welcome back! Send /help to see the commands."
	case "help":
		return helpText
	case "grocery":
		if args == "" {
			return "Usage: /grocery <plan-id>"
		}
		plan, list, err := b.svc.GroceryList(ctx, args)
		if errors.Is(err, planner.ErrPlanNotFound) {
			return fmt.Sprintf("🔍 No plan with id `%s`. Try /sync first.", strings.ReplaceAll(args, "`", "'"))
		}
		if err != nil {
			return b.failure("building grocery list", err)
		}
		return formatGroceryList(plan, list)
	case "leaderboard":
		fields := strings.Fields(args)
		var metricArg, windowArg string
		if len(fields) > 0 {
			metricArg = fields[0]
		}
		if len(fields) > 1 {
			windowArg = fields[1]
		}
		metric, window, entries, err := b.svc.LeaderboardFor(ctx, uid, metricArg, windowArg)
		if err != nil {
			return b.failure("ranking users", err)
		}
		return formatLeaderboard(metric, window, entries)
	case "analytics":
		report, err := b.svc.Analytics(ctx)
		if err != nil {
			return b.failure("building analytics", err)
		}
		return formatAnalytics(report)
	case "sync":
		res, err := b.svc.Sync(ctx)
		if err != nil {
			return b.failure("syncing", err)
		}
		return formatSync(res)
	case "metrics":
		if userID != b.cfg.AdminTelegramID {
			return "⛔ *Access Denied*: Admin only."
		}
		usage, err := b.svc.Usage(ctx, usageDays)
		if err != nil {
			return b.failure("fetching metrics", err)
		}
		return formatUsage(usage)
	case "":
	default:
		return "Unknown command. Send /help to see what I can do."
	}

	if isURL(text) {
		meal, err := b.svc.ImportMeal(ctx, strings.TrimSpace(text))
		if errors.Is(err, clipper.ErrNoRecipe) {
			return "🤷 I couldn't find a recipe on that page."
		}
		if err != nil {
			return b.failure("importing recipe", err)
		}
		return formatMeal(meal)
	}

	plan, err := b.svc.GeneratePlan(ctx, planner.Request{Text: text})
	if err != nil {
		return b.failure("generating plan", err)
	}
	return formatPlan(plan)
}

func (b *Bot) failure(action string, err error) string {
	b.log.Error("Request failed", "action", action, "error", err)
	return formatError(action, err)
}

// splitCommand returns the command name without the slash or @bot suffix,
// and its trimmed arguments. cmd is empty for plain text.
func splitCommand(text string) (cmd, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	cmd, args, _ = strings.Cut(text[1:], " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

func isURL(text string) bool {
	text = strings.TrimSpace(text)
	return strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://")
}
