package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"grailify/internal/chart"
	"grailify/internal/domain"
	"grailify/internal/provider"
	"grailify/internal/service"

	tele "gopkg.in/telebot.v3"
)

const trendingLimit = 5

// ItemSource is the part of the item service the bot answers from.
type ItemSource interface {
	PriceChart(ctx context.Context, id int, tf domain.Timeframe) (*service.ItemView, error)
	Trending(ctx context.Context) (*domain.TrendingResponse, error)
}

var newBot = tele.NewBot

// StartTelegramBot runs the bot until ctx is cancelled. It does nothing when
// token is empty.
func StartTelegramBot(ctx context.Context, token string, items ItemSource) error {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	b, err := newBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return fmt.Errorf("create Telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send(pingReply())
	})
	b.Handle("/item", func(c tele.Context) error {
		return c.Send(itemReply(ctx, items, c.Args()))
	})
	b.Handle("/trending", func(c tele.Context) error {
		return c.Send(trendingReply(ctx, items))
	})

	log.Println("Telegram bot started")
	go b.Start()
	go func() {
		<-ctx.Done()
		b.Stop()
	}()
	return nil
}

func pingReply() string {
	return "pong"
}

func usage() string {
	tfs := make([]string, len(domain.SupportedTimeframes))
	for i, tf := range domain.SupportedTimeframes {
		tfs[i] = string(tf)
	}
	return "Usage: /item <id> [timeframe]\nTimeframes: " + strings.Join(tfs, ", ")
}

func itemReply(ctx context.Context, items ItemSource, args []string) string {
	if len(args) == 0 {
		return usage()
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return fmt.Sprintf("Invalid item id: %s\n%s", args[0], usage())
	}
	tf := domain.DefaultTimeframe
	if len(args) > 1 {
		if tf, err = domain.ParseTimeframe(args[1]); err != nil {
			return fmt.Sprintf("Unknown timeframe: %s\n%s", args[1], usage())
		}
	}

	view, err := items.PriceChart(ctx, id, tf)
	if errors.Is(err, provider.ErrNotFound) {
		return fmt.Sprintf("Item %d not found", id)
	}
	if err != nil {
		return fmt.Sprintf("Error fetching item %d: %v", id, err)
	}
	return formatItem(view)
}

func formatItem(view *service.ItemView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", view.Item.Name, view.Item.Brand)
	fmt.Fprintf(&b, "Timeframe: %s\n", view.Timeframe)

	st := view.Stats
	if st.LastSale != nil {
		fmt.Fprintf(&b, "Last sale: %s\n", chart.FormatPrice(*st.LastSale))
	} else {
		b.WriteString("Last sale: --\n")
	}
	if st.Low != nil && st.High != nil {
		fmt.Fprintf(&b, "Range: %s - %s\n", chart.FormatPrice(*st.Low), chart.FormatPrice(*st.High))
	}
	fmt.Fprintf(&b, "Trades: %d", st.Trades)
	if st.Volatility != nil {
		fmt.Fprintf(&b, "\nVolatility: %.1f%%", *st.Volatility)
	}
	if view.Chart.Insufficient {
		b.WriteString("\n" + chart.Placeholder)
	}
	return b.String()
}

func trendingReply(ctx context.Context, items ItemSource) string {
	trending, err := items.Trending(ctx)
	if err != nil {
		return fmt.Sprintf("Error fetching trending items: %v", err)
	}

	var b strings.Builder
	writeGroup := func(title string, group []domain.Item) {
		if len(group) == 0 {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(title + "\n")
		for i, it := range group {
			if i == trendingLimit {
				break
			}
			fmt.Fprintf(&b, "%d. %s (/item %d)\n", i+1, it.Name, it.ID)
		}
	}
	writeGroup("Trending sneakers", trending.TrendingSneakers)
	writeGroup("Trending apparel & accessories", trending.TrendingApparelAccessories)
	if b.Len() == 0 {
		return "Nothing is trending right now"
	}
	return strings.TrimRight(b.String(), "\n")
}
