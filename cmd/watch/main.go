// watch follows the booking feed of a traveldesk server from the terminal.
//
// It keeps a local copy of the bookings and the caller's notifications,
// applies realtime events as they arrive and re-fetches everything on
// reconnect or after one of its own mutations.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"traveldesk-backend/internal/realtime"
	"traveldesk-backend/internal/reconcile"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		baseURL     string
		token       string
		rooms       []string
		requestEdit string
		reason      string
		markAllRead bool
	)

	flagSet := pflag.NewFlagSet("watch", pflag.ContinueOnError)
	flagSet.StringVar(&baseURL, "url", envOr("TRAVELDESK_URL", "http://localhost:8080"), "API base URL")
	flagSet.StringVar(&token, "token", os.Getenv("TRAVELDESK_TOKEN"), "bearer token (default $TRAVELDESK_TOKEN)")
	flagSet.StringSliceVar(&rooms, "booking", nil, "booking id to follow in detail (repeatable)")
	flagSet.StringVar(&requestEdit, "request-edit", "", "request edit access to this booking before watching")
	flagSet.StringVar(&reason, "reason", "", "reason sent with --request-edit")
	flagSet.BoolVar(&markAllRead, "mark-all-read", false, "mark every notification read before watching")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintln(os.Stderr, "Usage: watch [flags]")
		flagSet.SetOutput(os.Stderr)
		flagSet.PrintDefaults()
		return nil
	}
	if token == "" {
		return errors.New("a token is required (--token or TRAVELDESK_TOKEN)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := reconcile.NewAPIClient(baseURL, token, nil)
	if err != nil {
		return err
	}
	me, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}
	log.Printf("Watching %s as %s (%s)", baseURL, me.Name, me.UserID)

	cache := reconcile.NewCache(me.UserID)
	stream, err := reconcile.NewStream(baseURL, token, cache)
	if err != nil {
		return err
	}
	for _, raw := range rooms {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid booking id %q", raw)
		}
		stream.Watch(id)
	}
	stream.OnEvent = func(m realtime.Message) { logEvent(cache, m) }

	if requestEdit != "" {
		id, err := uuid.Parse(requestEdit)
		if err != nil {
			return fmt.Errorf("invalid booking id %q", requestEdit)
		}
		req, err := client.RequestEdit(ctx, id, reason)
		if err != nil {
			return fmt.Errorf("request edit: %w", err)
		}
		log.Printf("Edit request %s is %s", req.ID, req.Status)
		stream.Watch(id)
		cache.SignalChanged()
	}
	if markAllRead {
		if err := client.MarkAllRead(ctx); err != nil {
			return fmt.Errorf("mark all read: %w", err)
		}
		cache.SignalChanged()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return stream.Run(gctx) })
	g.Go(func() error {
		return cache.Run(gctx, client, func() {
			log.Printf("Synced: %d bookings, %d unread notifications", len(cache.Bookings()), cache.Unread())
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func logEvent(cache *reconcile.Cache, m realtime.Message) {
	switch m.Event {
	case realtime.EventNewNotification:
		if n := cache.Notifications(); len(n) > 0 {
			log.Printf("[%s] %s: %s", m.Topic, n[0].Title, n[0].Message)
			return
		}
	case realtime.EventEditPermissionGranted:
		log.Printf("[%s] edit permission granted", m.Topic)
		return
	}
	log.Printf("[%s] %s", m.Topic, m.Event)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
