// Command ideas is a small terminal front-end over the feedback SDK. It is
// both the smoke-test harness for the SDK's wiring (identity persistence,
// client, controllers, tracing) and a reference for embedding applications.
//
// Usage:
//
//	ideas [flags] list [status]
//	ideas [flags] submit <title> [body]
//	ideas [flags] show <idea-id>
//	ideas [flags] vote <idea-id>
//	ideas [flags] comment <idea-id> <body>
//
// Configuration comes from the environment (see package config), optionally
// via a .env file. The -fake flag runs against an embedded in-memory service
// instead, so the tool works without any backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-feedback-sdk/client"
	"github.com/tbourn/go-feedback-sdk/config"
	"github.com/tbourn/go-feedback-sdk/controller"
	"github.com/tbourn/go-feedback-sdk/domain"
	"github.com/tbourn/go-feedback-sdk/identity"
	"github.com/tbourn/go-feedback-sdk/ideastest"
	"github.com/tbourn/go-feedback-sdk/internal/sysutil"
	"github.com/tbourn/go-feedback-sdk/observability"
)

const version = "0.1.0"

// fakeAPIKey authenticates against the embedded service in -fake mode.
const fakeAPIKey = "local-dev-key"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: ideas [flags] <command> [args]

Commands:
  list [status]             list approved ideas, optionally filtered by status
  submit <title> [body]     submit a new idea
  show <idea-id>            show one idea with its comments
  vote <idea-id>            up-vote an idea
  comment <idea-id> <body>  comment on an idea

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	fake := flag.Bool("fake", false, "run against an embedded in-memory service")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	if *fake {
		baseURL := startFakeService()
		os.Setenv("FEEDBACK_BASE_URL", baseURL)
		os.Setenv("FEEDBACK_API_KEY", fakeAPIKey)
		if os.Getenv("DB_PATH") == "" {
			os.Setenv("DB_PATH", "file:ideas_fake?mode=memory&cache=shared")
		}
	}

	cfg := config.MustLoad()
	sysutil.ConfigureLogging(cfg.LogLevel, cfg.LogPretty)

	ctx := context.Background()

	shutdown, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	kv, err := identity.NewSQLiteKV(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("identity store unavailable")
	}

	var limiter *rate.Limiter
	if cfg.RateRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst)
	}

	api, err := client.New(ctx, client.Options{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		UserEmail:   cfg.UserEmail,
		UserName:    sysutil.FirstNonEmpty(cfg.UserName, "Anonymous"),
		Identity:    identity.NewStore(kv),
		Timeout:     cfg.Timeout,
		RateLimiter: limiter,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("client init failed")
	}
	log.Debug().Str("user_id", api.UserID()).Msg("identity resolved")

	if err := run(ctx, api, flag.Args()); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func run(ctx context.Context, api *client.Client, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "list":
		return cmdList(ctx, api, rest)
	case "submit":
		return cmdSubmit(ctx, api, rest)
	case "show":
		return cmdShow(ctx, api, rest)
	case "vote":
		return cmdVote(ctx, api, rest)
	case "comment":
		return cmdComment(ctx, api, rest)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdList(ctx context.Context, api *client.Client, args []string) error {
	lc := controller.NewListController(api)

	if len(args) > 0 {
		status := domain.Status(args[0])
		if !status.Valid() {
			return fmt.Errorf("unknown status %q (want one of %v)", args[0], domain.Statuses)
		}
		lc.SetSelectedStatus(ctx, status)
	} else {
		lc.LoadIdeas(ctx)
	}

	st := lc.State()
	if st.ErrorMessage != "" {
		return fmt.Errorf("%s", st.ErrorMessage)
	}
	if len(st.Ideas) == 0 {
		fmt.Println("No ideas yet.")
		return nil
	}
	for _, idea := range st.Ideas {
		printIdea(idea)
	}
	return nil
}

func cmdSubmit(ctx context.Context, api *client.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("submit needs a title")
	}
	title := args[0]
	var body string
	if len(args) > 1 {
		body = args[1]
	}

	lc := controller.NewListController(api)
	lc.SubmitIdea(ctx, title, body)

	st := lc.State()
	if st.ErrorMessage != "" {
		return fmt.Errorf("%s", st.ErrorMessage)
	}
	if len(st.Ideas) == 0 {
		return fmt.Errorf("submit produced no record")
	}
	fmt.Println("Submitted; your idea is awaiting moderation:")
	printIdea(st.Ideas[0])
	return nil
}

func cmdShow(ctx context.Context, api *client.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("show needs exactly one idea id")
	}

	dc := controller.NewDetailController(api, args[0])
	dc.LoadDetail(ctx)

	st := dc.State()
	if st.ErrorMessage != "" {
		return fmt.Errorf("%s", st.ErrorMessage)
	}
	printDetail(st.Detail)
	return nil
}

func cmdVote(ctx context.Context, api *client.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("vote needs exactly one idea id")
	}

	dc := controller.NewDetailController(api, args[0])
	dc.Vote(ctx)

	st := dc.State()
	if st.ErrorMessage != "" {
		return fmt.Errorf("%s", st.ErrorMessage)
	}
	if st.Detail != nil {
		fmt.Printf("Voted. %q now has %d votes.\n", st.Detail.Title, st.Detail.VoteCount)
	}
	return nil
}

func cmdComment(ctx context.Context, api *client.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("comment needs an idea id and a body")
	}

	dc := controller.NewDetailController(api, args[0])
	dc.AddComment(ctx, args[1])

	st := dc.State()
	if st.ErrorMessage != "" {
		return fmt.Errorf("%s", st.ErrorMessage)
	}
	printDetail(st.Detail)
	return nil
}

func printIdea(idea domain.Idea) {
	fmt.Printf("%s  %s %s · %s %s · %d votes · %d comments\n",
		idea.ID,
		domain.StatusIcon(idea.Status), domain.StatusLabel(idea.Status),
		domain.CategoryIcon(idea.Category), domain.CategoryLabel(idea.Category),
		idea.VoteCount, idea.CommentCount,
	)
	fmt.Printf("    %s\n", idea.Title)
}

func printDetail(detail *domain.IdeaDetail) {
	if detail == nil {
		fmt.Println("Nothing loaded.")
		return
	}
	printIdea(detail.Idea)
	if detail.Body != "" {
		fmt.Printf("    %s\n", detail.Body)
	}
	if len(detail.Comments) == 0 {
		fmt.Println("    (no comments)")
		return
	}
	for _, c := range detail.Comments {
		fmt.Printf("    %s: %s\n", c.CreatedBy, c.Body)
	}
}

// startFakeService boots the in-memory ideas service on a loopback port and
// returns its base URL. The store is seeded so every command has something
// to act on.
func startFakeService() string {
	store := ideastest.NewStore()
	seedFakeStore(store)

	srv := ideastest.New(fakeAPIKey, store)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Fatal().Err(err).Msg("fake service listen failed")
	}
	go func() {
		if err := http.Serve(ln, srv.Handler()); err != nil {
			log.Warn().Err(err).Msg("fake service stopped")
		}
	}()
	return "http://" + ln.Addr().String()
}

func seedFakeStore(store *ideastest.Store) {
	ideas := []domain.Idea{
		{
			ID: "idea-dark-mode", Title: "Dark mode",
			Body:   "The dashboard is blinding at night.",
			Status: domain.StatusInProgress, Category: domain.CategoryUIUX,
			IsApproved: true, CreatedBy: "Grace",
		},
		{
			ID: "idea-csv-export", Title: "Export reports as CSV",
			Status: domain.StatusPending, Category: domain.CategoryFeature,
			IsApproved: true, CreatedBy: "Linus",
		},
		{
			ID: "idea-slack", Title: "Slack integration",
			Status: domain.StatusCompleted, Category: domain.CategoryIntegration,
			IsApproved: true, CreatedBy: "Ada",
		},
	}
	for _, idea := range ideas {
		store.Seed(idea)
	}
	store.AddComment("idea-dark-mode", "Yes please, my eyes hurt.", "Linus")
}
