package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	fxmodules "bracket-elo/internal/fx"
	"bracket-elo/internal/service"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var CLI struct {
	Debug bool `help:"Enable debug logging."`

	Events struct {
		Slug string `arg:"" help:"Tournament slug, e.g. tournament/friday-frays-12 or friday-frays-12."`
	} `cmd:"" help:"List the events of a tournament."`

	Ingest struct {
		EventIDs []int64 `arg:"" name:"event-id" help:"start.gg event ids to ingest, in order."`
	} `cmd:"" help:"Rate an event's completed sets and record them in the ledger."`

	Leaderboard struct {
		Namespace string `arg:"" optional:"" help:"Game title or namespace; overall when omitted."`
		Limit     int    `short:"n" default:"50" help:"Number of players to show."`
	} `cmd:"" help:"Show ranked players."`

	History struct {
		GlobalID int64 `arg:"" name:"global-id" help:"start.gg user id."`
		Limit    int   `short:"n" default:"25" help:"Number of sets to show."`
	} `cmd:"" help:"Show a player's most recent rated sets."`

	Namespaces struct {
	} `cmd:"" help:"List rating namespaces."`
}

type deps struct {
	DB          *sql.DB
	Ingest      *service.IngestService
	Leaderboard *service.LeaderboardService
}

func writeError(err error) int {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	return 1
}

func main() {
	os.Exit(execute())
}

func execute() int {
	kctx := kong.Parse(&CLI,
		kong.Name("elo"),
		kong.Description("Elo ratings and set ledger for start.gg events"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	var d deps
	app := fx.New(
		fx.NopLogger,
		fxmodules.Core,
		fx.Decorate(func(l zerolog.Logger) zerolog.Logger {
			return l.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		}),
		fx.Populate(&d.DB, &d.Ingest, &d.Leaderboard),
	)
	if err := app.Err(); err != nil {
		return writeError(err)
	}
	defer d.DB.Close()

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, kctx.Command(), d, os.Stdout); err != nil {
		return writeError(err)
	}
	return 0
}

func run(ctx context.Context, command string, d deps, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch command {
	case "events <slug>":
		events, err := d.Ingest.ListTournamentEvents(ctx, CLI.Events.Slug)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "EVENT ID\tGAME\tEVENT")
		for _, e := range events {
			fmt.Fprintf(w, "%d\t%s\t%s\n", e.EventID, e.GameName, e.EventName)
		}

	case "ingest <event-id>":
		fmt.Fprintln(w, "EVENT ID\tNAMESPACE\tSETS\tFORFEITS\tWINNER")
		for _, id := range CLI.Ingest.EventIDs {
			event, err := d.Ingest.IngestEvent(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n", event.EventID, event.Namespace, event.MatchCount, event.ForfeitCount, event.WinnerGlobalID)
		}

	case "leaderboard", "leaderboard <namespace>":
		players, err := d.Leaderboard.GetLeaderboard(ctx, CLI.Leaderboard.Namespace, CLI.Leaderboard.Limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "RANK\tPLAYER\tRATING\tGAMES\tW-L\tEVENTS\tWON")
		for _, p := range players {
			fmt.Fprintf(w, "%d\t%s\t%.1f\t%d\t%d-%d\t%d\t%d\n",
				p.Rank, p.Name, p.Rating, p.GamesPlayed, p.Wins, p.Losses, p.TournamentsPlayed, p.TournamentsWon)
		}

	case "history <global-id>":
		entries, err := d.Leaderboard.GetPlayerHistory(ctx, CLI.History.GlobalID, CLI.History.Limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "TIME\tTOURNAMENT\tPLAYER ONE\tSCORE\tPLAYER TWO\tDELTA")
		for _, e := range entries {
			delta := e.PlayerOneDelta
			if e.PlayerTwoGlobalID == CLI.History.GlobalID {
				delta = e.PlayerTwoDelta
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d-%d\t%s\t%+.1f\n",
				e.SetTime, e.TournamentName, e.PlayerOneName, e.PlayerOneScore, e.PlayerTwoScore, e.PlayerTwoName, delta)
		}

	case "namespaces":
		namespaces, err := d.Leaderboard.ListNamespaces(ctx)
		if err != nil {
			return err
		}
		for _, ns := range namespaces {
			fmt.Fprintln(w, ns)
		}

	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}
