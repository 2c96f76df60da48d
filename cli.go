package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"nlcal/src-server/handler"
	"nlcal/src-server/ical"
	"nlcal/src-server/metric"
	"nlcal/src-server/model"
	"nlcal/src-server/route"
	"nlcal/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

var errNoText = errors.New("no text provided")

func newApp() *cli.App {
	return &cli.App{
		Name:      "nlcal",
		Usage:     "Turn a sentence into an .ics calendar file.",
		UsageText: `nlcal [options] "every Friday at 7pm for 8 weeks starting the week of Nov 24"`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "reference date `YYYY-MM-DD` (default: today)"},
			&cli.StringFlag{Name: "out", Usage: "output `DIR` (default: $NLCAL_OUTPUT_DIR or .)"},
			&cli.BoolFlag{Name: "no-open", Usage: "don't open the file afterwards"},
			&cli.BoolFlag{Name: "offline", Usage: "parse locally instead of calling the OpenAI API"},
			&cli.IntFlag{Name: "preview", Usage: "print the first `N` occurrences"},
		},
		Action: scheduleAction,
		Commands: []*cli.Command{
			serveCommand(),
			botCommand(),
			historyCommand(),
			inspectCommand(),
		},
	}
}

func newAppState(c *cli.Context) (*utils.AppState, error) {
	config := utils.NewConfig()
	if c.Bool("offline") {
		config.SetOracle(utils.OracleLocal)
	}
	if out := c.String("out"); out != "" {
		config.SetOutputDir(out)
	}
	return utils.NewAppState(c.Context, config)
}

func referenceDate(c *cli.Context) (time.Time, error) {
	dateStr := c.String("date")
	if dateStr == "" {
		return time.Time{}, nil
	}
	date, err := model.ParseDate(dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date: %w", err)
	}
	return date, nil
}

func readText(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	fmt.Fprintln(c.App.ErrWriter, "Enter event description (end with Ctrl+D):")
	raw, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return "", fmt.Errorf("readText: %w", err)
	}
	return string(raw), nil
}

func scheduleAction(c *cli.Context) error {
	text, err := readText(c)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(c.App.ErrWriter, "No text provided")
		return errNoText
	}
	date, err := referenceDate(c)
	if err != nil {
		return err
	}

	as, err := newAppState(c)
	if err != nil {
		return err
	}
	defer as.Close()

	fmt.Fprintf(c.App.ErrWriter, "Parsing event with %s...\n", as.OracleName())
	result, err := handler.Schedule(c.Context, as, text, handler.ScheduleOptions{
		ReferenceDate: date,
		Open:          !c.Bool("no-open"),
		Preview:       c.Int("preview"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "ICS file written to %s\n", result.Path)
	printOccurrences(c.App.Writer, result.Occurrences)
	fmt.Fprintln(c.App.Writer, "Import this ICS file into your calendar if it didn't open automatically.")
	return nil
}

func printOccurrences(w io.Writer, occurrences []time.Time) {
	if len(occurrences) == 0 {
		return
	}
	fmt.Fprintln(w, "Next occurrences:")
	for _, t := range occurrences {
		fmt.Fprintf(w, "  %s\n", t.Format("Mon 2006-01-02 15:04 MST"))
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve POST /events, GET /events and GET /metrics over HTTP.",
		Description: "Global flags such as --offline go before the command name.",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			as, err := newAppState(c)
			if err != nil {
				return err
			}
			defer as.Close()
			metric.WatchDatabase(ctx, as.BunDB, 30*time.Second)

			muxer := http.NewServeMux()
			muxer.Handle("GET /metrics", promhttp.Handler())
			route.Events(muxer, as)

			server := &http.Server{
				Addr:              ":" + as.Config.GetPort(),
				Handler:           route.LogMiddleware(muxer),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				slog.Info("http server listening", "addr", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("gracefully shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}

func botCommand() *cli.Command {
	return &cli.Command{
		Name:  "bot",
		Usage: "Run the Discord bot with a /schedule command.",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			defer stop()

			as, err := newAppState(c)
			if err != nil {
				return err
			}
			defer as.Close()

			token, err := as.Config.GetDiscordAppToken()
			if err != nil {
				return err
			}
			clientID, err := as.Config.GetDiscordClientId()
			if err != nil {
				return err
			}
			as.DgSession, err = discordgo.New("Bot " + token)
			if err != nil {
				return fmt.Errorf("bot: %w", err)
			}

			// injecting interaction handlers into appCmdInfo, appCmdHandler in AppState
			handler.ScheduleCommand(as)
			handler.Ping(as)

			as.DgSession.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
				if i.Type != discordgo.InteractionApplicationCommand {
					return
				}
				id := i.ApplicationCommandData().Name
				h, ok := as.GetAppCmdHandler(id)
				if !ok {
					slog.Warn("unknown command", "command", id)
					return
				}
				if err := h(s, i); err != nil {
					slog.Error("handler error", "command", id, "error", err.Error())
				}
			})

			if err := as.DgSession.Open(); err != nil {
				return fmt.Errorf("bot: error opening connection: %w", err)
			}

			var cmds []*discordgo.ApplicationCommand
			as.IterateAppCmdInfo(func(k string, v *discordgo.ApplicationCommand) {
				cmds = append(cmds, v)
			})
			if _, err := as.DgSession.ApplicationCommandBulkOverwrite(clientID, as.Config.GetDiscordGuildID(), cmds); err != nil {
				slog.Error("can't create slash commands", "error", err.Error())
			}

			slog.Info("number of guilds", "guilds", len(as.DgSession.State.Guilds))
			slog.Info("bot is now running, press Ctrl+C to exit")
			<-ctx.Done()
			slog.Info("gracefully shutting down...")
			return nil
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List previously generated events, newest first.",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "show at most `N` entries (0 for all)"},
			&cli.BoolFlag{Name: "json", Usage: "print JSON"},
		},
		Action: func(c *cli.Context) error {
			config := utils.NewConfig()
			if config.GetDatabase() == "" {
				return &utils.ConfigurationError{Key: "NLCAL_DATABASE", Reason: "must be set to keep history"}
			}
			db, err := utils.OpenDatabase(c.Context, config.GetDatabase())
			if err != nil {
				return err
			}
			defer db.Close()

			events, err := model.ListGeneratedEvents(c.Context, db, c.Int("limit"))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(events)
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CREATED\tSTART\tTITLE\tRRULE\tFILE")
			for _, e := range events {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					time.Unix(e.CreatedAt, 0).Local().Format("2006-01-02 15:04"),
					e.StartDatetime,
					e.Title,
					e.RRule,
					e.Filename,
				)
			}
			return tw.Flush()
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Read an .ics file back and print the event it holds.",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "preview", Usage: "print the first `N` occurrences"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("inspect: expected exactly one FILE")
			}
			f, err := os.Open(c.Args().First())
			if err != nil {
				return fmt.Errorf("inspect: %w", err)
			}
			defer f.Close()

			inspection, err := ical.Inspect(f)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(struct {
				UID     string            `json:"uid"`
				DTStamp time.Time         `json:"dtstamp"`
				Event   model.ParsedEvent `json:"event"`
			}{inspection.UID, inspection.DTStamp, inspection.Event}, "", "  ")
			if err != nil {
				return fmt.Errorf("inspect: %w", err)
			}
			fmt.Println(string(out))

			if n := c.Int("preview"); n > 0 {
				occurrences, err := ical.Occurrences(inspection.Event, n)
				if err != nil {
					return err
				}
				printOccurrences(os.Stdout, occurrences)
			}
			return nil
		},
	}
}
