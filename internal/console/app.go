package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v2"

	"Apiverse/internal/config"
	"Apiverse/internal/core/engagement"
	"Apiverse/internal/core/listingcache"
	"Apiverse/internal/core/upvotes"
)

// NewApp builds the apiverse command tree. Output goes to out; the shell
// reads commands from in. Exit codes are carried by cli.ExitCoder errors and
// left to the caller.
func NewApp(out, errOut io.Writer, in io.Reader) *cli.App {
	surfaceFlag := &cli.StringFlag{
		Name:    "surface",
		Aliases: []string{"s"},
		Value:   string(listingcache.SurfaceLanding),
		Usage:   "landing, fresh, popular or browse",
	}

	return &cli.App{
		Name:      "apiverse",
		Usage:     "browse the API directory and like listings",
		Writer:    out,
		ErrWriter: errOut,
		Reader:    in,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a YAML config file"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log cache and toggle activity"},
		},
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			{
				Name:  "browse",
				Usage: "list a surface with tier badges",
				Flags: []cli.Flag{surfaceFlag},
				Action: withRunner(func(c *cli.Context, r *runner) error {
					return r.browse(c.Context, c.String("surface"))
				}),
			},
			{
				Name:      "show",
				Usage:     "show one listing",
				ArgsUsage: "<listing-id>",
				Action: withRunner(func(c *cli.Context, r *runner) error {
					id, err := requireID(c.Args().First())
					if err != nil {
						return err
					}
					return r.show(c.Context, id)
				}),
			},
			toggleCommand("like", "like a listing", upvotes.DirectionLike, surfaceFlag),
			toggleCommand("unlike", "remove your like", upvotes.DirectionUnlike, surfaceFlag),
			toggleCommand("toggle", "like, or unlike if this profile already liked it", "", surfaceFlag),
			{
				Name:      "save",
				Usage:     "add or remove a listing from this profile's saved set",
				ArgsUsage: "<listing-id>",
				Action: withRunner(func(c *cli.Context, r *runner) error {
					id, err := requireID(c.Args().First())
					if err != nil {
						return err
					}
					return r.save(c.Context, id)
				}),
			},
			{
				Name:  "shell",
				Usage: "interactive session sharing one listing cache",
				Action: withRunner(func(c *cli.Context, r *runner) error {
					return r.shell(c.Context, c.App.Reader)
				}),
			},
		},
	}
}

func toggleCommand(name, usage string, direction upvotes.Direction, surfaceFlag cli.Flag) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<listing-id>",
		Flags:     []cli.Flag{surfaceFlag},
		Action: withRunner(func(c *cli.Context, r *runner) error {
			id, err := requireID(c.Args().First())
			if err != nil {
				return err
			}
			if err := r.toggle(c.Context, id, c.String("surface"), direction); err != nil {
				msg, code := explain(err)
				if code == 0 {
					_, _ = fmt.Fprintln(r.out, msg)
					return nil
				}
				return cli.Exit(msg, code)
			}
			return nil
		}),
	}
}

func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", cli.Exit("listing id is required", ExitFailure)
	}
	return id, nil
}

func withRunner(fn func(*cli.Context, *runner) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.LoadClient(c.String("config"))
		if err != nil {
			return cli.Exit(err.Error(), ExitFailure)
		}

		level := slog.LevelWarn
		if c.Bool("verbose") {
			level = slog.LevelInfo
		}
		logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))

		session, err := Open(c.Context, cfg, logger)
		if err != nil {
			return cli.Exit(err.Error(), ExitFailure)
		}
		defer func() {
			if closeErr := session.Close(); closeErr != nil {
				logger.Warn("failed to close session", "error", closeErr)
			}
		}()

		return fn(c, &runner{session: session, out: c.App.Writer})
	}
}

type runner struct {
	session *Session
	out     io.Writer
}

func (r *runner) browse(ctx context.Context, name string) error {
	surface, ok := listingcache.ParseSurface(name)
	if !ok || surface.IsDetail() {
		return cli.Exit(fmt.Sprintf("unknown surface %q", name), ExitFailure)
	}
	views, err := r.session.Controller.Render(ctx, surface)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load %s: %v", surface, err), ExitFailure)
	}
	return printViews(r.out, views)
}

func (r *runner) show(ctx context.Context, id string) error {
	views, err := r.session.Controller.Render(ctx, listingcache.DetailSurface(id))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load %s: %v", id, err), ExitFailure)
	}
	return printViews(r.out, views)
}

// toggle flips the like when direction is empty
func (r *runner) toggle(ctx context.Context, id, surfaceName string, direction upvotes.Direction) error {
	surface, ok := listingcache.ParseSurface(surfaceName)
	if !ok {
		return cli.Exit(fmt.Sprintf("unknown surface %q", surfaceName), ExitFailure)
	}

	var (
		res *engagement.ToggleResult
		err error
	)
	if direction == "" {
		res, err = r.session.Controller.ToggleLike(ctx, surface, id)
	} else {
		res, err = r.session.Controller.Toggle(ctx, surface, id, direction)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.out, formatToggle(res))
	return err
}

func (r *runner) save(ctx context.Context, id string) error {
	saved, err := r.session.Controller.ToggleSave(ctx, id)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to update saved listings: %v", err), ExitFailure)
	}
	verb := "Removed %s from saved listings\n"
	if saved {
		verb = "Saved %s\n"
	}
	_, err = fmt.Fprintf(r.out, verb, id)
	return err
}

func (r *runner) refresh(ctx context.Context, name string) error {
	surface, ok := listingcache.ParseSurface(name)
	if !ok {
		return cli.Exit(fmt.Sprintf("unknown surface %q", name), ExitFailure)
	}
	if _, err := r.session.Controller.Refresh(ctx, surface); err != nil {
		return cli.Exit(fmt.Sprintf("failed to refresh %s: %v", surface, err), ExitFailure)
	}
	views, err := r.session.Controller.Render(ctx, surface)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load %s: %v", surface, err), ExitFailure)
	}
	return printViews(r.out, views)
}

const shellHelp = `Commands:
  browse [surface]          list landing, fresh, popular or browse
  show <id>                 show one listing
  like <id> [surface]       like a listing
  unlike <id> [surface]     remove your like
  toggle <id> [surface]     like or unlike
  save <id>                 add or remove from saved
  refresh [surface]         refetch a surface and recompute tiers
  help                      this text
  quit                      leave the shell`

// shell keeps one Session for its lifetime so counters patched by a toggle
// stay visible on that surface until it is refreshed.
func (r *runner) shell(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	_, _ = fmt.Fprint(r.out, "> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) > 0 {
			if fields[0] == "quit" || fields[0] == "exit" {
				return nil
			}
			if err := r.dispatch(ctx, fields); err != nil {
				msg, _ := explain(err)
				_, _ = fmt.Fprintln(r.out, msg)
			}
		}
		_, _ = fmt.Fprint(r.out, "> ")
	}
	return scanner.Err()
}

func (r *runner) dispatch(ctx context.Context, fields []string) error {
	arg := func(i int, fallback string) string {
		if i < len(fields) {
			return fields[i]
		}
		return fallback
	}
	landing := string(listingcache.SurfaceLanding)

	switch fields[0] {
	case "browse":
		return r.browse(ctx, arg(1, landing))
	case "show":
		id, err := requireID(arg(1, ""))
		if err != nil {
			return err
		}
		return r.show(ctx, id)
	case "like", "unlike", "toggle":
		id, err := requireID(arg(1, ""))
		if err != nil {
			return err
		}
		direction := upvotes.Direction("")
		if fields[0] != "toggle" {
			direction = upvotes.Direction(fields[0])
		}
		return r.toggle(ctx, id, arg(2, landing), direction)
	case "save":
		id, err := requireID(arg(1, ""))
		if err != nil {
			return err
		}
		return r.save(ctx, id)
	case "refresh":
		return r.refresh(ctx, arg(1, landing))
	case "help":
		_, err := fmt.Fprintln(r.out, shellHelp)
		return err
	default:
		return fmt.Errorf("unknown command %q, type help", fields[0])
	}
}
