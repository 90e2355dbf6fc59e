// Command rufus-sched is a thin CLI adapter around the rufus scheduler. It
// consumes only the package's public scheduling API — it holds no
// scheduling logic of its own.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli"
	"golang.org/x/time/rate"

	"github.com/nadnerb/rufus-scheduler"
)

var (
	watch    bool
	tagsFlag string
)

func usageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	fmt.Fprintf(os.Stderr, "rufus-sched: %s\n", err)
	cli.ShowCommandHelp(ctx, ctx.Command.Name)
	return err
}

func main() {
	sched := rufus.New(rufus.WithLogger(rufus.NewZerologLogger()))
	if err := sched.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "rufus-sched: %s\n", err)
		os.Exit(1)
	}
	defer sched.Shutdown(rufus.ShutdownWait)

	app := cli.App{
		Name:         "rufus-sched",
		HelpName:     "rufus-sched",
		Usage:        "schedule and inspect jobs on an in-process scheduler",
		Version:      "0.1.0",
		OnUsageError: usageErrorCallback,
		Commands: []cli.Command{
			{
				Name:      "at",
				Usage:     "schedule a one-shot job at an absolute time",
				ArgsUsage: "<time-string> <shell-command>",
				Action:    actionAt(sched),
			},
			{
				Name:      "in",
				Usage:     "schedule a one-shot job after a delay",
				ArgsUsage: "<duration-string> <shell-command>",
				Action:    actionIn(sched),
			},
			{
				Name:      "every",
				Usage:     "schedule a periodic job at a fixed interval",
				ArgsUsage: "<duration-string> <shell-command>",
				Action:    actionEvery(sched),
			},
			{
				Name:      "cron",
				Usage:     "schedule a job on a cron expression",
				ArgsUsage: "<cron-expression> <shell-command>",
				Action:    actionCron(sched),
			},
			{
				Name:      "jobs",
				Usage:     "list scheduled jobs",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					cli.BoolFlag{
						Name:        "watch, w",
						Usage:       "keep listing jobs every second until interrupted",
						Destination: &watch,
					},
					cli.StringFlag{
						Name:        "tag, t",
						Usage:       "only list jobs carrying this tag",
						Destination: &tagsFlag,
					},
				},
				Action: actionJobs(sched),
			},
			{
				Name:      "unschedule",
				Usage:     "unschedule a job by id",
				ArgsUsage: "<job-id>",
				Action:    actionUnschedule(sched),
			},
			{
				Name:   "pause",
				Usage:  "suspend triggering without stopping the loop",
				Action: func(*cli.Context) error { sched.Pause(); return nil },
			},
			{
				Name:   "resume",
				Usage:  "resume triggering",
				Action: func(*cli.Context) error { sched.Resume(); return nil },
			},
			{
				Name:  "shutdown",
				Usage: "stop the scheduler",
				Action: func(*cli.Context) error {
					sched.Shutdown(rufus.ShutdownWait)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "rufus-sched: %s\n", err)
		os.Exit(1)
	}
}

// shellCallable returns a Func0 that runs cmd as a shell command, logging
// its failure through the scheduler's OnError path rather than the shell's
// own exit code.
func shellCallable(cmd string) rufus.Func0 {
	return func() {
		if err := runShell(cmd); err != nil {
			// A panic is recovered at the worker boundary and delivered
			// to OnError as a PanicError.
			panic(err)
		}
	}
}

func actionAt(sched *rufus.Scheduler) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		spec, cmd := ctx.Args().Get(0), ctx.Args().Get(1)
		if spec == "" || cmd == "" {
			return fmt.Errorf("usage: rufus-sched at <time-string> <shell-command>")
		}
		j, err := sched.AtString(spec, shellCallable(cmd))
		if err != nil {
			return err
		}
		fmt.Println(j.ID)
		return nil
	}
}

func actionIn(sched *rufus.Scheduler) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		spec, cmd := ctx.Args().Get(0), ctx.Args().Get(1)
		if spec == "" || cmd == "" {
			return fmt.Errorf("usage: rufus-sched in <duration-string> <shell-command>")
		}
		j, err := sched.InString(spec, shellCallable(cmd))
		if err != nil {
			return err
		}
		fmt.Println(j.ID)
		return nil
	}
}

func actionEvery(sched *rufus.Scheduler) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		spec, cmd := ctx.Args().Get(0), ctx.Args().Get(1)
		if spec == "" || cmd == "" {
			return fmt.Errorf("usage: rufus-sched every <duration-string> <shell-command>")
		}
		j, err := sched.EveryString(spec, shellCallable(cmd))
		if err != nil {
			return err
		}
		fmt.Println(j.ID)
		return nil
	}
}

func actionCron(sched *rufus.Scheduler) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		expr, cmd := ctx.Args().Get(0), ctx.Args().Get(1)
		if expr == "" || cmd == "" {
			return fmt.Errorf("usage: rufus-sched cron <cron-expression> <shell-command>")
		}
		j, err := sched.Cron(expr, shellCallable(cmd))
		if err != nil {
			return err
		}
		fmt.Println(j.ID)
		return nil
	}
}

func actionUnschedule(sched *rufus.Scheduler) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		id := ctx.Args().Get(0)
		if id == "" {
			return fmt.Errorf("usage: rufus-sched unschedule <job-id>")
		}
		return sched.Unschedule(id)
	}
}

func actionJobs(sched *rufus.Scheduler) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		printJobs := func() {
			var opts []rufus.JobsOption
			if tagsFlag != "" {
				opts = append(opts, rufus.WithTagFilter(tagsFlag))
			}
			printJobsTable(sched.Jobs(opts...))
		}

		if !watch {
			printJobs()
			return nil
		}

		// --watch polls once a second; the rate limiter is there so a
		// misconfigured terminal resize storm or scripted fast-poll loop
		// can't turn this into a busy spin.
		stop, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		limiter := rate.NewLimiter(rate.Every(time.Second), 1)
		for {
			if err := limiter.Wait(stop); err != nil {
				return nil
			}
			printJobs()
		}
	}
}

func runShell(cmd string) error {
	c := exec.Command("sh", "-c", cmd)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

func printJobsTable(jobs []*rufus.Job) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tSTATE\tNEXT\tCOUNT\tTAGS")
	for _, j := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%v\n",
			j.ID, j.Kind, j.State(), j.NextTime().Format(time.RFC3339), j.Count(), j.Tags)
	}
	w.Flush()
}
