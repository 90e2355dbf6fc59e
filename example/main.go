package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	rufus "github.com/nadnerb/rufus-scheduler"
)

func main() {
	sched := rufus.New(
		rufus.WithFrequency(200*time.Millisecond),
		rufus.WithLogger(rufus.NewZerologLogger()),
		rufus.WithOnError(func(j *rufus.Job, err error) {
			fmt.Printf("job %s [%s] failed: %v\n", j.ID, j.Kind, err)
		}),
	)

	// A simple periodic job.
	_, _ = sched.Every(5*time.Second, rufus.Func0(func() {
		fmt.Printf("tick: %v\n", time.Now().Format("15:04:05"))
	}))

	// A cron job, capped to 3 firings.
	_, _ = sched.Cron("*/10 * * * * *", rufus.Func1(func(j *rufus.Job) {
		fmt.Printf("cron fire #%d for %s\n", j.Count(), j.ID)
	}), rufus.WithTimes(3))

	// A job that panics; OnError above reports it instead of crashing the
	// scheduler.
	_, _ = sched.Every(30*time.Second, rufus.Func0(func() {
		panic("intentional panic, caught at the worker boundary")
	}))

	// Two jobs sharing a mutex never run concurrently.
	_, _ = sched.Every(8*time.Second, rufus.Func0(func() {
		fmt.Println("holder A entering critical section")
		time.Sleep(2 * time.Second)
	}), rufus.WithMutex("shared-resource"))
	_, _ = sched.Every(8*time.Second, rufus.Func0(func() {
		fmt.Println("holder B entering critical section")
		time.Sleep(2 * time.Second)
	}), rufus.WithMutex("shared-resource"))

	// A job that will overrun its timeout.
	_, _ = sched.In(time.Second, rufus.Func0(func() {
		fmt.Println("starting a job that runs too long")
		time.Sleep(5 * time.Second)
		fmt.Println("this line may never print")
	}), rufus.WithTimeout(2*time.Second))

	if err := sched.Start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("scheduler started, press Ctrl+C to stop")

	for _, j := range sched.Jobs() {
		fmt.Printf("job %s [%s] next at %v\n", j.ID, j.Kind, j.NextTime().Format("15:04:05"))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("stopping scheduler...")
	sched.Shutdown(rufus.ShutdownWait)
	fmt.Println("scheduler stopped, exiting")
}
