// Package rufus is an in-process job scheduler: it accepts callables along
// with a temporal specification and triggers them on their own execution
// contexts at the prescribed moments.
//
// Basic usage:
//
//	sched := rufus.New()
//	sched.Start()
//	defer sched.Shutdown(rufus.ShutdownWait)
//
//	sched.Every(5*time.Second, rufus.Func0(func() {
//	    fmt.Println("tick:", time.Now())
//	}))
//
// Scheduling variants:
//
//	sched.At(someInstant, cb)
//	sched.In(200*time.Millisecond, cb)
//	sched.Every(time.Second, cb, rufus.WithTimes(3))
//	sched.Cron("*/5 * * * *", cb)
//
// String-spec equivalents accept the compact duration and absolute-time
// grammars this package parses on their own:
//
//	sched.InString("1h10s", cb)
//	sched.AtString("2026-01-02 15:04:05 EST", cb)
//
// Tags, mutual exclusion, and timeouts:
//
//	sched.Every(time.Minute, cb,
//	    rufus.WithTags("reporting"),
//	    rufus.WithMutex("db"),
//	    rufus.WithTimeout(30*time.Second),
//	)
//
// Options configure the Scheduler itself:
//
//	sched := rufus.New(
//	    rufus.WithFrequency(100*time.Millisecond),
//	    rufus.WithLogger(rufus.NewZerologLogger()),
//	    rufus.WithOnError(func(j *rufus.Job, err error) {
//	        log.Printf("job %s failed: %v", j.ID, err)
//	    }),
//	)
package rufus
