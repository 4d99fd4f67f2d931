package notes

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// StartPendingProcessing starts the background scheduler that replays
// the pending queue whenever connectivity returns. Each tick probes the
// notes API and, if reachable, drains the queue. A tick that still
// finds the network down leaves the queue untouched for the next one.
// The returned scheduler can be stopped by the caller on shutdown.
func (s *Service) StartPendingProcessing(intervalMinutes int) *gocron.Scheduler {
	sched := gocron.NewScheduler(time.UTC)
	sched.SingletonModeAll()

	if intervalMinutes == 0 {
		log.Println("Notes sync interval is 0, scheduled sync is disabled.")
		return sched
	}

	log.Printf("Scheduling notes sync to run every %d minutes.", intervalMinutes)
	_, err := sched.Every(intervalMinutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if s.PendingCount() == 0 {
			return
		}
		if !s.client.Online(ctx) {
			return
		}
		log.Println("Connectivity restored, draining pending notes queue...")
		s.ProcessPending(ctx)
	})
	if err != nil {
		log.Printf("Error scheduling notes sync job: %v", err)
	}

	sched.StartAsync()
	return sched
}
