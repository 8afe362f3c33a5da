// Command basic composes a small HTTP application from a declarative
// composition document, loads it into a dig container, schedules a
// heartbeat job and serves until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/GoCodeAlone/compose"
	"github.com/GoCodeAlone/compose/conftree"
	"github.com/GoCodeAlone/compose/digcontainer"
	"github.com/GoCodeAlone/compose/modules/httpapi"
	"github.com/GoCodeAlone/compose/modules/jobs"
)

// The httpapi module declares jobs as a known dependency, so the scheduler
// arrives without being listed in the document.
const document = `
modules:
  - type: httpapi
    configuration:
      address: ":8080"
      basePath: /api
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	tree, err := conftree.ParseYAML([]byte(document))
	if err != nil {
		return err
	}

	registry := compose.NewTypeRegistry()
	if err := registry.Register(
		compose.RegistryEntry{Key: httpapi.ModuleType, Factory: httpapi.Factory},
		compose.RegistryEntry{Key: jobs.ModuleType, Factory: jobs.Factory},
	); err != nil {
		return err
	}

	composer := compose.NewComposer(
		compose.WithRegistry(registry),
		compose.WithObservers(compose.NewFunctionalObserver("basic-example",
			func(_ context.Context, event cloudevents.Event) error {
				fmt.Printf("event: %s\n", event.Type())
				return nil
			})),
	)
	if err := composer.Initialize(ctx, tree); err != nil {
		return err
	}

	container := digcontainer.New(nil)
	if err := composer.Load(ctx, container); err != nil {
		return err
	}

	scheduler, err := compose.GetService[*jobs.Scheduler](container, jobs.ServiceName)
	if err != nil {
		return err
	}
	if err := scheduler.Add("heartbeat", "* * * * *", func() { fmt.Println("heartbeat") }); err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	server, err := compose.GetService[*http.Server](container, httpapi.ServerServiceName)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	fmt.Printf("listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
