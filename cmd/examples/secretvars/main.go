package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-secretvars/pkg/commands"
	"github.com/goliatone/go-secretvars/pkg/config"
	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/logger"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
	"github.com/goliatone/go-secretvars/pkg/secretvars"
)

func main() {
	dsn := flag.String("dsn", "file:secretvars_demo?mode=memory&cache=shared", "sqlite dsn")
	level := flag.String("log-level", "debug", "log level")
	flag.Parse()

	ctx := context.Background()

	payloadKey := make([]byte, 32)
	if _, err := rand.Read(payloadKey); err != nil {
		log.Fatalf("payload key: %v", err)
	}

	cfg, err := config.Load(map[string]any{
		"persistence": map[string]any{"driver": config.DriverSQLite, "dsn": *dsn},
		"logging":     map[string]any{"level": *level},
	})
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.Encryption.PayloadKey = base64.StdEncoding.EncodeToString(payloadKey)

	lgr := logger.NewWithWriter(os.Stdout, logger.ParseLevel(cfg.Logging.Level))
	module, err := secretvars.Open(ctx, cfg, lgr)
	if err != nil {
		log.Fatalf("open module: %v", err)
	}
	defer module.Close()

	cmds := module.Commands()
	must(cmds.Instantiate.Execute(ctx, commands.Instantiate{Caller: "creator", PRNGSeed: []byte("prng_seed")}))
	must(cmds.SetViewers.Execute(ctx, commands.SetViewers{Caller: "creator", Viewers: []string{"viewer1"}}))
	must(cmds.SetSecret.Execute(ctx, commands.SetSecret{Caller: "creator", SecretVariables: "this is a secret"}))

	if err := cmds.SetViewers.Execute(ctx, commands.SetViewers{Caller: "anyone", Viewers: []string{"anyone"}}); errors.Is(err, domain.ErrUnauthorized) {
		fmt.Println("anyone cannot set viewers:", err)
	}

	key := &commands.ViewingKeyResult{}
	must(cmds.GenerateViewingKey.Execute(ctx, commands.GenerateViewingKey{Caller: "viewer1", Entropy: "entropy", Result: key}))
	fmt.Println("viewer1 received a viewing key")

	secret := &commands.SecretResult{}
	must(cmds.QuerySecret.Execute(ctx, commands.QuerySecret{ViewingKey: key.Key, Account: "viewer1", Result: secret}))
	fmt.Printf("viewer1 reads: %q\n", secret.SecretVariables)

	if err := cmds.QuerySecret.Execute(ctx, commands.QuerySecret{ViewingKey: "asda", Account: "viewer1", Result: &commands.SecretResult{}}); err != nil {
		fmt.Println("bogus key rejected:", err)
	}

	events, err := module.AccessEvents(ctx, store.ListOptions{})
	if err != nil {
		log.Fatalf("access events: %v", err)
	}
	for _, evt := range events.Items {
		fmt.Printf("%s %-22s %-8s %s\n", evt.OccurredAt.Format("15:04:05"), evt.Verb, evt.Outcome, evt.Reason)
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
