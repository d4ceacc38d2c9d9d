package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/kgo"

	"payrecon/internal/decision"
	"payrecon/internal/decision/adapters"
	"payrecon/internal/decision/adapters/httpclient"
	kafkaadapter "payrecon/internal/decision/adapters/kafka"
	dechandler "payrecon/internal/decision/handler"
	decmetrics "payrecon/internal/decision/metrics"
	"payrecon/internal/decision/ports"
	decstore "payrecon/internal/decision/store"
	"payrecon/internal/directory"
	dirhandler "payrecon/internal/directory/handler"
	"payrecon/internal/fixtures"
	httpapi "payrecon/internal/http"
	"payrecon/internal/ledger"
	ledgerhandler "payrecon/internal/ledger/handler"
	"payrecon/internal/notifier"
	notifierhandler "payrecon/internal/notifier/handler"
	"payrecon/internal/platform/config"
	"payrecon/internal/platform/kafka"
	"payrecon/internal/platform/kafka/consumer"
	"payrecon/internal/platform/metrics"
	"payrecon/internal/platform/postgres"
	platformredis "payrecon/internal/platform/redis"
	"payrecon/pkg/platform/circuit"
)

// app holds the long-lived resources of the process.
type app struct {
	pg       *postgres.Handles
	redis    *platformredis.Client
	producer *kgo.Client
	group    *kgo.Client
	consumer *consumer.Consumer

	directory *directory.Service
	ledger    *ledger.Service
	notifier  *notifier.Service
	engine    *decision.Service
	breakers  []*circuit.Breaker
}

func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	if a.pg, err = postgres.Open(ctx, cfg.Postgres); err != nil {
		return nil, err
	}
	if a.redis, err = platformredis.New(ctx, cfg.Redis); err != nil {
		return nil, err
	}

	seed, err := fixtures.LoadSeed()
	if err != nil {
		return nil, err
	}
	engineCfg, err := cfg.Decision.EngineConfig()
	if err != nil {
		return nil, err
	}
	if err := a.buildCollaborators(ctx, cfg, seed, engineCfg.HighValueThreshold, log); err != nil {
		return nil, err
	}
	records, err := a.decisionStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []decision.Option{
		decision.WithLogger(log),
		decision.WithConfig(engineCfg),
		decision.WithMetrics(decmetrics.New()),
	}
	if kc, ok := cfg.Kafka.KafkaConfig(); ok {
		// Records reach the store through the topic so every replica's
		// decisions land in one place.
		publisher, err := a.startKafka(ctx, kc, records, log)
		if err != nil {
			return nil, err
		}
		opts = append(opts, decision.WithPublisher(publisher), decision.WithStore(lookupOnly{records}))
	} else {
		opts = append(opts, decision.WithStore(records))
	}

	dir, led, note := a.ports(cfg, log)
	opts = append(opts, decision.WithNotifier(note))
	if a.engine, err = decision.New(dir, led, opts...); err != nil {
		return nil, err
	}
	return a, nil
}

// buildCollaborators seeds the mock services. highValue is shared with the
// engine so the ERP check and the notification evaluation agree with it.
func (a *app) buildCollaborators(ctx context.Context, cfg *config.Config, seed *fixtures.Seed, highValue decimal.Decimal, log *slog.Logger) error {
	customers, err := seed.DirectoryCustomers()
	if err != nil {
		return err
	}
	if a.directory, err = directory.NewService(directory.NewInMemoryStore(), directory.WithLogger(log)); err != nil {
		return err
	}
	if err := a.directory.Seed(ctx, customers); err != nil {
		return err
	}

	var ledgerStore ledger.Store = ledger.NewInMemoryStore()
	if a.pg != nil {
		pgStore := ledger.NewPostgresStore(a.pg.Pool)
		if cfg.Postgres.Migrate {
			if err := pgStore.Migrate(ctx); err != nil {
				return err
			}
		}
		ledgerStore = pgStore
	}
	if a.ledger, err = ledger.NewService(ledgerStore, ledger.WithLogger(log), ledger.WithHighValueOutstanding(highValue)); err != nil {
		return err
	}
	existing, err := a.ledger.ListInvoices(ctx, ledger.InvoiceFilter{})
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		invoices, err := seed.LedgerInvoices()
		if err != nil {
			return err
		}
		if err := a.ledger.Seed(ctx, invoices); err != nil {
			return err
		}
	}

	var outbox notifier.Outbox = notifier.NewInMemoryOutbox()
	if a.redis != nil {
		outbox = notifier.NewRedisOutbox(a.redis.Client, a.redis.Namespace())
	}
	notifierOpts := []notifier.Option{notifier.WithLogger(log), notifier.WithHighValueThreshold(highValue)}
	if len(cfg.Notifier.Recipients) > 0 {
		notifierOpts = append(notifierOpts, notifier.WithRecipients(cfg.Notifier.Recipients))
	}
	a.notifier, err = notifier.NewService(outbox, notifierOpts...)
	return err
}

func (a *app) decisionStore(ctx context.Context, cfg *config.Config) (decision.Store, error) {
	if a.pg == nil {
		return decstore.NewInMemory(), nil
	}
	store := decstore.NewPostgres(a.pg.DB)
	if cfg.Postgres.Migrate {
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (a *app) startKafka(ctx context.Context, kc kafka.Config, records decision.Store, log *slog.Logger) (*kafkaadapter.Publisher, error) {
	var err error
	if a.producer, err = kafka.NewClient(ctx, kc); err != nil {
		return nil, err
	}
	if err := kafka.EnsureTopic(ctx, a.producer, kc); err != nil {
		return nil, err
	}
	if a.group, err = kafka.NewClient(ctx, kc, consumer.GroupOpts(kc.Group, kc.Topic)...); err != nil {
		return nil, err
	}

	router := consumer.NewRouter(log, nil)
	router.Register(kc.Topic, kafkaadapter.NewMaterializer(records, log))
	a.consumer = consumer.New(a.group, router, log)
	return kafkaadapter.NewPublisher(a.producer, kc.Topic), nil
}

// ports picks in-process adapters, or HTTP clients for collaborators that
// have a URL configured.
func (a *app) ports(cfg *config.Config, log *slog.Logger) (ports.DirectoryPort, ports.LedgerPort, ports.NotifierPort) {
	c := cfg.Collaborators
	client := func(name, url string) *httpclient.Client {
		breaker := circuit.New(name,
			circuit.WithFailureThreshold(c.FailureThreshold),
			circuit.WithSuccessThreshold(c.SuccessThreshold),
			circuit.WithCooldown(c.Cooldown),
		)
		a.breakers = append(a.breakers, breaker)
		return httpclient.NewClient(name, url,
			httpclient.WithHTTPClient(&http.Client{Timeout: c.Timeout}),
			httpclient.WithBreaker(breaker),
			httpclient.WithLogger(log),
		)
	}

	var dir ports.DirectoryPort = adapters.NewDirectoryAdapter(a.directory)
	if c.DirectoryURL != "" {
		dir = httpclient.NewDirectoryClient(client("directory", c.DirectoryURL))
	}
	var led ports.LedgerPort = adapters.NewLedgerAdapter(a.ledger)
	if c.LedgerURL != "" {
		led = httpclient.NewLedgerClient(client("ledger", c.LedgerURL))
	}
	var note ports.NotifierPort = adapters.NewNotifierAdapter(a.notifier)
	if c.NotifierURL != "" {
		note = httpclient.NewNotifierClient(client("notifier", c.NotifierURL))
	}
	return dir, led, note
}

func (a *app) routerDeps(log *slog.Logger) httpapi.Deps {
	checks := map[string]httpapi.HealthCheck{}
	if a.pg != nil {
		checks["postgres"] = func(ctx context.Context) error { return a.pg.Pool.Ping(ctx) }
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	if a.producer != nil {
		checks["kafka"] = a.producer.Ping
	}
	for _, b := range a.breakers {
		checks["circuit:"+b.Name()] = func(context.Context) error {
			if b.IsOpen() {
				return fmt.Errorf("circuit %s is open", b.Name())
			}
			return nil
		}
	}

	return httpapi.Deps{
		Logger:       log,
		Metrics:      metrics.New(),
		Decision:     dechandler.New(a.engine, log),
		Directory:    dirhandler.New(a.directory, log),
		Ledger:       ledgerhandler.New(a.ledger, log),
		Notifier:     notifierhandler.New(a.notifier, log),
		HealthChecks: checks,
	}
}

func (a *app) close() {
	if a.group != nil {
		a.group.Close()
	}
	if a.producer != nil {
		a.producer.Flush(context.Background())
		a.producer.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pg != nil {
		_ = a.pg.Close()
	}
}

// lookupOnly lets the engine read records the materializer wrote without
// writing them itself.
type lookupOnly struct {
	decision.Store
}

func (lookupOnly) Save(context.Context, decision.Record) error { return nil }
