//go:build integration

package kafka_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"payrecon/internal/decision"
	dkafka "payrecon/internal/decision/adapters/kafka"
	"payrecon/internal/decision/store"
	platformkafka "payrecon/internal/platform/kafka"
	"payrecon/internal/platform/kafka/consumer"
	"payrecon/pkg/testutil/containers"
)

func TestPublishAndMaterialize(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rp := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := platformkafka.Config{Brokers: rp.Brokers, ClientID: "payrecon-test", Topic: "payrecon.decisions.it", Group: "payrecon-it"}
	producer, err := platformkafka.NewClient(ctx, cfg)
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, platformkafka.EnsureTopic(ctx, producer, cfg))
	require.NoError(t, platformkafka.EnsureTopic(ctx, producer, cfg), "second call tolerates an existing topic")

	pub := dkafka.NewPublisher(producer, cfg.Topic)
	require.NoError(t, pub.Publish(ctx, decision.Record{
		TransactionID:    "TXN-001",
		AccountReference: "ACC-789123456",
		Amount:           decimal.RequireFromString("12500.00"),
		Action:           decision.ActionAutoProcess,
		Reasons:          []decision.Reason{decision.ReasonExactMatch},
		Rule:             "exact_match",
		BestMatch:        decision.MatchExact,
		DecidedAt:        time.Now().UTC(),
	}))

	client, err := platformkafka.NewClient(ctx, cfg, consumer.GroupOpts(cfg.Group, cfg.Topic)...)
	require.NoError(t, err)
	defer client.Close()

	st := store.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := consumer.NewRouter(logger, nil)
	router.Register(cfg.Topic, dkafka.NewMaterializer(st, logger))

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- consumer.New(client, router, logger).Run(runCtx) }()

	require.Eventually(t, func() bool { return st.Count() == 1 }, 30*time.Second, 100*time.Millisecond)
	stop()
	err = <-done
	require.True(t, err == nil || errors.Is(err, context.Canceled))

	rec, err := st.FindByTransactionID(ctx, "TXN-001")
	require.NoError(t, err)
	require.Equal(t, decision.ActionAutoProcess, rec.Action)
}
