package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/db"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/events"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/journal"
)

// These tests need Docker. Set POS_INTEGRATION=1 to run them.
func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("POS_INTEGRATION") == "" {
		t.Skip("set POS_INTEGRATION=1 to run integration tests")
	}
}

func TestJournalRoundTrip(t *testing.T) {
	skipUnlessIntegration(t)
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pgC, dsn := startPostgres(ctx, t)
	defer terminateContainer(t, pgC)

	logger := log.New(io.Discard, "", log.LstdFlags)
	require.NoError(t, db.RunMigrations(dsn, logger))

	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := journal.NewPostgresRepository(pool)

	committed := time.Now().UTC().Truncate(time.Microsecond)
	entry := journal.Entry{
		SessionID:     "sess-1",
		Cashier:       "jane",
		OrderID:       "order-1",
		TransactionID: "tx-1",
		Lines: []journal.EntryLine{
			{ProductID: "p1", Title: "Mug", SKU: "MUG-014", Quantity: 2, UnitPrice: decimal.NewFromInt(800), Discount: decimal.Zero},
			{ProductID: "p2", Title: "Shirt", SKU: "TSHIRT-001", VariantSKU: "TS-BLK-M", Quantity: 1, UnitPrice: decimal.NewFromInt(1200), Discount: decimal.NewFromInt(100)},
		},
		Subtotal:      decimal.NewFromInt(2700),
		TaxAmount:     decimal.NewFromInt(432),
		Total:         decimal.NewFromInt(3132),
		AmountPaid:    decimal.NewFromInt(3500),
		Change:        decimal.NewFromInt(368),
		PaymentMethod: "cash",
		Currency:      "KES",
		CommittedAt:   committed,
	}
	require.NoError(t, repo.Append(ctx, entry))

	entries, err := repo.ListSince(ctx, committed.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	require.NotEmpty(t, got.ID)
	require.Equal(t, "order-1", got.OrderID)
	require.Equal(t, "tx-1", got.TransactionID)
	require.True(t, got.Total.Equal(entry.Total), "total %s", got.Total)
	require.Len(t, got.Lines, 2)
	require.Equal(t, "TS-BLK-M", got.Lines[1].VariantSKU)
	require.True(t, got.Lines[1].Discount.Equal(decimal.NewFromInt(100)))

	// Sales committed before the cutoff stay out of the report.
	entries, err = repo.ListSince(ctx, committed.Add(time.Minute))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSaleCompletedEventDelivery(t *testing.T) {
	skipUnlessIntegration(t)
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	rabbitC, rabbitURL := startRabbitMQ(ctx, t)
	defer terminateContainer(t, rabbitC)

	conn, err := events.Dial(rabbitURL)
	require.NoError(t, err)
	defer conn.Close()

	pub, err := events.NewPublisher(conn)
	require.NoError(t, err)
	defer pub.Close()

	entry := journal.Entry{
		ID:            "sale-1",
		SessionID:     "sess-1",
		OrderID:       "order-1",
		TransactionID: "tx-1",
		Total:         decimal.NewFromInt(2900),
		Currency:      "KES",
		PaymentMethod: "cash",
		Lines: []journal.EntryLine{
			{ProductID: "p1", Quantity: 2},
		},
	}
	require.NoError(t, pub.PublishSaleCompleted(ctx, entry))

	got := consumeSaleCompleted(ctx, t, conn)
	require.Equal(t, "SaleCompleted", got.EventType)
	require.Equal(t, "sale-1", got.SaleID)
	require.Equal(t, "order-1", got.OrderID)
	require.Equal(t, "2900.00", got.Total)
	require.Len(t, got.Items, 1)
	require.Equal(t, 2, got.Items[0].Quantity)
}

func consumeSaleCompleted(ctx context.Context, t *testing.T, conn *amqp.Connection) events.SaleCompleted {
	t.Helper()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	deliveries, err := ch.Consume(events.SaleCompletedQueue, "", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var ev events.SaleCompleted
		require.NoError(t, json.Unmarshal(d.Body, &ev))
		return ev
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for sale.completed event")
	case <-ctx.Done():
		t.Fatalf("context done: %v", ctx.Err())
	}
	return events.SaleCompleted{}
}

func startPostgres(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "pos"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/pos?sslmode=disable", host, mappedPort.Port())
	return container, dsn
}

func startRabbitMQ(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-management",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)

	return container, fmt.Sprintf("amqp://guest:guest@%s:%s/", host, mappedPort.Port())
}

func terminateContainer(t *testing.T, c testcontainers.Container) {
	t.Helper()
	terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, c.Terminate(terminateCtx))
}
