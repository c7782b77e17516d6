package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dokomo/dokomo/internal/core/domain"
)

// =============================================================================
// Driver-Backed Admin Client
// =============================================================================

// connectTimeout bounds a single admin connection attempt. The readiness
// probe retries on top of this, so it stays short.
const connectTimeout = 5 * time.Second

// DriverAdmin implements Admin with the official MongoDB driver. Every call
// opens a short-lived direct connection: nodes come and go constantly during
// provisioning, so pooled topology-aware clients would only fight the churn.
type DriverAdmin struct{}

// NewDriverAdmin creates a driver-backed admin client.
func NewDriverAdmin() *DriverAdmin {
	return &DriverAdmin{}
}

// withConnection runs fn with a direct connection to addr.
func (a *DriverAdmin) withConnection(ctx context.Context, addr string, fn func(ctx context.Context, client *mongo.Client) error) error {
	opts := options.Client().
		ApplyURI(fmt.Sprintf("mongodb://%s/?directConnection=true", addr)).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	return fn(ctx, client)
}

// Ping issues {ping: 1} against the node's admin database.
func (a *DriverAdmin) Ping(ctx context.Context, addr string) error {
	return a.withConnection(ctx, addr, func(ctx context.Context, client *mongo.Client) error {
		return client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	})
}

// ReplSetInitiate issues replSetInitiate with the full member list in one
// command. Member ids ascend with node ordinals so the configuration is
// deterministic for identical input.
func (a *DriverAdmin) ReplSetInitiate(ctx context.Context, addr, setName string, members []domain.Node, configSvr bool) error {
	memberDocs := make(bson.A, 0, len(members))
	for i, m := range members {
		memberDocs = append(memberDocs, bson.D{
			{Key: "_id", Value: i},
			{Key: "host", Value: m.Addr()},
		})
	}
	cfg := bson.D{{Key: "_id", Value: setName}}
	if configSvr {
		cfg = append(cfg, bson.E{Key: "configsvr", Value: true})
	}
	cfg = append(cfg, bson.E{Key: "members", Value: memberDocs})

	return a.withConnection(ctx, addr, func(ctx context.Context, client *mongo.Client) error {
		err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "replSetInitiate", Value: cfg}}).Err()
		if err != nil {
			return fmt.Errorf("%w: replSetInitiate %s on %s: %w", ErrBootstrapFailed, setName, addr, err)
		}
		return nil
	})
}

// AddShard registers one shard through a router.
func (a *DriverAdmin) AddShard(ctx context.Context, routerAddr, shardConnString string) error {
	return a.withConnection(ctx, routerAddr, func(ctx context.Context, client *mongo.Client) error {
		err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "addShard", Value: shardConnString}}).Err()
		if err != nil {
			return fmt.Errorf("%w: addShard %s via %s: %w", ErrBootstrapFailed, shardConnString, routerAddr, err)
		}
		return nil
	})
}

// ListShards returns the shard ids known to the cluster.
func (a *DriverAdmin) ListShards(ctx context.Context, routerAddr string) ([]string, error) {
	var ids []string
	err := a.withConnection(ctx, routerAddr, func(ctx context.Context, client *mongo.Client) error {
		var reply struct {
			Shards []struct {
				ID string `bson:"_id"`
			} `bson:"shards"`
		}
		res := client.Database("admin").RunCommand(ctx, bson.D{{Key: "listShards", Value: 1}})
		if err := res.Decode(&reply); err != nil {
			return err
		}
		for _, s := range reply.Shards {
			ids = append(ids, s.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
