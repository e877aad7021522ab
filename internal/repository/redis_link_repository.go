package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"paylinks/internal/model"
)

const (
	linkKeyPrefix = "payment_link:"
	linkIndexKey  = "payment_links:index"
)

// putScript inserts the hash only when the key is free and indexes the id.
var putScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV, 2))
redis.call("SADD", KEYS[2], ARGV[1])
return 1
`)

// updateScript patches fields of an existing hash and never creates one.
var updateScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV))
return 1
`)

type redisLinkRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisLinkRepository creates a link repository storing one hash per link.
// table namespaces the keys so several deployments can share a database.
func NewRedisLinkRepository(client *redis.Client, table string) LinkRepository {
	prefix := ""
	if table != "" {
		prefix = table + ":"
	}
	return &redisLinkRepository{client: client, prefix: prefix}
}

func (r *redisLinkRepository) linkKey(id string) string {
	return r.prefix + linkKeyPrefix + id
}

func (r *redisLinkRepository) indexKey() string {
	return r.prefix + linkIndexKey
}

// Get loads the hash for id.
func (r *redisLinkRepository) Get(ctx context.Context, id string) (*model.PaymentLink, error) {
	fields, err := r.client.HGetAll(ctx, r.linkKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get link %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return linkFromHash(fields)
}

// Put stores a new link atomically with its index entry.
func (r *redisLinkRepository) Put(ctx context.Context, link *model.PaymentLink) error {
	args := append([]interface{}{link.ID}, linkToHash(link)...)
	created, err := putScript.Run(ctx, r.client, []string{r.linkKey(link.ID), r.indexKey()}, args...).Int()
	if err != nil {
		return fmt.Errorf("put link %s: %w", link.ID, err)
	}
	if created == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// Update patches an existing link.
func (r *redisLinkRepository) Update(ctx context.Context, id string, patch model.LinkPatch) error {
	args := []interface{}{
		"status", patch.Status,
		"updated_at", model.FormatTimestamp(patch.UpdatedAt),
	}
	if patch.ProviderPaymentID != nil {
		args = append(args, "provider_payment_id", *patch.ProviderPaymentID)
	}

	updated, err := updateScript.Run(ctx, r.client, []string{r.linkKey(id)}, args...).Int()
	if err != nil {
		return fmt.Errorf("update link %s: %w", id, err)
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// Scan walks the index set with SSCAN, whose order is unspecified.
func (r *redisLinkRepository) Scan(ctx context.Context, limit int) ([]model.PaymentLink, error) {
	ids := make([]string, 0, limit)
	var cursor uint64
	for {
		batch, next, err := r.client.SScan(ctx, r.indexKey(), cursor, "", int64(limit)).Result()
		if err != nil {
			return nil, fmt.Errorf("scan link index: %w", err)
		}
		for _, id := range batch {
			if len(ids) >= limit {
				break
			}
			ids = append(ids, id)
		}
		cursor = next
		if cursor == 0 || len(ids) >= limit {
			break
		}
	}

	if len(ids) == 0 {
		return []model.PaymentLink{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, r.linkKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load scanned links: %w", err)
	}

	links := make([]model.PaymentLink, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		link, err := linkFromHash(fields)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	return links, nil
}

// Ping checks the redis connection.
func (r *redisLinkRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func linkToHash(link *model.PaymentLink) []interface{} {
	fields := []interface{}{
		"id", link.ID,
		"user", link.User,
		"amount", link.Amount.String(),
		"description", link.Description,
		"status", link.Status,
		"payment_provider", link.PaymentProvider,
		"provider_preference_id", link.ProviderPreferenceID,
		"payment_url", link.PaymentURL,
		"created_at", model.FormatTimestamp(link.CreatedAt),
	}
	if link.ProviderPaymentID != nil {
		fields = append(fields, "provider_payment_id", *link.ProviderPaymentID)
	}
	if link.UpdatedAt != nil {
		fields = append(fields, "updated_at", model.FormatTimestamp(*link.UpdatedAt))
	}
	return fields
}

func linkFromHash(fields map[string]string) (*model.PaymentLink, error) {
	id := fields["id"]
	amount, err := decimal.NewFromString(fields["amount"])
	if err != nil {
		return nil, fmt.Errorf("link %s amount: %w", id, err)
	}
	created, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("link %s created_at: %w", id, err)
	}

	link := &model.PaymentLink{
		ID:                   id,
		User:                 fields["user"],
		Amount:               amount,
		Description:          fields["description"],
		Status:               fields["status"],
		PaymentProvider:      fields["payment_provider"],
		ProviderPreferenceID: fields["provider_preference_id"],
		PaymentURL:           fields["payment_url"],
		CreatedAt:            created.UTC(),
	}
	if v, ok := fields["provider_payment_id"]; ok && v != "" {
		link.ProviderPaymentID = &v
	}
	if v, ok := fields["updated_at"]; ok && v != "" {
		updated, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("link %s updated_at: %w", id, err)
		}
		updated = updated.UTC()
		link.UpdatedAt = &updated
	}
	return link, nil
}
