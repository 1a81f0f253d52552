package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"recipe_site/internal/store"
)

const usersCollection = "users"

// Store keeps one document per user, {_id: uid, mealPlan, savedRecipes,
// shoppingListData}, with an optional Redis read cache in front.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	rdb    *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func New(ctx context.Context, mongoURI, dbName, redisAddr string, sugar *zap.SugaredLogger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		if sugar != nil {
			sugar.Errorw("mongo connect failed", "error", err)
		}
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		if sugar != nil {
			sugar.Errorw("mongo ping failed", "error", err)
		}
		_ = client.Disconnect(ctx)
		return nil, err
	}

	var rdb *redis.Client
	if redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: redisAddr})
		// redis is optional: warn and continue without the cache
		if err := rdb.Ping(ctx).Err(); err != nil {
			if sugar != nil {
				sugar.Warnw("redis ping failed; continuing without redis caching", "error", err)
			}
			_ = rdb.Close()
			rdb = nil
		}
	}

	return &Store{
		client: client,
		coll:   client.Database(dbName).Collection(usersCollection),
		rdb:    rdb,
		ttl:    10 * time.Minute,
		log:    sugar,
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	return s.client.Disconnect(ctx)
}

func cacheKey(uid string) string {
	return "user-doc:" + uid
}

// Load returns the synced keys of uid's document, or nil when there is none.
func (s *Store) Load(ctx context.Context, uid string) (map[string]json.RawMessage, error) {
	if s.rdb != nil {
		if b, err := s.rdb.Get(ctx, cacheKey(uid)).Bytes(); err == nil {
			var out map[string]json.RawMessage
			if err := json.Unmarshal(b, &out); err == nil {
				return out, nil
			}
		}
	}

	var raw bson.Raw
	err := s.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", uid, err)
	}

	out, err := fromDocument(raw)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if b, err := json.Marshal(out); err == nil {
			if err := s.rdb.Set(ctx, cacheKey(uid), b, s.ttl).Err(); err != nil && s.log != nil {
				s.log.Warnw("user doc cache write failed", "uid", uid, "error", err)
			}
		}
	}
	return out, nil
}

// Save sets the given keys on uid's document, creating it if needed. Keys
// not in data are left as they are.
func (s *Store) Save(ctx context.Context, uid string, data map[string]json.RawMessage) error {
	set := bson.M{"updatedAt": time.Now()}
	for k, v := range data {
		val, err := toBSONValue(v)
		if err != nil {
			return fmt.Errorf("convert %s: %w", k, err)
		}
		set[k] = val
	}

	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": set}, options.Update().SetUpsert(true))
	if err != nil {
		if s.log != nil {
			s.log.Errorw("failed to upsert user doc", "uid", uid, "error", err)
		}
		return err
	}

	if s.rdb != nil {
		_ = s.rdb.Del(ctx, cacheKey(uid)).Err()
	}
	return nil
}

// toBSONValue converts a JSON value to BSON, keeping object key order.
func toBSONValue(v json.RawMessage) (interface{}, error) {
	wrapped := make([]byte, 0, len(v)+6)
	wrapped = append(wrapped, `{"v":`...)
	wrapped = append(wrapped, v...)
	wrapped = append(wrapped, '}')

	var d bson.D
	if err := bson.UnmarshalExtJSON(wrapped, false, &d); err != nil {
		return nil, err
	}
	if len(d) != 1 {
		return nil, fmt.Errorf("unexpected document shape")
	}
	return d[0].Value, nil
}

// fromBSONValue renders a BSON value as relaxed extended JSON, which is plain
// JSON for the values the site stores.
func fromBSONValue(v bson.RawValue) (json.RawMessage, error) {
	b, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: v}}, false, false)
	if err != nil {
		return nil, err
	}
	var w struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, err
	}
	return w.V, nil
}

func fromDocument(raw bson.Raw) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage)
	for _, key := range store.SyncKeys {
		v, err := raw.LookupErr(key)
		if err != nil {
			continue
		}
		j, err := fromBSONValue(v)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", key, err)
		}
		out[key] = j
	}
	return out, nil
}
