package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// errNotFound is returned by stores when the requested row does not exist.
	errNotFound = errors.New("not found")
	// errValidation marks bad client input that should surface as 400.
	errValidation = errors.New("validation failed")
)

// statsStore is everything the stats computation reads. Single-day lookups
// return nil (not an error) when the user logged nothing for that date.
type statsStore interface {
	Profile(ctx context.Context, userID string) (profile, error)
	WeightLogs(ctx context.Context, userID string) ([]weightLogEntry, error)
	WorkoutsOn(ctx context.Context, userID, date string) ([]workoutEntry, error)
	StepsOn(ctx context.Context, userID, date string) (*stepsEntry, error)
	NutritionOn(ctx context.Context, userID, date string) (*nutritionEntry, error)
	WaterOn(ctx context.Context, userID, date string) (*waterEntry, error)
}

// pushStore persists browser push subscriptions.
type pushStore interface {
	Subscription(ctx context.Context, userID string) (*pushSubscription, error)
	SaveSubscription(ctx context.Context, sub pushSubscription) error
}

// settingsStore holds process-wide JSON settings such as the VAPID key pair.
type settingsStore interface {
	// LoadSetting decodes the named setting into dst and reports whether it existed.
	LoadSetting(ctx context.Context, key string, dst any) (bool, error)
	// SaveSettingIfAbsent stores value unless the key is already set.
	SaveSettingIfAbsent(ctx context.Context, key string, value any) error
}

// pgStore implements the store interfaces on top of the shared pool.
type pgStore struct {
	db *pgxpool.Pool
}

func newPGStore(db *pgxpool.Pool) *pgStore {
	return &pgStore{db: db}
}

// queryOptional is queryOne that maps "no rows" to (nil, nil).
func queryOptional[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) (*T, error) {
	v, err := queryOne[T](pool, ctx, sql, args)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *pgStore) Profile(ctx context.Context, userID string) (profile, error) {
	p, err := queryOne[profile](s.db, ctx,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return profile{}, fmt.Errorf("profile %s: %w", userID, errNotFound)
	}
	return p, err
}

func (s *pgStore) WeightLogs(ctx context.Context, userID string) ([]weightLogEntry, error) {
	return queryMany[weightLogEntry](s.db, ctx,
		`SELECT * FROM weight_logs
		 WHERE user_id = @userID
		 ORDER BY date ASC, logged_at ASC`,
		pgx.NamedArgs{"userID": userID})
}

func (s *pgStore) WorkoutsOn(ctx context.Context, userID, date string) ([]workoutEntry, error) {
	return queryMany[workoutEntry](s.db, ctx,
		`SELECT * FROM workouts
		 WHERE user_id = @userID AND date = @date
		 ORDER BY logged_at ASC`,
		pgx.NamedArgs{"userID": userID, "date": date})
}

func (s *pgStore) StepsOn(ctx context.Context, userID, date string) (*stepsEntry, error) {
	return queryOptional[stepsEntry](s.db, ctx,
		"SELECT * FROM steps WHERE user_id = @userID AND date = @date",
		pgx.NamedArgs{"userID": userID, "date": date})
}

func (s *pgStore) NutritionOn(ctx context.Context, userID, date string) (*nutritionEntry, error) {
	return queryOptional[nutritionEntry](s.db, ctx,
		"SELECT * FROM nutrition WHERE user_id = @userID AND date = @date",
		pgx.NamedArgs{"userID": userID, "date": date})
}

func (s *pgStore) WaterOn(ctx context.Context, userID, date string) (*waterEntry, error) {
	return queryOptional[waterEntry](s.db, ctx,
		"SELECT * FROM water WHERE user_id = @userID AND date = @date",
		pgx.NamedArgs{"userID": userID, "date": date})
}

func (s *pgStore) Subscription(ctx context.Context, userID string) (*pushSubscription, error) {
	return queryOptional[pushSubscription](s.db, ctx,
		"SELECT * FROM push_subscriptions WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
}

func (s *pgStore) SaveSubscription(ctx context.Context, sub pushSubscription) error {
	keys, err := json.Marshal(sub.Keys)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO push_subscriptions (user_id, endpoint, keys)
		 VALUES (@userID, @endpoint, @keys::jsonb)
		 ON CONFLICT (user_id) DO UPDATE
		 SET endpoint = EXCLUDED.endpoint, keys = EXCLUDED.keys, created_at = now()`,
		pgx.NamedArgs{"userID": sub.UserID, "endpoint": sub.Endpoint, "keys": string(keys)})
	return err
}

func (s *pgStore) LoadSetting(ctx context.Context, key string, dst any) (bool, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, "SELECT value::text FROM app_settings WHERE key = $1", key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, dst)
}

func (s *pgStore) SaveSettingIfAbsent(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO app_settings (key, value) VALUES ($1, $2::jsonb)
		 ON CONFLICT (key) DO NOTHING`,
		key, string(raw))
	return err
}
