// Package redis stores saved report filters in a Redis hash, one JSON
// record per preset name.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lorrc/repair-desk/internal/core/domain"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
	"github.com/lorrc/repair-desk/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

const defaultPresetKey = "repair-desk:report-presets"

// dateLayout is how range bounds are stored: calendar days, not instants.
const dateLayout = "2006-01-02"

type Options struct {
	Address  string
	Password string
	DB       int
	Key      string
	Location *time.Location
}

type Option func(*Options)

func WithAddress(addr string) Option {
	return func(o *Options) { o.Address = addr }
}

func WithPassword(pass string) Option {
	return func(o *Options) { o.Password = pass }
}

func WithDB(db int) Option {
	return func(o *Options) { o.DB = db }
}

// WithKey sets the hash key presets are stored under.
func WithKey(key string) Option {
	return func(o *Options) {
		if key != "" {
			o.Key = key
		}
	}
}

// WithLocation sets the zone stored range dates are read back in. It should
// match the zone the report filters were parsed in.
func WithLocation(loc *time.Location) Option {
	return func(o *Options) {
		if loc != nil {
			o.Location = loc
		}
	}
}

// PresetRepository implements ports.PresetRepository on Redis.
type PresetRepository struct {
	client *redis.Client
	key    string
	loc    *time.Location
}

var _ ports.PresetRepository = (*PresetRepository)(nil)

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, opts ...Option) (*PresetRepository, error) {
	options := &Options{
		Address:  "localhost:6379",
		Key:      defaultPresetKey,
		Location: time.UTC,
	}
	for _, opt := range opts {
		opt(options)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &PresetRepository{client: client, key: options.Key, loc: options.Location}, nil
}

// presetRecord is the stored JSON form of a preset.
type presetRecord struct {
	Name       string    `json:"name"`
	Start      string    `json:"start,omitempty"`
	End        string    `json:"end,omitempty"`
	Month      string    `json:"month,omitempty"`
	Department string    `json:"department,omitempty"`
	Technician string    `json:"technician,omitempty"`
	Status     string    `json:"status,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toRecord(p domain.FilterPreset) presetRecord {
	return presetRecord{
		Name:       p.Name,
		Start:      formatDate(p.Filter.Range.Start),
		End:        formatDate(p.Filter.Range.End),
		Month:      p.Filter.Month,
		Department: p.Filter.Department,
		Technician: p.Filter.Technician,
		Status:     string(p.Filter.Status),
		CreatedAt:  p.CreatedAt,
	}
}

func (r presetRecord) toDomain(loc *time.Location) domain.FilterPreset {
	return domain.FilterPreset{
		Name: r.Name,
		Filter: domain.ReportFilter{
			Range: domain.DateRange{
				Start: parseDate(r.Start, loc),
				End:   parseDate(r.End, loc),
			},
			Month:      r.Month,
			Department: r.Department,
			Technician: r.Technician,
			Status:     domain.TicketStatus(r.Status),
		},
		CreatedAt: r.CreatedAt,
	}
}

// formatDate keeps the calendar day as seen in the bound's own zone.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// parseDate reads a stored day as midnight in loc. Records written as full
// timestamps by earlier versions are converted into loc.
func parseDate(raw string, loc *time.Location) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return t
	}
	t := domain.ParseTimestamp(raw)
	if t.IsZero() {
		return t
	}
	return t.In(loc)
}

func (r *PresetRepository) List(ctx context.Context) ([]domain.FilterPreset, error) {
	values, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}

	presets := make([]domain.FilterPreset, 0, len(values))
	for name, raw := range values {
		var rec presetRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode preset %q: %w", name, err)
		}
		presets = append(presets, rec.toDomain(r.loc))
	}
	return presets, nil
}

func (r *PresetRepository) Save(ctx context.Context, preset domain.FilterPreset) error {
	data, err := json.Marshal(toRecord(preset))
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if err := r.client.HSet(ctx, r.key, preset.Name, data).Err(); err != nil {
		return fmt.Errorf("save preset: %w", err)
	}
	return nil
}

func (r *PresetRepository) Delete(ctx context.Context, name string) error {
	n, err := r.client.HDel(ctx, r.key, name).Result()
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	if n == 0 {
		return apperrors.ErrPresetNotFound
	}
	return nil
}

func (r *PresetRepository) DeleteAll(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("clear presets: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *PresetRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *PresetRepository) Close() error {
	return r.client.Close()
}
