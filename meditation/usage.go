package meditation

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"serenity_back/cache"
)

const recordTimeout = 5 * time.Second

// usageRecord is one generation run persisted for analytics.
type usageRecord struct {
	ID               uint      `gorm:"primarykey"`
	CreatedAt        time.Time `gorm:"index"`
	Topic            string    `gorm:"size:128;index"`
	Style            string    `gorm:"size:64"`
	Language         string    `gorm:"size:8"`
	Duration         int
	QuickMode        bool
	WordCount        int
	Model            string `gorm:"size:64"`
	PromptTokens     int
	CompletionTokens int
	AudioProduced    bool
	ElapsedMs        int64
	Options          datatypes.JSON
}

func (usageRecord) TableName() string { return "usage_records" }

// usageRecorder persists generation runs and bumps the daily Redis counter.
// Every operation is best-effort; failures are logged and swallowed.
type usageRecorder struct {
	db *gorm.DB
}

// newUsageRecorderFromEnv wires the recorder against the configured database.
// A recorder is returned even without a database so the Redis counter still
// ticks.
func newUsageRecorderFromEnv() *usageRecorder {
	db, err := openDatabaseFromEnv()
	if err != nil {
		log.Printf("meditation: analytics database unavailable: %v", err)
		return &usageRecorder{}
	}
	if db != nil {
		if err := db.AutoMigrate(&usageRecord{}); err != nil {
			log.Printf("meditation: migrate usage_records failed: %v", err)
			db = nil
		}
	}
	return &usageRecorder{db: db}
}

// Record persists one run. It runs on its own timeout so a slow database
// never holds a request goroutine hostage.
func (r *usageRecorder) Record(req GenerationRequest, data *GenerationData, elapsed time.Duration) {
	if r == nil || data == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	cache.IncrementDailyCounter(ctx, "meditation:usage")

	if r.db == nil {
		return
	}

	record := usageRecord{
		CreatedAt:     time.Now(),
		Topic:         data.Metadata.Topic,
		Style:         data.Metadata.Style,
		Language:      data.Metadata.Language,
		Duration:      data.Metadata.Duration,
		QuickMode:     data.Metadata.QuickMode,
		WordCount:     data.Metadata.WordCount,
		Model:         data.Metadata.Model,
		AudioProduced: data.Audio != nil,
		ElapsedMs:     elapsed.Milliseconds(),
	}
	if usage := data.Metadata.Usage; usage != nil {
		record.PromptTokens = usage.PromptTokens
		record.CompletionTokens = usage.CompletionTokens
	}
	if encoded, err := json.Marshal(req.Options); err == nil {
		record.Options = datatypes.JSON(encoded)
	}

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		log.Printf("meditation: record usage failed: %v", err)
	}
}
