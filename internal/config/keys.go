package config

import (
	"fmt"

	"github.com/google/uuid"
)

// KeyStruct builds the Redis key names used across the service.
type KeyStruct struct{}

// PromotionLockKey returns the single-writer lock key for a source year.
// Only the guard check / mark-done pair is serialized under this key.
func (k *KeyStruct) PromotionLockKey(sourceYearID uuid.UUID) string {
	return fmt.Sprintf("promotion:%s:lock", sourceYearID)
}

// PromotionProgressChannel returns the PubSub channel carrying per-student
// progress events for an executing batch.
func (k *KeyStruct) PromotionProgressChannel(sourceYearID uuid.UUID) string {
	return fmt.Sprintf("promotion:%s:progress", sourceYearID)
}

// PreviewCacheKey returns the cache key for a computed promotion preview.
func (k *KeyStruct) PreviewCacheKey(schoolID, fromYearID, toYearID uuid.UUID) string {
	return fmt.Sprintf("school:%s:preview:%s:%s", schoolID, fromYearID, toYearID)
}

// Key is the shared key builder instance.
var Key = &KeyStruct{}
