package entity

import (
	"fmt"

	"evolve_backend/internal/feature/user/domain"
)

// Metric names one lifetime counter in Metrics.
type Metric string

const (
	MetricNone               Metric = ""
	MetricConversations      Metric = "conversations"
	MetricImagesGenerated    Metric = "imagesGenerated"
	MetricDictionarySearches Metric = "dictionarySearches"
	MetricAudioConversions   Metric = "audioConversions"
)

// Valid reports whether m names a counter. MetricNone is not a counter.
func (m Metric) Valid() bool {
	switch m {
	case MetricConversations, MetricImagesGenerated, MetricDictionarySearches, MetricAudioConversions:
		return true
	}
	return false
}

// Metrics are lifetime counters of gated actions, reset when a user leaves the Free plan.
type Metrics struct {
	Conversations      int
	ImagesGenerated    int
	DictionarySearches int
	AudioConversions   int
}

func (ms Metrics) validate() error {
	if ms.Conversations < 0 || ms.ImagesGenerated < 0 || ms.DictionarySearches < 0 || ms.AudioConversions < 0 {
		return fmt.Errorf("%w: negative metric", domain.ErrValidation)
	}
	return nil
}
